package lesson

// Language identifies the lesson's delivery language.
type Language string

const (
	LangEN Language = "en"
	LangES Language = "es"
)

// RubricLevels is the fixed number of levels in a target rubric.
const RubricLevels = 5

// MaxHints is the maximum number of graduated hints a target carries.
const MaxHints = 3

// RubricLevel describes one level of a target's 5-level rubric.
type RubricLevel struct {
	Level    int // 1 (initial) .. 5 (mastery)
	Name     string
	Criteria []string // observable criteria for this level
}

// Rubric is a target's full evaluation rubric: exactly five ordered
// levels plus the typical errors and graduated hints for the target.
type Rubric struct {
	Levels       []RubricLevel
	CommonErrors []string
	Hints        []string // graduated: subtle, direct, explicit
}

// Target is a single skill/competency evaluated across a lesson.
// Targets are static content and never mutated at runtime.
type Target struct {
	ID          int
	Title       string
	Description string

	// MinMastery is the 0..1 threshold at which the target counts
	// as achieved.
	MinMastery float64

	// Weight is the relative weight in global mastery. Zero means
	// the default weight of 1.
	Weight float64

	Rubric Rubric
}

// EffectiveWeight returns the weight used in global mastery aggregation.
func (t Target) EffectiveWeight() float64 {
	if t.Weight <= 0 {
		return 1
	}
	return t.Weight
}

// Image is contextual material attached to a moment.
type Image struct {
	ID          int
	Description string
	URL         string
	MustUse     bool // when set, the tutor must reference it
}

// Moment is one step in a lesson's fixed sequence. Moment IDs are
// 0-based ordinals matching their position.
type Moment struct {
	ID    int
	Title string
	Goal  string // one line, the expected outcome

	// PrimaryTargetID names the target this moment evaluates.
	PrimaryTargetID int

	// ReferenceQuestions are inspiration for the tutor, never shown
	// to the learner verbatim.
	ReferenceQuestions []string

	Images []Image
}

// Lesson is a complete static lesson: ordered moments over a set of
// evaluation targets.
type Lesson struct {
	ID          int
	Title       string
	Description string
	Language    Language

	// LearningObjectives are learner-visible goals.
	LearningObjectives []string

	// CheckPoints are evaluation anchors for the tutor only.
	CheckPoints []string

	Targets []Target
	Moments []Moment
}

// Target returns the target with the given ID.
func (l *Lesson) Target(id int) (Target, bool) {
	for _, t := range l.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// Moment returns the moment with the given ID.
func (l *Lesson) Moment(id int) (Moment, bool) {
	if id < 0 || id >= len(l.Moments) {
		return Moment{}, false
	}
	return l.Moments[id], true
}

// NextMoment returns the moment after id, or false at the end of the lesson.
func (l *Lesson) NextMoment(id int) (Moment, bool) {
	return l.Moment(id + 1)
}

// MomentCount returns the number of moments in the lesson.
func (l *Lesson) MomentCount() int {
	return len(l.Moments)
}

// TargetWeights returns the targetID → effective weight map used in
// global mastery aggregation.
func (l *Lesson) TargetWeights() map[int]float64 {
	w := make(map[int]float64, len(l.Targets))
	for _, t := range l.Targets {
		w[t.ID] = t.EffectiveWeight()
	}
	return w
}
