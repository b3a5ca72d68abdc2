package turn

// Intent classifies what a learner message is.
type Intent string

const (
	IntentAnswer   Intent = "ANSWER"
	IntentClarify  Intent = "CLARIFY"
	IntentOffTopic Intent = "OFFTOPIC"
)

// NextStep is the model's progression recommendation.
type NextStep string

const (
	StepAdvance   NextStep = "ADVANCE"
	StepReinforce NextStep = "REINFORCE"
	StepRetry     NextStep = "RETRY"
	StepComplete  NextStep = "COMPLETE"
)

// Tag labels an evaluated answer.
type Tag string

const (
	TagCorrect        Tag = "CORRECT"
	TagPartial        Tag = "PARTIAL"
	TagIncorrect      Tag = "INCORRECT"
	TagConceptual     Tag = "CONCEPTUAL"
	TagComputational  Tag = "COMPUTATIONAL"
	TagNeedsHelp      Tag = "NEEDS_HELP"
	TagShowingMastery Tag = "SHOWING_MASTERY"
)

// Difficulty is the model's judgment of the question's difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Contract limits for a Response. A response violating any of these is
// rejected whole; it never touches session state.
const (
	MinMessageLen = 10
	MaxMessageLen = 600
	MaxHints      = 3
	MaxHintLen    = 100
	MinTags       = 1
	MaxTags       = 3
	MaxSignals    = 5
	MaxSignalLen  = 50
	MaxDeltaAbs   = 0.3
)

// Chat is the learner-facing part of a model response.
type Chat struct {
	Message string   `json:"message"`
	Hints   []string `json:"hints"`
}

// Progress is the model's evaluation of the answer.
type Progress struct {
	MasteryDelta float64  `json:"masteryDelta"`
	NextStep     NextStep `json:"nextStep"`
	Tags         []Tag    `json:"tags"`
}

// Analytics carries secondary evaluation signals.
type Analytics struct {
	Difficulty       Difficulty `json:"difficulty"`
	ConfidenceScore  float64    `json:"confidenceScore"`
	ReasoningSignals []string   `json:"reasoningSignals"`
}

// Response is the full structured output the model must return for a
// processed turn.
type Response struct {
	Intent    Intent    `json:"turnIntent"`
	Chat      Chat      `json:"chat"`
	Progress  Progress  `json:"progress"`
	Analytics Analytics `json:"analytics"`
}

// HasTag reports whether the response carries the given tag.
func (r *Response) HasTag(tag Tag) bool {
	for _, t := range r.Progress.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsCorrect reports whether the answer was evaluated as correct.
func (r *Response) IsCorrect() bool {
	return r.HasTag(TagCorrect)
}

// Evaluation returns a one-word summary of the evaluation outcome.
func (r *Response) Evaluation() string {
	switch {
	case r.HasTag(TagCorrect):
		return "correct"
	case r.HasTag(TagPartial):
		return "partial"
	default:
		return "incorrect"
	}
}

// Clone returns a deep copy. Reconciliation works on copies so the
// original model output stays intact for persistence.
func (r *Response) Clone() *Response {
	out := *r
	out.Chat.Hints = append([]string(nil), r.Chat.Hints...)
	out.Progress.Tags = append([]Tag(nil), r.Progress.Tags...)
	out.Analytics.ReasoningSignals = append([]string(nil), r.Analytics.ReasoningSignals...)
	return &out
}

// ValidIntent reports whether s is a member of the intent enum.
func ValidIntent(s Intent) bool {
	switch s {
	case IntentAnswer, IntentClarify, IntentOffTopic:
		return true
	}
	return false
}

// ValidNextStep reports whether s is a member of the next-step enum.
func ValidNextStep(s NextStep) bool {
	switch s {
	case StepAdvance, StepReinforce, StepRetry, StepComplete:
		return true
	}
	return false
}

// ValidTag reports whether t is a member of the tag vocabulary.
func ValidTag(t Tag) bool {
	switch t {
	case TagCorrect, TagPartial, TagIncorrect, TagConceptual,
		TagComputational, TagNeedsHelp, TagShowingMastery:
		return true
	}
	return false
}

// ValidDifficulty reports whether d is a member of the difficulty enum.
// The empty value is allowed since difficulty is optional.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
