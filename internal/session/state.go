// Package session holds the per-learner lesson state and the
// progression state machine that moves it moment by moment. State is
// an explicit value passed through the orchestrator and persisted as
// a snapshot; there are no ambient singletons.
package session

import (
	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/mastery"
)

// InitialMastery is the mastery assigned to a target on first touch.
const InitialMastery = 0.3

// State is the only entity mutated per turn. All maps are always
// non-nil after New or normalization.
type State struct {
	CurrentMomentID int `json:"currentMomentId"`
	CurrentTargetID int `json:"currentTargetId"`

	// TargetMastery holds one entry per target touched so far.
	TargetMastery map[int]float64 `json:"targetMastery"`

	CompletedTargets map[int]bool `json:"completedTargets"`
	CompletedMoments map[int]bool `json:"completedMoments"`

	// AggregateMastery is the weighted mean over TargetMastery,
	// recomputed on every evaluated turn.
	AggregateMastery float64 `json:"aggregateMastery"`

	ConsecutiveCorrect int `json:"consecutiveCorrect"`

	// AttemptsInCurrent counts evaluated turns on the current moment.
	// It resets to 0 on a moment transition and nowhere else.
	AttemptsInCurrent int `json:"attemptsInCurrent"`

	TotalAttempts  int `json:"totalAttempts"`
	CorrectAnswers int `json:"correctAnswers"`
	ClarifyTurns   int `json:"clarifyTurns"`

	LastQuestionShown string `json:"lastQuestionShown"`

	// Summary is the bounded rolling digest fed into future prompts.
	Summary string `json:"sessionSummary"`

	// IsCompleted is terminal: a completed session accepts no
	// further evaluated turns.
	IsCompleted bool `json:"isCompleted"`
}

// New creates the state for a fresh session on a lesson, positioned at
// the first moment with its primary target touched.
func New(l *lesson.Lesson) *State {
	s := &State{
		TargetMastery:    make(map[int]float64),
		CompletedTargets: make(map[int]bool),
		CompletedMoments: make(map[int]bool),
	}
	if m, ok := l.Moment(0); ok {
		s.CurrentMomentID = m.ID
		s.CurrentTargetID = m.PrimaryTargetID
		s.TouchTarget(m.PrimaryTargetID)
		s.AggregateMastery = mastery.Global(s.TargetMastery, l.TargetWeights())
	}
	return s
}

// Normalize makes all map fields non-nil. Called after loading a
// snapshot from storage.
func (s *State) Normalize() {
	if s.TargetMastery == nil {
		s.TargetMastery = make(map[int]float64)
	}
	if s.CompletedTargets == nil {
		s.CompletedTargets = make(map[int]bool)
	}
	if s.CompletedMoments == nil {
		s.CompletedMoments = make(map[int]bool)
	}
}

// TouchTarget ensures the target has a mastery entry.
func (s *State) TouchTarget(targetID int) {
	if _, ok := s.TargetMastery[targetID]; !ok {
		s.TargetMastery[targetID] = InitialMastery
	}
}

// Mastery returns the current mastery of a target, InitialMastery if
// the target has not been touched.
func (s *State) Mastery(targetID int) float64 {
	if m, ok := s.TargetMastery[targetID]; ok {
		return m
	}
	return InitialMastery
}

// Clone returns a deep copy. The orchestrator mutates a clone and
// commits it only after the whole turn succeeds, so a failed turn
// leaves the original untouched.
func (s *State) Clone() *State {
	c := *s
	c.TargetMastery = make(map[int]float64, len(s.TargetMastery))
	for k, v := range s.TargetMastery {
		c.TargetMastery[k] = v
	}
	c.CompletedTargets = make(map[int]bool, len(s.CompletedTargets))
	for k, v := range s.CompletedTargets {
		c.CompletedTargets[k] = v
	}
	c.CompletedMoments = make(map[int]bool, len(s.CompletedMoments))
	for k, v := range s.CompletedMoments {
		c.CompletedMoments[k] = v
	}
	return &c
}

// RecordAttempt updates the attempt and streak counters for an
// evaluated turn.
func (s *State) RecordAttempt(correct bool) {
	s.AttemptsInCurrent++
	s.TotalAttempts++
	if correct {
		s.CorrectAnswers++
		s.ConsecutiveCorrect++
	} else {
		s.ConsecutiveCorrect = 0
	}
}

// ApplyDelta applies a validated mastery delta to the current target,
// recomputes aggregate mastery and marks the target completed when it
// crosses its threshold. Returns true when the target completed on
// this turn.
func (s *State) ApplyDelta(l *lesson.Lesson, delta float64) bool {
	s.TouchTarget(s.CurrentTargetID)
	s.TargetMastery[s.CurrentTargetID] = mastery.Apply(s.TargetMastery[s.CurrentTargetID], delta)
	s.AggregateMastery = mastery.Global(s.TargetMastery, l.TargetWeights())

	tgt, ok := l.Target(s.CurrentTargetID)
	if !ok || s.CompletedTargets[s.CurrentTargetID] {
		return false
	}
	if s.TargetMastery[s.CurrentTargetID] >= tgt.MinMastery {
		s.CompletedTargets[s.CurrentTargetID] = true
		return true
	}
	return false
}
