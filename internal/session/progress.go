package session

import (
	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/turn"
)

// maxAttemptsBeforeForce is the attempt count beyond which a stuck
// moment advances regardless of the model's step. Checked after the
// current attempt is recorded, so the fourth evaluated attempt on a
// moment is the one that breaks the loop.
const maxAttemptsBeforeForce = 3

// Transition describes what the progression machine did on one
// evaluated turn.
type Transition struct {
	FromMomentID int
	ToMomentID   int

	MomentCompleted bool
	Advanced        bool
	Forced          bool
	LessonCompleted bool
}

// Advance runs the progression machine over an evaluated turn. It is
// only called on ANSWER turns, after mastery has been applied and the
// attempt recorded. The machine moves moment by moment and never
// skips:
//
//   - mastery at or above the target's threshold, or the model asking
//     to advance, completes the current moment and moves on (or ends
//     the lesson at the last moment)
//   - COMPLETE ends the lesson from any position
//   - REINFORCE and RETRY hold position, except that more than
//     maxAttemptsBeforeForce attempts forces the advance
func Advance(s *State, l *lesson.Lesson, next turn.NextStep) Transition {
	tr := Transition{FromMomentID: s.CurrentMomentID, ToMomentID: s.CurrentMomentID}
	if s.IsCompleted {
		return tr
	}

	thresholdReached := false
	if tgt, ok := l.Target(s.CurrentTargetID); ok {
		thresholdReached = s.Mastery(s.CurrentTargetID) >= tgt.MinMastery
	}

	switch {
	case next == turn.StepComplete:
		s.CompletedMoments[s.CurrentMomentID] = true
		s.IsCompleted = true
		tr.MomentCompleted = true
		tr.LessonCompleted = true

	case next == turn.StepAdvance || thresholdReached:
		advanceMoment(s, l, &tr)

	case s.AttemptsInCurrent > maxAttemptsBeforeForce:
		tr.Forced = true
		advanceMoment(s, l, &tr)
	}

	return tr
}

func advanceMoment(s *State, l *lesson.Lesson, tr *Transition) {
	s.CompletedMoments[s.CurrentMomentID] = true
	tr.MomentCompleted = true

	next, ok := l.NextMoment(s.CurrentMomentID)
	if !ok {
		s.IsCompleted = true
		tr.LessonCompleted = true
		return
	}

	s.CurrentMomentID = next.ID
	s.CurrentTargetID = next.PrimaryTargetID
	s.TouchTarget(next.PrimaryTargetID)
	s.AttemptsInCurrent = 0
	tr.Advanced = true
	tr.ToMomentID = next.ID
}
