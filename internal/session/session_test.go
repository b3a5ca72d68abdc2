package session

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/turn"
)

func testLesson() *lesson.Lesson {
	l, err := lesson.Get(1)
	if err != nil {
		panic(err)
	}
	return l
}

func TestNew(t *testing.T) {
	l := testLesson()
	s := New(l)

	if s.CurrentMomentID != 0 {
		t.Errorf("CurrentMomentID = %d, want 0", s.CurrentMomentID)
	}
	first, _ := l.Moment(0)
	if s.CurrentTargetID != first.PrimaryTargetID {
		t.Errorf("CurrentTargetID = %d, want %d", s.CurrentTargetID, first.PrimaryTargetID)
	}
	if got := s.Mastery(s.CurrentTargetID); got != InitialMastery {
		t.Errorf("initial mastery = %.2f, want %.2f", got, InitialMastery)
	}
	if s.IsCompleted {
		t.Error("fresh session marked completed")
	}
}

func TestRecordAttempt(t *testing.T) {
	s := New(testLesson())

	s.RecordAttempt(true)
	s.RecordAttempt(true)
	if s.ConsecutiveCorrect != 2 || s.CorrectAnswers != 2 || s.TotalAttempts != 2 {
		t.Errorf("after two correct: streak=%d correct=%d total=%d",
			s.ConsecutiveCorrect, s.CorrectAnswers, s.TotalAttempts)
	}

	s.RecordAttempt(false)
	if s.ConsecutiveCorrect != 0 {
		t.Errorf("streak not reset on incorrect, got %d", s.ConsecutiveCorrect)
	}
	if s.AttemptsInCurrent != 3 {
		t.Errorf("AttemptsInCurrent = %d, want 3", s.AttemptsInCurrent)
	}
}

func TestApplyDeltaBoundsAndCompletion(t *testing.T) {
	l := testLesson()
	s := New(l)
	tgt, _ := l.Target(s.CurrentTargetID)

	// Drive mastery past the threshold. Scenario: mastery just below
	// minMastery, a correct turn crosses it and completes the target.
	s.TargetMastery[s.CurrentTargetID] = tgt.MinMastery - 0.05
	completed := s.ApplyDelta(l, 0.15)
	if !completed {
		t.Fatal("target not marked completed after crossing threshold")
	}
	if !s.CompletedTargets[s.CurrentTargetID] {
		t.Error("CompletedTargets missing entry")
	}

	// Mastery never escapes [0, 1] whatever the delta sequence.
	for _, d := range []float64{0.3, 0.3, 0.3, -0.2, -0.3, -0.3, -0.3, 0.25} {
		s.ApplyDelta(l, d)
		m := s.TargetMastery[s.CurrentTargetID]
		if m < 0 || m > 1 {
			t.Fatalf("mastery %.3f out of bounds after delta %.2f", m, d)
		}
	}
}

func TestAdvanceOnThreshold(t *testing.T) {
	l := testLesson()
	s := New(l)
	tgt, _ := l.Target(s.CurrentTargetID)
	s.TargetMastery[s.CurrentTargetID] = tgt.MinMastery
	s.AttemptsInCurrent = 2

	// Model wants to stay; threshold says advance. OR policy wins.
	tr := Advance(s, l, turn.StepRetry)
	if !tr.Advanced || tr.Forced {
		t.Fatalf("transition = %+v, want threshold advance", tr)
	}
	if s.CurrentMomentID != 1 {
		t.Errorf("CurrentMomentID = %d, want 1", s.CurrentMomentID)
	}
	if s.AttemptsInCurrent != 0 {
		t.Errorf("AttemptsInCurrent = %d, want 0 after transition", s.AttemptsInCurrent)
	}
	if !s.CompletedMoments[0] {
		t.Error("moment 0 not marked completed")
	}
	next, _ := l.Moment(1)
	if s.CurrentTargetID != next.PrimaryTargetID {
		t.Errorf("CurrentTargetID = %d, want %d", s.CurrentTargetID, next.PrimaryTargetID)
	}
}

func TestAdvanceOnModelStep(t *testing.T) {
	l := testLesson()
	s := New(l)

	// Mastery below threshold but the model says ADVANCE.
	tr := Advance(s, l, turn.StepAdvance)
	if !tr.Advanced {
		t.Fatalf("transition = %+v, want advance", tr)
	}
}

func TestHoldOnRetry(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.AttemptsInCurrent = 2

	tr := Advance(s, l, turn.StepRetry)
	if tr.Advanced || tr.MomentCompleted {
		t.Fatalf("transition = %+v, want hold", tr)
	}
	if s.CurrentMomentID != 0 || s.AttemptsInCurrent != 2 {
		t.Errorf("state mutated on hold: moment=%d attempts=%d", s.CurrentMomentID, s.AttemptsInCurrent)
	}
}

func TestForcedAdvance(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.AttemptsInCurrent = 4 // fourth evaluated attempt already recorded

	tr := Advance(s, l, turn.StepRetry)
	if !tr.Advanced || !tr.Forced {
		t.Fatalf("transition = %+v, want forced advance", tr)
	}
	if s.AttemptsInCurrent != 0 {
		t.Errorf("AttemptsInCurrent = %d, want 0", s.AttemptsInCurrent)
	}
}

func TestCompleteFromAnyPosition(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.CurrentMomentID = 1

	tr := Advance(s, l, turn.StepComplete)
	if !tr.LessonCompleted || !s.IsCompleted {
		t.Fatalf("transition = %+v, IsCompleted=%v", tr, s.IsCompleted)
	}
	if !s.CompletedMoments[1] {
		t.Error("current moment not marked completed")
	}
}

func TestAdvancePastLastMomentCompletesLesson(t *testing.T) {
	l := testLesson()
	s := New(l)
	last := l.MomentCount() - 1
	s.CurrentMomentID = last
	m, _ := l.Moment(last)
	s.CurrentTargetID = m.PrimaryTargetID
	s.TouchTarget(m.PrimaryTargetID)

	tr := Advance(s, l, turn.StepAdvance)
	if !tr.LessonCompleted || !s.IsCompleted {
		t.Fatalf("transition = %+v, IsCompleted=%v", tr, s.IsCompleted)
	}
	if tr.Advanced {
		t.Error("Advanced set with no next moment")
	}
}

func TestTerminalStateHolds(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.IsCompleted = true
	before := s.CurrentMomentID

	tr := Advance(s, l, turn.StepAdvance)
	if tr.MomentCompleted || tr.Advanced || s.CurrentMomentID != before {
		t.Fatalf("completed session mutated: %+v", tr)
	}
}

func TestClone(t *testing.T) {
	l := testLesson()
	s := New(l)
	c := s.Clone()
	c.TargetMastery[s.CurrentTargetID] = 0.9
	c.CompletedMoments[0] = true
	c.AttemptsInCurrent = 7

	if s.TargetMastery[s.CurrentTargetID] == 0.9 {
		t.Error("clone shares TargetMastery map")
	}
	if s.CompletedMoments[0] {
		t.Error("clone shares CompletedMoments map")
	}
	if s.AttemptsInCurrent == 7 {
		t.Error("clone shares scalar fields")
	}
}

func correctResponse(delta float64) *turn.Response {
	return &turn.Response{
		Intent: turn.IntentAnswer,
		Chat:   turn.Chat{Message: "Good, that is exactly right. Next question?"},
		Progress: turn.Progress{
			MasteryDelta: delta,
			NextStep:     turn.StepAdvance,
			Tags:         []turn.Tag{turn.TagCorrect},
		},
	}
}

func incorrectResponse() *turn.Response {
	return &turn.Response{
		Intent: turn.IntentAnswer,
		Chat:   turn.Chat{Message: "Not quite, think about the difference again."},
		Progress: turn.Progress{
			MasteryDelta: -0.15,
			NextStep:     turn.StepRetry,
			Tags:         []turn.Tag{turn.TagIncorrect, turn.TagConceptual},
		},
	}
}

func TestDistillBound(t *testing.T) {
	l := testLesson()
	s := New(l)

	long := strings.Repeat("a very long answer about hazards and risks ", 40)
	for i := 0; i < 10; i++ {
		s.RecordAttempt(i%2 == 0)
		resp := incorrectResponse()
		if i%2 == 0 {
			resp = correctResponse(0.1)
		}
		s.Summary = Distill(s, l, resp, long)
		if len(s.Summary) > MaxSummaryLen {
			t.Fatalf("turn %d: summary %d chars exceeds %d", i, len(s.Summary), MaxSummaryLen)
		}
	}
}

func TestDistillKeepsValidUTF8(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.RecordAttempt(false)

	// Accented answers must survive the excerpt cut intact.
	answer := strings.Repeat("la instalación eléctrica está dañada ", 30)
	s.Summary = Distill(s, l, incorrectResponse(), answer)
	if !utf8.ValidString(s.Summary) {
		t.Errorf("summary contains invalid UTF-8:\n%q", s.Summary)
	}
}

func TestExcerptCutsOnRuneBoundary(t *testing.T) {
	// A spaceless run of 2-byte runes forces the cut to land mid-rune
	// unless it is adjusted.
	s := strings.Repeat("ó", 100)
	got := excerpt(s, 51)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("excerpt not truncated: %q", got)
	}
}

func TestDistillSections(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.RecordAttempt(true)
	s.Summary = Distill(s, l, correctResponse(0.15), "a hazard is a source of potential harm")

	for _, sec := range []string{"[STATE]", "[EVIDENCE]", "[GAP]", "[PLAN]"} {
		if !strings.Contains(s.Summary, sec) {
			t.Errorf("summary missing %s section:\n%s", sec, s.Summary)
		}
	}
}

func TestDistillCarriesPriorEvidence(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.RecordAttempt(true)
	s.Summary = Distill(s, l, correctResponse(0.15), "first answer about hazards")
	s.RecordAttempt(false)
	s.Summary = Distill(s, l, incorrectResponse(), "second answer, this one wrong")

	if !strings.Contains(s.Summary, "Previously:") {
		t.Errorf("summary lost prior evidence:\n%s", s.Summary)
	}
}

func TestDistillAntiLoopPlan(t *testing.T) {
	l := testLesson()
	s := New(l)
	s.AttemptsInCurrent = 3
	s.Summary = Distill(s, l, incorrectResponse(), "still confused about this")

	if !strings.Contains(s.Summary, "then advance") {
		t.Errorf("plan after 3 failed attempts should steer toward advancing:\n%s", s.Summary)
	}
}

func TestInitialSummary(t *testing.T) {
	l := testLesson()
	s := New(l)
	sum := InitialSummary(s, l)

	if len(sum) > MaxSummaryLen {
		t.Fatalf("initial summary %d chars exceeds %d", len(sum), MaxSummaryLen)
	}
	if !strings.Contains(sum, "[PLAN]") {
		t.Errorf("initial summary missing plan:\n%s", sum)
	}
}
