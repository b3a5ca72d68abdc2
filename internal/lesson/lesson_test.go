package lesson

import (
	"strings"
	"testing"
)

func TestRegistrySeed(t *testing.T) {
	l, err := Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if l.Title == "" || l.MomentCount() == 0 || len(l.Targets) == 0 {
		t.Fatalf("seed lesson incomplete: %+v", l)
	}

	if _, err := Get(999); err == nil {
		t.Error("Get(999) should fail")
	}

	all := All()
	if len(all) == 0 || all[0].ID != 1 {
		t.Errorf("All() = %d lessons", len(all))
	}
}

func TestSeedLessonIsValid(t *testing.T) {
	l, err := Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(*l); err != nil {
		t.Errorf("seed lesson invalid: %v", err)
	}
}

func TestMomentLookups(t *testing.T) {
	l, _ := Get(1)

	first, ok := l.Moment(0)
	if !ok || first.ID != 0 {
		t.Fatalf("Moment(0) = %+v, %v", first, ok)
	}
	if _, ok := l.Moment(-1); ok {
		t.Error("Moment(-1) should miss")
	}
	if _, ok := l.Moment(l.MomentCount()); ok {
		t.Error("Moment past the end should miss")
	}

	next, ok := l.NextMoment(0)
	if !ok || next.ID != 1 {
		t.Errorf("NextMoment(0) = %+v, %v", next, ok)
	}
	if _, ok := l.NextMoment(l.MomentCount() - 1); ok {
		t.Error("NextMoment at the last moment should miss")
	}
}

func TestEffectiveWeight(t *testing.T) {
	if got := (Target{Weight: 0}).EffectiveWeight(); got != 1 {
		t.Errorf("zero weight = %.1f, want default 1", got)
	}
	if got := (Target{Weight: 1.5}).EffectiveWeight(); got != 1.5 {
		t.Errorf("weight 1.5 = %.1f", got)
	}
}

func TestTargetWeights(t *testing.T) {
	l, _ := Get(1)
	w := l.TargetWeights()
	if len(w) != len(l.Targets) {
		t.Fatalf("weights for %d targets, want %d", len(w), len(l.Targets))
	}
	for id, v := range w {
		if v <= 0 {
			t.Errorf("target %d weight %.2f", id, v)
		}
	}
}

func TestValidateCatchesProblems(t *testing.T) {
	good, _ := Get(1)

	broken := *good
	broken.Moments = append([]Moment(nil), good.Moments...)
	broken.Moments[1].ID = 7
	broken.Moments[0].PrimaryTargetID = 99

	err := Validate(broken)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ID 7") {
		t.Errorf("ordinal violation not reported: %v", err)
	}
	if !strings.Contains(msg, "nonexistent target 99") {
		t.Errorf("FK violation not reported: %v", err)
	}
}

func TestValidateRubricShape(t *testing.T) {
	tgt := Target{ID: 1, MinMastery: 0.7, Rubric: Rubric{
		Levels: []RubricLevel{{Level: 1, Name: "only", Criteria: []string{"x"}}},
	}}
	errs := validateTarget(tgt)
	if len(errs) == 0 {
		t.Fatal("a 1-level rubric must be rejected")
	}

	tgt.MinMastery = 0
	errs = validateTarget(tgt)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "minMastery") {
			found = true
		}
	}
	if !found {
		t.Errorf("minMastery 0 not reported: %v", errs)
	}
}
