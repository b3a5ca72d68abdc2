package lesson

import (
	"fmt"
	"strings"
)

// Validate performs all structural checks on a lesson.
// Returns a combined error describing every problem found, or nil.
func Validate(l Lesson) error {
	var errs []string

	if l.Title == "" {
		errs = append(errs, "lesson title is empty")
	}
	if len(l.Targets) == 0 {
		errs = append(errs, "lesson has no targets")
	}
	if len(l.Moments) == 0 {
		errs = append(errs, "lesson has no moments")
	}

	targetIDs := make(map[int]bool, len(l.Targets))
	for _, t := range l.Targets {
		if targetIDs[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate target ID: %d", t.ID))
		}
		targetIDs[t.ID] = true
		errs = append(errs, validateTarget(t)...)
	}

	// Moment IDs must be 0-based ordinals matching slice position,
	// and each moment must reference an existing target.
	for i, m := range l.Moments {
		if m.ID != i {
			errs = append(errs, fmt.Sprintf("moment at position %d has ID %d, want %d", i, m.ID, i))
		}
		if m.Goal == "" {
			errs = append(errs, fmt.Sprintf("moment %d has no goal", m.ID))
		}
		if !targetIDs[m.PrimaryTargetID] {
			errs = append(errs, fmt.Sprintf("moment %d references nonexistent target %d", m.ID, m.PrimaryTargetID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("lesson validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateTarget(t Target) []string {
	var errs []string

	if t.MinMastery <= 0 || t.MinMastery > 1 {
		errs = append(errs, fmt.Sprintf("target %d: minMastery %.2f outside (0, 1]", t.ID, t.MinMastery))
	}
	if t.Weight < 0 {
		errs = append(errs, fmt.Sprintf("target %d: negative weight %.2f", t.ID, t.Weight))
	}
	if len(t.Rubric.Hints) > MaxHints {
		errs = append(errs, fmt.Sprintf("target %d: %d hints, max %d", t.ID, len(t.Rubric.Hints), MaxHints))
	}

	if len(t.Rubric.Levels) != RubricLevels {
		errs = append(errs, fmt.Sprintf("target %d: %d rubric levels, want %d", t.ID, len(t.Rubric.Levels), RubricLevels))
		return errs
	}
	for i, lvl := range t.Rubric.Levels {
		if lvl.Level != i+1 {
			errs = append(errs, fmt.Sprintf("target %d: rubric level at position %d is %d, want %d", t.ID, i, lvl.Level, i+1))
		}
		if len(lvl.Criteria) == 0 {
			errs = append(errs, fmt.Sprintf("target %d: rubric level %d has no criteria", t.ID, lvl.Level))
		}
	}

	return errs
}
