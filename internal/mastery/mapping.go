// Package mastery maps continuous mastery (0..1) onto the discrete
// 5-level rubric and guards mastery updates against model drift: a
// proposed delta inconsistent with the claimed level is corrected
// before it can touch session state.
package mastery

import (
	"fmt"
	"strings"

	"github.com/efuentes/sophia/internal/turn"
)

// LevelMapping binds a rubric level to the tags and delta range a
// well-grounded evaluation at that level is expected to produce.
type LevelMapping struct {
	Level       int
	Name        string
	Tags        []turn.Tag
	DeltaMin    float64
	DeltaMax    float64
	Description string
}

// levelMappings is ordered highest level first, matching the rubric's
// reading order. The ranges are disjoint by construction.
var levelMappings = []LevelMapping{
	{
		Level:       5,
		Name:        "Mastery",
		Tags:        []turn.Tag{turn.TagCorrect, turn.TagShowingMastery},
		DeltaMin:    0.25,
		DeltaMax:    0.30,
		Description: "Complete understanding with advanced application",
	},
	{
		Level:       4,
		Name:        "Advanced",
		Tags:        []turn.Tag{turn.TagCorrect},
		DeltaMin:    0.15,
		DeltaMax:    0.20,
		Description: "Solid understanding applied correctly",
	},
	{
		Level:       3,
		Name:        "Competent",
		Tags:        []turn.Tag{turn.TagPartial, turn.TagCorrect},
		DeltaMin:    0.05,
		DeltaMax:    0.15,
		Description: "Adequate understanding with minor gaps",
	},
	{
		Level:       2,
		Name:        "Basic",
		Tags:        []turn.Tag{turn.TagPartial},
		DeltaMin:    -0.05,
		DeltaMax:    0.05,
		Description: "Limited understanding, needs reinforcement",
	},
	{
		Level:       1,
		Name:        "Initial",
		Tags:        []turn.Tag{turn.TagIncorrect, turn.TagNeedsHelp, turn.TagConceptual},
		DeltaMin:    -0.20,
		DeltaMax:    -0.10,
		Description: "Insufficient understanding, needs significant support",
	},
}

// LevelFor maps a mastery value to its rubric level by fixed thresholds.
func LevelFor(mastery float64) int {
	switch {
	case mastery < 0.2:
		return 1
	case mastery < 0.4:
		return 2
	case mastery < 0.65:
		return 3
	case mastery < 0.85:
		return 4
	default:
		return 5
	}
}

// MappingFor returns the mapping for a rubric level.
func MappingFor(level int) (LevelMapping, bool) {
	for _, m := range levelMappings {
		if m.Level == level {
			return m, true
		}
	}
	return LevelMapping{}, false
}

// LevelName returns the display name for a rubric level.
func LevelName(level int) string {
	if m, ok := MappingFor(level); ok {
		return m.Name
	}
	return fmt.Sprintf("level %d", level)
}

// DeltaCheck is the outcome of validating a proposed mastery delta.
type DeltaCheck struct {
	Valid          bool
	CorrectedDelta float64
	Reason         string
}

// ValidateAndCorrectDelta checks a model-proposed (tags, delta) pair
// against the expected output for the claimed level. On any mismatch
// Valid is false and CorrectedDelta carries a value inside the level's
// range: the range minimum when the tags don't fit the level at all,
// or the proposed delta clamped into range when only the magnitude is
// off. An ungrounded model judgment
// can never move mastery outside its level's envelope.
func ValidateAndCorrectDelta(level int, tags []turn.Tag, delta float64) DeltaCheck {
	m, ok := MappingFor(level)
	if !ok {
		return DeltaCheck{
			Valid:          false,
			CorrectedDelta: 0,
			Reason:         fmt.Sprintf("level %d is not a rubric level", level),
		}
	}

	if !tagsIntersect(tags, m.Tags) {
		return DeltaCheck{
			Valid:          false,
			CorrectedDelta: m.DeltaMin,
			Reason:         fmt.Sprintf("tags [%s] do not match level %d", joinTags(tags), level),
		}
	}

	if delta < m.DeltaMin || delta > m.DeltaMax {
		return DeltaCheck{
			Valid:          false,
			CorrectedDelta: Clamp(delta, m.DeltaMin, m.DeltaMax),
			Reason:         fmt.Sprintf("delta %.3f outside [%.2f, %.2f] for level %d", delta, m.DeltaMin, m.DeltaMax, level),
		}
	}

	return DeltaCheck{Valid: true, CorrectedDelta: delta}
}

// InferLevel derives the level best matching a (tags, delta) pair.
// A mapping whose tags and range both fit wins outright. When tags
// and delta disagree the tags decide, at the lowest level whose tag
// set matches, so a nonsense delta can never inflate the level. The
// delta alone is only consulted when no tag matches at all.
func InferLevel(tags []turn.Tag, delta float64) int {
	for _, m := range levelMappings {
		if tagsIntersect(tags, m.Tags) && delta >= m.DeltaMin && delta <= m.DeltaMax {
			return m.Level
		}
	}
	for i := len(levelMappings) - 1; i >= 0; i-- {
		if tagsIntersect(tags, levelMappings[i].Tags) {
			return levelMappings[i].Level
		}
	}

	switch {
	case delta >= 0.25:
		return 5
	case delta >= 0.15:
		return 4
	case delta >= 0.05:
		return 3
	case delta >= -0.05:
		return 2
	default:
		return 1
	}
}

func tagsIntersect(a, b []turn.Tag) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func joinTags(tags []turn.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
