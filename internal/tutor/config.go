// Package tutor is the turn orchestrator: it classifies learner
// input, composes the prompt, calls the model provider, reconciles
// the structured response against the deterministic rubric, runs the
// progression machine and persists the turn atomically.
package tutor

import (
	"time"

	"github.com/efuentes/sophia/internal/mastery"
)

// Config tunes the orchestrator. Zero values mean the defaults.
type Config struct {
	// MaxClarifyTurns is the clarification budget per session. Past
	// it, clarifications are still answered but the standing question
	// is restated firmly.
	MaxClarifyTurns int

	// MaxTokens caps the model's structured response.
	MaxTokens int

	// RecentTurns is how many prior exchanges the prompt carries.
	RecentTurns int

	// Timeout bounds the provider call per turn.
	Timeout time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		MaxClarifyTurns: 5,
		MaxTokens:       600,
		RecentTurns:     3,
		Timeout:         45 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxClarifyTurns <= 0 {
		c.MaxClarifyTurns = d.MaxClarifyTurns
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.RecentTurns <= 0 {
		c.RecentTurns = d.RecentTurns
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// temperatureFor adapts sampling temperature to the learner's current
// aggregate mastery: tighter while foundations are weak, freer once
// the learner is in command.
func temperatureFor(aggregate float64) float64 {
	switch {
	case aggregate < 0.4:
		return 0.5
	case aggregate < 0.7:
		return 0.6
	default:
		return 0.7
	}
}

// scoreFor derives the 0..1 evaluation score persisted with an
// evaluated turn.
func scoreFor(correct bool, delta float64) float64 {
	base := 0.3
	if correct {
		base = 0.8
	}
	return mastery.Clamp(base+delta, 0, 1)
}
