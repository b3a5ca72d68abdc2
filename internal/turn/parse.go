package turn

import (
	"encoding/json"
	"fmt"

	"github.com/efuentes/sophia/internal/llm"
)

// Parse decodes and strictly validates a model response. A response
// failing any check is rejected whole and surfaced as a provider
// error; the orchestrator never applies a partially valid response.
//
// Providers already validate against the JSON schema; Parse re-checks
// every constraint in Go so the contract holds even for providers whose
// structured-output mode is advisory.
func Parse(raw json.RawMessage) (*Response, error) {
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode turn response: %w", err)}
	}
	if err := r.Validate(); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}
	return &r, nil
}

// Validate checks every contract constraint on the response.
func (r *Response) Validate() error {
	if !ValidIntent(r.Intent) {
		return fmt.Errorf("invalid turnIntent %q", r.Intent)
	}

	if n := len(r.Chat.Message); n < MinMessageLen || n > MaxMessageLen {
		return fmt.Errorf("chat.message length %d outside [%d, %d]", n, MinMessageLen, MaxMessageLen)
	}
	if len(r.Chat.Hints) > MaxHints {
		return fmt.Errorf("%d hints, max %d", len(r.Chat.Hints), MaxHints)
	}
	for i, h := range r.Chat.Hints {
		if len(h) > MaxHintLen {
			return fmt.Errorf("hint %d length %d exceeds %d", i, len(h), MaxHintLen)
		}
	}

	if d := r.Progress.MasteryDelta; d < -MaxDeltaAbs || d > MaxDeltaAbs {
		return fmt.Errorf("masteryDelta %.3f outside [%.1f, %.1f]", d, -MaxDeltaAbs, MaxDeltaAbs)
	}
	if !ValidNextStep(r.Progress.NextStep) {
		return fmt.Errorf("invalid nextStep %q", r.Progress.NextStep)
	}
	if n := len(r.Progress.Tags); n < MinTags || n > MaxTags {
		return fmt.Errorf("%d tags, want %d-%d", n, MinTags, MaxTags)
	}
	for _, t := range r.Progress.Tags {
		if !ValidTag(t) {
			return fmt.Errorf("unknown tag %q", t)
		}
	}

	if !ValidDifficulty(r.Analytics.Difficulty) {
		return fmt.Errorf("invalid difficulty %q", r.Analytics.Difficulty)
	}
	if c := r.Analytics.ConfidenceScore; c < 0 || c > 1 {
		return fmt.Errorf("confidenceScore %.3f outside [0, 1]", c)
	}
	if len(r.Analytics.ReasoningSignals) > MaxSignals {
		return fmt.Errorf("%d reasoning signals, max %d", len(r.Analytics.ReasoningSignals), MaxSignals)
	}
	for i, s := range r.Analytics.ReasoningSignals {
		if len(s) > MaxSignalLen {
			return fmt.Errorf("reasoning signal %d length %d exceeds %d", i, len(s), MaxSignalLen)
		}
	}

	return nil
}
