package intent

import "github.com/efuentes/sophia/internal/turn"

// ClarifyMarker is appended to reasoning signals whenever the
// heuristic overrides the model's declared intent, for observability.
const ClarifyMarker = "MODE:CLARIFY"

// Reconcile applies the trust-but-verify override: when the heuristic
// detected a clarification request the model missed, the model's
// judgment on progress is discarded: intent becomes CLARIFY, the
// mastery delta is zeroed, the step forced to RETRY and the tags
// replaced unless already clarify-compatible.
//
// Reconcile never mutates its input; it returns the response itself
// when no override applies, or a corrected copy. Applying it twice
// yields the same result as applying it once.
func Reconcile(resp *turn.Response, heuristic turn.Intent) *turn.Response {
	if heuristic != turn.IntentClarify || resp.Intent == turn.IntentClarify {
		return resp
	}

	out := resp.Clone()
	out.Intent = turn.IntentClarify
	out.Progress.MasteryDelta = 0
	out.Progress.NextStep = turn.StepRetry
	if !clarifyCompatible(out.Progress.Tags) {
		out.Progress.Tags = []turn.Tag{turn.TagNeedsHelp}
	}
	out.Analytics.ReasoningSignals = appendMarker(out.Analytics.ReasoningSignals)

	return out
}

// clarifyCompatible reports whether the tag set already expresses a
// help-seeking turn.
func clarifyCompatible(tags []turn.Tag) bool {
	for _, t := range tags {
		if t == turn.TagNeedsHelp || t == turn.TagConceptual {
			return true
		}
	}
	return false
}

func appendMarker(signals []string) []string {
	for _, s := range signals {
		if s == ClarifyMarker {
			return signals
		}
	}
	if len(signals) >= turn.MaxSignals {
		// Keep the contract bound; the marker displaces the last signal.
		signals = signals[:turn.MaxSignals-1]
	}
	return append(signals, ClarifyMarker)
}
