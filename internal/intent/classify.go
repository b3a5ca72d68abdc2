// Package intent classifies raw learner text independently of the
// model's own judgment. The heuristic is deliberately conservative:
// it exists to catch clarification requests the model misread as
// answers, not to replace the model's evaluation.
package intent

import (
	"regexp"
	"strings"

	"github.com/efuentes/sophia/internal/turn"
)

// shortQuestionLen bounds the "bare term question" rule ("hazard?").
const shortQuestionLen = 15

// offTopicLen bounds the greeting/farewell rule.
const offTopicLen = 20

// definitionalPatterns match direct requests for a definition or an
// explanation at the start of the message.
var definitionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^what is\b`),
	regexp.MustCompile(`^what are\b`),
	regexp.MustCompile(`^what do you mean\b`),
	regexp.MustCompile(`^what does .+ mean\b`),
	regexp.MustCompile(`^which is\b`),
	regexp.MustCompile(`^can you explain\b`),
	regexp.MustCompile(`^could you explain\b`),
	regexp.MustCompile(`^please explain\b`),
	regexp.MustCompile(`^explain\b`),
	regexp.MustCompile(`^tell me what\b`),
}

// confusionPhrases signal confusion anywhere in the message.
var confusionPhrases = []string{
	"i don't understand",
	"i dont understand",
	"i do not understand",
	"i'm confused",
	"im confused",
	"that confuses me",
	"not clear to me",
	"i'm lost",
	"no idea what",
	"what do you mean",
	"what does that mean",
	"could you clarify",
	"can you clarify",
}

// simpleReplies are short questions that are confirmations, not
// clarification requests ("yes?", "no?").
var simpleReplies = map[string]bool{
	"yes": true, "no": true, "maybe": true, "sure": true,
	"ok": true, "okay": true, "yeah": true, "nope": true,
}

// greetingWords mark short social messages as off-topic.
var greetingWords = []string{
	"hello", "hi there", "hey", "good morning", "good afternoon",
	"good evening", "goodbye", "bye", "thanks", "thank you",
	"how are you", "see you", "what's up",
}

// Classify maps raw learner text to a turn intent. Pure function; used
// both standalone and as the trust-but-verify check against the
// model's declared intent.
func Classify(text string) turn.Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return turn.IntentAnswer
	}

	if IsClarification(trimmed) {
		return turn.IntentClarify
	}

	if len(trimmed) < offTopicLen {
		lower := strings.ToLower(trimmed)
		for _, g := range greetingWords {
			if strings.Contains(lower, g) {
				return turn.IntentOffTopic
			}
		}
	}

	return turn.IntentAnswer
}

// IsClarification reports whether the text reads as a request to
// clarify the standing question rather than an attempt to answer it.
func IsClarification(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}

	for _, p := range definitionalPatterns {
		if p.MatchString(lower) {
			return true
		}
	}

	hasConfusion := false
	for _, phrase := range confusionPhrases {
		if strings.Contains(lower, phrase) {
			hasConfusion = true
			break
		}
	}
	if hasConfusion {
		return true
	}

	// Very short bare questions about a term ("hazard?", "the what?"),
	// excluding plain confirmations.
	if strings.HasSuffix(lower, "?") && len(lower) <= shortQuestionLen {
		bare := strings.TrimSpace(strings.TrimSuffix(lower, "?"))
		if !simpleReplies[bare] {
			return true
		}
	}

	return false
}
