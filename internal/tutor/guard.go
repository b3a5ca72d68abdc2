package tutor

import (
	"strings"
	"unicode/utf8"
)

// questionPrefixLen is how much of the standing question the last line
// must carry to count as a restatement.
const questionPrefixLen = 30

// ensureEndsOnQuestion enforces that a CLARIFY or OFFTOPIC reply ends
// on the same question previously shown, so clarification can never
// silently change the task. When the message's last line does not
// contain a prefix of the standing question, that line is replaced
// with the question verbatim (or the question is appended when the
// reply is a single line, to keep the explanation).
func ensureEndsOnQuestion(message, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return message
	}

	lines := splitLines(message)
	if len(lines) == 0 {
		return question
	}

	if containsPrefix(lines[len(lines)-1], question) {
		return message
	}

	if len(lines) == 1 {
		return lines[0] + "\n" + question
	}
	lines[len(lines)-1] = question
	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func containsPrefix(line, question string) bool {
	prefix := question
	if len(prefix) > questionPrefixLen {
		// Back off to a rune boundary so the prefix stays valid UTF-8.
		n := questionPrefixLen
		for n > 0 && !utf8.RuneStart(prefix[n]) {
			n--
		}
		prefix = prefix[:n]
	}
	return strings.Contains(normalize(line), normalize(prefix))
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
