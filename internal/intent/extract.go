package intent

import (
	"regexp"
	"strings"
)

// termPatterns extract the concept a clarification asks about, most
// specific first.
var termPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^what is (?:a |an |the )?(.+?)\?`),
	regexp.MustCompile(`^what are (?:the )?(.+?)\?`),
	regexp.MustCompile(`^what do you mean by (.+?)\??$`),
	regexp.MustCompile(`^what does (.+?) mean`),
	regexp.MustCompile(`i don'?t understand (?:what |the )?(.+?)(?:\.|\?|$)`),
	regexp.MustCompile(`^(.+?)\?$`),
}

// ExtractTerm pulls the term or concept a clarification question is
// about. Returns "" when no term can be isolated.
func ExtractTerm(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range termPatterns {
		if m := p.FindStringSubmatch(lower); len(m) > 1 {
			term := strings.TrimSpace(m[1])
			if term != "" && !simpleReplies[term] {
				return term
			}
		}
	}
	return ""
}
