package tutor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/mastery"
	"github.com/efuentes/sophia/internal/session"
	"github.com/efuentes/sophia/internal/store"
	"github.com/efuentes/sophia/internal/turn"
)

// Per-section token budgets. Each section is truncated independently
// before concatenation, never globally, so the current exchange can
// never be dropped in favor of older context.
const (
	lessonFactsBudget  = 100
	studentStateBudget = 150
	summaryBudget      = 250
	recentTurnsBudget  = 350
	perTurnBudget      = 100
)

// estimateTokens approximates token count as ceil(len/3), a
// conservative ratio for mixed prose.
func estimateTokens(s string) int {
	return (len(s) + 2) / 3
}

// truncateToTokens trims s to roughly the given token budget, cutting
// on a word boundary, or failing that a rune boundary.
func truncateToTokens(s string, budget int) string {
	if estimateTokens(s) <= budget {
		return s
	}
	max := budget * 3
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

const systemPrompt = `You are Sophia, a patient one-on-one tutor guiding a learner through a structured lesson.

Rules:
- Evaluate only against the rubric of the active target.
- Ask exactly one question per turn, always as the last line of your message.
- Reference questions are inspiration only; never reuse them verbatim.
- Be concrete and brief. Encourage without inflating the evaluation.
- Respond with JSON matching the required schema and nothing else.`

// promptInput carries everything the composer needs for one turn.
type promptInput struct {
	Lesson *lesson.Lesson
	State  *session.State
	Recent []store.Message

	QuestionShown string
	StudentAnswer string

	Heuristic   turn.Intent
	ClarifyTerm string

	// ClarifyExhausted marks a clarification past the session budget.
	ClarifyExhausted bool
}

// composePrompt assembles the turn prompt from independently capped
// sections.
func composePrompt(in promptInput) string {
	var sections []string

	sections = append(sections,
		"[LESSON]\n"+truncateToTokens(lessonFacts(in.Lesson), lessonFactsBudget))
	sections = append(sections,
		"[STUDENT]\n"+truncateToTokens(studentState(in), studentStateBudget))
	if in.State.Summary != "" {
		sections = append(sections,
			"[SUMMARY]\n"+truncateToTokens(in.State.Summary, summaryBudget))
	}
	if rt := recentTurns(in.Recent); rt != "" {
		sections = append(sections,
			"[RECENT]\n"+truncateToTokens(rt, recentTurnsBudget))
	}
	sections = append(sections, "[TURN]\n"+currentTurn(in))

	return strings.Join(sections, "\n\n")
}

func lessonFacts(l *lesson.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", l.Title, l.Description)
	if len(l.LearningObjectives) > 0 {
		b.WriteString(" Objectives: " + strings.Join(l.LearningObjectives, "; ") + ".")
	}
	return b.String()
}

func studentState(in promptInput) string {
	s, l := in.State, in.Lesson
	var b strings.Builder

	if tgt, ok := l.Target(s.CurrentTargetID); ok {
		fmt.Fprintf(&b, "Active target %q, mastery %.2f of %.2f required.\n",
			tgt.Title, s.Mastery(tgt.ID), tgt.MinMastery)
		b.WriteString(rubricExcerpt(tgt, s.Mastery(tgt.ID)))
	}
	if m, ok := l.Moment(s.CurrentMomentID); ok {
		fmt.Fprintf(&b, "\nMoment %d/%d %q: %s", m.ID+1, l.MomentCount(), m.Title, m.Goal)
		if len(m.ReferenceQuestions) > 0 {
			b.WriteString("\nReference questions (inspiration only, do not reuse verbatim): " +
				strings.Join(m.ReferenceQuestions, " | "))
		}
		for _, img := range m.Images {
			if img.MustUse {
				fmt.Fprintf(&b, "\nYou must reference this material: %s (%s)", img.Description, img.URL)
			}
		}
	}
	fmt.Fprintf(&b, "\nAttempts on this moment: %d. Consecutive correct: %d.",
		s.AttemptsInCurrent, s.ConsecutiveCorrect)
	return b.String()
}

// rubricExcerpt shows the learner's current level and the one above,
// plus the target's common errors. The full rubric would blow the
// section budget without adding evaluation signal.
func rubricExcerpt(tgt lesson.Target, m float64) string {
	var b strings.Builder
	cur := mastery.LevelFor(m)
	for _, lv := range tgt.Rubric.Levels {
		if lv.Level == cur || lv.Level == cur+1 {
			fmt.Fprintf(&b, "Level %d (%s): %s\n", lv.Level, lv.Name, strings.Join(lv.Criteria, "; "))
		}
	}
	if len(tgt.Rubric.CommonErrors) > 0 {
		b.WriteString("Common errors: " + strings.Join(tgt.Rubric.CommonErrors, "; "))
	}
	return b.String()
}

func recentTurns(msgs []store.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		role := "Student"
		if m.Role == "assistant" {
			role = "Tutor"
		}
		lines = append(lines, truncateToTokens(role+": "+m.Content, perTurnBudget))
	}
	return strings.Join(lines, "\n")
}

func currentTurn(in promptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question shown: %s\nStudent: %s", in.QuestionShown, in.StudentAnswer)

	switch in.Heuristic {
	case turn.IntentClarify:
		b.WriteString("\nThe student is asking for clarification")
		if in.ClarifyTerm != "" {
			fmt.Fprintf(&b, " about %q", in.ClarifyTerm)
		}
		b.WriteString(". Answer it briefly, do not evaluate, and finish by restating the question shown.")
		if in.ClarifyExhausted {
			b.WriteString(" The clarification budget is spent: be firm that an answer is needed now.")
		}
	case turn.IntentOffTopic:
		b.WriteString("\nThe message is off topic. Redirect warmly to the question shown, do not evaluate.")
	default:
		b.WriteString("\nEvaluate this answer against the rubric.")
	}
	return b.String()
}
