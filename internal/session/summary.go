package session

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/mastery"
	"github.com/efuentes/sophia/internal/turn"
)

// MaxSummaryLen bounds the rolling session summary. The distiller
// guarantees len(summary) <= MaxSummaryLen after every rebuild.
const MaxSummaryLen = 600

// InitialSummary is the digest for a session with no evaluated turns.
func InitialSummary(s *State, l *lesson.Lesson) string {
	title := ""
	if tgt, ok := l.Target(s.CurrentTargetID); ok {
		title = tgt.Title
	}
	return bounded(fmt.Sprintf(
		"[STATE] New session on %q, moment %d, working on %q, mastery %.2f.\n"+
			"[EVIDENCE] No answers yet.\n"+
			"[GAP] Baseline unknown, first answer establishes it.\n"+
			"[PLAN] Open with an accessible question to gauge the starting level.",
		l.Title, s.CurrentMomentID, title, s.Mastery(s.CurrentTargetID)))
}

// Distill rebuilds the summary from the post-turn state and the latest
// evaluated exchange. CLARIFY and OFFTOPIC turns never reach here; the
// prior summary stays in place for those.
func Distill(s *State, l *lesson.Lesson, resp *turn.Response, answer string) string {
	prior := priorEvidence(s.Summary)

	state := stateSection(s, l)
	evidence := evidenceSection(resp, answer, prior)
	gap := gapSection(s, l, resp)
	plan := planSection(s, l, resp)

	full := strings.Join([]string{
		"[STATE] " + state,
		"[EVIDENCE] " + evidence,
		"[GAP] " + gap,
		"[PLAN] " + plan,
	}, "\n")
	if len(full) <= MaxSummaryLen {
		return full
	}

	// Compact fallback: one clause per section, never a mid-sentence cut.
	compact := fmt.Sprintf("[STATE] %s [EVIDENCE] %s [GAP] %s [PLAN] %s",
		truncateClause(state, 160),
		truncateClause(evidenceSection(resp, answer, ""), 160),
		truncateClause(gap, 120),
		truncateClause(plan, 120))
	return bounded(compact)
}

func stateSection(s *State, l *lesson.Lesson) string {
	m := s.Mastery(s.CurrentTargetID)
	level := mastery.LevelFor(m)
	title := fmt.Sprintf("target %d", s.CurrentTargetID)
	if tgt, ok := l.Target(s.CurrentTargetID); ok {
		title = tgt.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%q: level %d (%s), mastery %.2f, %d attempts this moment.",
		title, level, mastery.LevelName(level), m, s.AttemptsInCurrent)

	switch {
	case s.ConsecutiveCorrect >= 3:
		fmt.Fprintf(&b, " Positive flow, %d consecutive correct.", s.ConsecutiveCorrect)
	case s.ConsecutiveCorrect == 0 && s.AttemptsInCurrent >= 2:
		b.WriteString(" Persistent difficulty on this moment.")
	}
	switch {
	case m > 0.7:
		b.WriteString(" Strong command of the target.")
	case m < 0.3:
		b.WriteString(" Weak foundations.")
	}
	return b.String()
}

func evidenceSection(resp *turn.Response, answer, prior string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest answer %s (%s): %q.",
		resp.Evaluation(), joinTagList(resp.Progress.Tags), excerpt(answer, 80))
	if prior != "" {
		b.WriteString(" Previously: " + prior)
	}
	return b.String()
}

func gapSection(s *State, l *lesson.Lesson, resp *turn.Response) string {
	tgt, ok := l.Target(s.CurrentTargetID)
	if !ok {
		return "No active target."
	}
	m := s.Mastery(s.CurrentTargetID)
	if m >= tgt.MinMastery {
		return fmt.Sprintf("Threshold %.2f reached (mastery %.2f).", tgt.MinMastery, m)
	}
	g := fmt.Sprintf("%.2f below the %.2f threshold.", tgt.MinMastery-m, tgt.MinMastery)
	if !resp.IsCorrect() && len(tgt.Rubric.CommonErrors) > 0 {
		g += " Watch for: " + tgt.Rubric.CommonErrors[0] + "."
	}
	return g
}

func planSection(s *State, l *lesson.Lesson, resp *turn.Response) string {
	switch {
	case s.IsCompleted:
		return "Lesson completed, close with a recap of what was achieved."
	case s.AttemptsInCurrent >= 3 && !resp.IsCorrect():
		return "Give a short explanation with a concrete example, then advance."
	case resp.IsCorrect() && thresholdReached(s, l):
		return "Advance to the next moment with a fresh question."
	case resp.IsCorrect():
		return "Push one step harder on the same target."
	case resp.HasTag(turn.TagConceptual):
		return "Revisit the underlying concept before asking again."
	default:
		return "Rephrase the question and offer the next graduated hint."
	}
}

func thresholdReached(s *State, l *lesson.Lesson) bool {
	tgt, ok := l.Target(s.CurrentTargetID)
	return ok && s.Mastery(s.CurrentTargetID) >= tgt.MinMastery
}

// priorEvidence pulls the first sentence of the previous summary's
// evidence section, giving the digest one turn of memory.
func priorEvidence(summary string) string {
	i := strings.Index(summary, "[EVIDENCE] ")
	if i < 0 {
		return ""
	}
	rest := summary[i+len("[EVIDENCE] "):]
	if j := strings.IndexAny(rest, "\n["); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.Index(rest, " Previously:"); j >= 0 {
		rest = rest[:j]
	}
	return truncateClause(strings.TrimSpace(rest), 100)
}

func joinTagList(tags []turn.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	cut := s[:runeFloor(s, max)]
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

// runeFloor lowers n to the nearest rune boundary in s, so a byte cut
// never splits a multibyte character.
func runeFloor(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func truncateClause(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return excerpt(s, max)
}

func bounded(s string) string {
	if len(s) <= MaxSummaryLen {
		return s
	}
	return excerpt(s, MaxSummaryLen-4)
}
