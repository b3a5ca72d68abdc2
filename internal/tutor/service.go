package tutor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/efuentes/sophia/internal/intent"
	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/llm"
	"github.com/efuentes/sophia/internal/mastery"
	"github.com/efuentes/sophia/internal/session"
	"github.com/efuentes/sophia/internal/store"
	"github.com/efuentes/sophia/internal/turn"
)

// Service processes lesson turns. Safe for concurrent use across
// sessions; turns within one session are serialized.
type Service struct {
	store    *store.Store
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the orchestrator.
func NewService(st *store.Store, provider llm.Provider, cfg Config) *Service {
	return &Service{
		store:    st,
		provider: provider,
		cfg:      cfg.withDefaults(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the serialization lock for a session. State
// mutation is read-modify-write, so at most one turn per session may
// be in flight.
func (s *Service) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// OpenSession loads or creates the session for (userID, lessonID).
// A fresh session gets its opening question recorded before the first
// turn. The boolean reports whether the session was created.
func (s *Service) OpenSession(ctx context.Context, userID string, lessonID int) (*store.Session, bool, error) {
	l, err := lesson.Get(lessonID)
	if err != nil {
		return nil, false, err
	}

	st := session.New(l)
	st.Summary = session.InitialSummary(st, l)

	sess, created, err := s.store.GetOrCreate(ctx, userID, lessonID, st)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return sess, false, nil
	}

	question := s.openingQuestion(ctx, l, sess.State)
	sess.State.LastQuestionShown = question
	if err := s.store.AppendMessage(ctx, sess.ID, store.Message{
		Role: "assistant", Content: question, MomentID: sess.State.CurrentMomentID,
	}); err != nil {
		return nil, false, err
	}
	if err := s.store.SaveState(ctx, sess.ID, sess.State); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// openingQuestion asks the model for the session's first question.
// On any provider failure it falls back to a question built from the
// moment's goal, so a session can always start.
func (s *Service) openingQuestion(ctx context.Context, l *lesson.Lesson, st *session.State) string {
	m, ok := l.Moment(st.CurrentMomentID)
	if !ok {
		return "Ready to begin?"
	}
	fallback := fmt.Sprintf("Let's begin with %q. %s In your own words, what do you already know about this?",
		m.Title, m.Goal)

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, "opening"), s.cfg.Timeout)
	defer cancel()

	refs := ""
	if len(m.ReferenceQuestions) > 0 {
		refs = "\nReference questions (inspiration only, do not reuse verbatim): " +
			strings.Join(m.ReferenceQuestions, " | ")
	}
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf(
				"Write the opening question for moment %q of the lesson %q. Goal: %s%s\nReply with the question only, plain text.",
				m.Title, l.Title, m.Goal, refs),
		}},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return fallback
	}
	q := strings.TrimSpace(strings.Trim(string(resp.Content), `"`))
	if q == "" {
		return fallback
	}
	return q
}

// Input is one learner turn.
type Input struct {
	SessionID     string
	QuestionShown string // empty means the session's standing question
	StudentAnswer string
}

// Result is what the hosting layer renders after a processed turn.
type Result struct {
	Intent  turn.Intent
	Message string
	Hints   []string

	// Evaluation is "correct", "partial" or "incorrect" on evaluated
	// turns, empty otherwise.
	Evaluation string

	Transition session.Transition
	State      *session.State
}

// ProcessTurn runs one complete turn. Provider failures bubble to the
// caller with no state mutated; the learner's message is not consumed
// and may be resubmitted.
func (s *Service) ProcessTurn(ctx context.Context, in Input) (*Result, error) {
	lock := s.lockFor(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.store.GetSession(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.State.IsCompleted {
		return nil, ErrSessionCompleted
	}

	l, err := lesson.Get(sess.LessonID)
	if err != nil {
		return nil, err
	}

	// Work on a clone: a failed turn leaves the stored state intact.
	st := sess.State.Clone()
	st.Normalize()

	question := strings.TrimSpace(in.QuestionShown)
	if question == "" {
		question = st.LastQuestionShown
	}

	heuristic := intent.Classify(in.StudentAnswer)

	recent, err := s.store.RecentMessages(ctx, in.SessionID, s.cfg.RecentTurns*2)
	if err != nil {
		return nil, err
	}

	prompt := composePrompt(promptInput{
		Lesson:           l,
		State:            st,
		Recent:           recent,
		QuestionShown:    question,
		StudentAnswer:    in.StudentAnswer,
		Heuristic:        heuristic,
		ClarifyTerm:      intent.ExtractTerm(in.StudentAnswer),
		ClarifyExhausted: heuristic == turn.IntentClarify && st.ClarifyTurns >= s.cfg.MaxClarifyTurns,
	})

	callCtx, cancel := context.WithTimeout(llm.WithPurpose(ctx, "turn"), s.cfg.Timeout)
	defer cancel()

	out, err := s.provider.Generate(callCtx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:      turn.ResponseSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: temperatureFor(st.AggregateMastery),
	})
	if err != nil {
		return nil, err
	}

	resp, err := turn.Parse(out.Content)
	if err != nil {
		return nil, err
	}

	resp = intent.Reconcile(resp, heuristic)

	res := &Result{Intent: resp.Intent, Hints: resp.Chat.Hints}

	// Both messages of the turn belong to the moment that was on
	// screen, even when the evaluation advances past it below.
	turnMoment := st.CurrentMomentID
	rec := store.TurnRecord{
		SessionID:   in.SessionID,
		UserMessage: store.Message{Role: "user", Content: in.StudentAnswer, MomentID: turnMoment},
	}

	switch resp.Intent {
	case turn.IntentClarify:
		st.ClarifyTurns++
		res.Message = ensureEndsOnQuestion(resp.Chat.Message, question)
		st.LastQuestionShown = question

	case turn.IntentOffTopic:
		res.Message = ensureEndsOnQuestion(resp.Chat.Message, question)
		st.LastQuestionShown = question

	default:
		rec.Evaluation = s.evaluate(st, l, resp, question, in.StudentAnswer)
		res.Evaluation = resp.Evaluation()
		res.Transition = session.Advance(st, l, resp.Progress.NextStep)
		st.Summary = session.Distill(st, l, resp, in.StudentAnswer)

		res.Message = resp.Chat.Message
		if st.IsCompleted {
			res.Message = completionMessage(resp.Chat.Message, st)
		}
		// The reply's closing line becomes the standing question for
		// the next turn's clarify guard.
		st.LastQuestionShown = lastLine(res.Message)
	}

	rec.AssistantMessage = store.Message{Role: "assistant", Content: res.Message, MomentID: turnMoment}
	rec.State = st

	if err := s.store.SaveTurn(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	res.State = st
	return res, nil
}

// evaluate runs the evaluated (ANSWER) path: delta validation against
// the rubric level, mastery application, attempt bookkeeping. Returns
// the evaluation record to persist.
func (s *Service) evaluate(st *session.State, l *lesson.Lesson, resp *turn.Response, question, answer string) *store.Evaluation {
	level := mastery.InferLevel(resp.Progress.Tags, resp.Progress.MasteryDelta)
	check := mastery.ValidateAndCorrectDelta(level, resp.Progress.Tags, resp.Progress.MasteryDelta)
	delta := check.CorrectedDelta
	if !check.Valid {
		resp.Analytics.ReasoningSignals = appendSignal(resp.Analytics.ReasoningSignals, "DELTA:CORRECTED")
	}

	correct := resp.IsCorrect()
	st.RecordAttempt(correct)
	st.ApplyDelta(l, delta)

	return &store.Evaluation{
		MomentID:       st.CurrentMomentID,
		TargetID:       st.CurrentTargetID,
		Attempt:        st.AttemptsInCurrent,
		Question:       question,
		Answer:         answer,
		Intent:         resp.Intent,
		Evaluation:     resp.Evaluation(),
		Level:          level,
		MasteryDelta:   delta,
		DeltaCorrected: !check.Valid,
		Score:          scoreFor(correct, delta),
		NextStep:       resp.Progress.NextStep,
		Tags:           resp.Progress.Tags,
		Feedback:       resp.Chat.Message,
		Hints:          resp.Chat.Hints,
	}
}

func appendSignal(signals []string, signal string) []string {
	for _, s := range signals {
		if s == signal {
			return signals
		}
	}
	if len(signals) >= turn.MaxSignals {
		signals = signals[:turn.MaxSignals-1]
	}
	return append(signals, signal)
}

func completionMessage(message string, st *session.State) string {
	return fmt.Sprintf("%s\n\nLesson completed. Overall mastery: %.0f%% (%d of %d answers correct).",
		strings.TrimSpace(message), st.AggregateMastery*100, st.CorrectAnswers, st.TotalAttempts)
}

func lastLine(message string) string {
	lines := splitLines(message)
	if len(lines) == 0 {
		return message
	}
	return lines[len(lines)-1]
}
