package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efuentes/sophia/internal/lesson"
	"github.com/efuentes/sophia/internal/llm"
	"github.com/efuentes/sophia/internal/session"
	"github.com/efuentes/sophia/internal/turn"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sophia.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func freshState(t *testing.T) *session.State {
	t.Helper()
	l, err := lesson.Get(1)
	require.NoError(t, err)
	return session.New(l)
}

func TestGetOrCreate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, created, err := s.GetOrCreate(ctx, "ana", 1, freshState(t))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, sess.ID)

	again, created, err := s.GetOrCreate(ctx, "ana", 1, freshState(t))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sess.ID, again.ID)
	require.NotNil(t, again.State)
	assert.Equal(t, sess.State.CurrentMomentID, again.State.CurrentMomentID)

	other, created, err := s.GetOrCreate(ctx, "ben", 1, freshState(t))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestSaveTurnRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	st := freshState(t)
	sess, _, err := s.GetOrCreate(ctx, "ana", 1, st)
	require.NoError(t, err)

	st.RecordAttempt(true)
	st.TargetMastery[st.CurrentTargetID] = 0.45
	st.Summary = "[STATE] test"

	err = s.SaveTurn(ctx, TurnRecord{
		SessionID:        sess.ID,
		UserMessage:      Message{Role: "user", Content: "a hazard is a source of harm", MomentID: 0},
		AssistantMessage: Message{Role: "assistant", Content: "Exactly right. Next question.", MomentID: 0},
		Evaluation: &Evaluation{
			MomentID:     0,
			TargetID:     st.CurrentTargetID,
			Attempt:      1,
			Question:     "What is a hazard?",
			Answer:       "a hazard is a source of harm",
			Intent:       turn.IntentAnswer,
			Evaluation:   "correct",
			Level:        4,
			MasteryDelta: 0.15,
			Score:        0.95,
			NextStep:     turn.StepAdvance,
			Tags:         []turn.Tag{turn.TagCorrect},
			Feedback:     "Exactly right. Next question.",
		},
		State: st,
	})
	require.NoError(t, err)

	loaded, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.State.TotalAttempts)
	assert.InDelta(t, 0.45, loaded.State.TargetMastery[loaded.State.CurrentTargetID], 1e-9)
	assert.Equal(t, "[STATE] test", loaded.State.Summary)

	msgs, err := s.RecentMessages(ctx, sess.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)

	views, err := s.SessionOverviews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Evaluations)
	assert.Equal(t, 2, views[0].Messages)
	assert.Equal(t, 1, views[0].CorrectAnswers)
}

func TestSaveTurnUnknownSessionRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SaveTurn(ctx, TurnRecord{
		SessionID:        "nope",
		UserMessage:      Message{Role: "user", Content: "hello"},
		AssistantMessage: Message{Role: "assistant", Content: "hi"},
		State:            freshState(t),
	})
	require.Error(t, err)

	// The message appends from the failed turn must not survive.
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	assert.Zero(t, n)
}

func TestAppendLLMRequestAndUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Events()

	require.NoError(t, repo.AppendLLMRequest(ctx, llm.RequestEvent{
		Model: "gpt-4o-mini", Purpose: "turn",
		InputTokens: 900, OutputTokens: 200, LatencyMs: 850, Success: true,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, llm.RequestEvent{
		Model: "gpt-4o-mini", Purpose: "turn",
		LatencyMs: 150, Success: false, ErrorMessage: "rate limited",
	}))

	usage, err := s.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Requests)
	assert.Equal(t, 1, usage[0].Failures)
	assert.Equal(t, int64(900), usage[0].InputTokens)
}

func TestEventsServesProviderLogging(t *testing.T) {
	s := openTestStore(t)
	ctx := llm.WithPurpose(context.Background(), "turn")

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{}`),
		Usage:   llm.Usage{InputTokens: 40, OutputTokens: 10},
	})
	p := llm.WithLogging(mock, s.Events())

	_, err := p.Generate(ctx, llm.Request{})
	require.NoError(t, err)

	usage, err := s.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "mock", usage[0].Model)
	assert.Equal(t, int64(40), usage[0].InputTokens)
}

func TestSequenceOrdersAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	st := freshState(t)
	sess, _, err := s.GetOrCreate(ctx, "ana", 1, st)
	require.NoError(t, err)

	require.NoError(t, s.AppendMessage(ctx, sess.ID, Message{Role: "assistant", Content: "opening question"}))
	require.NoError(t, s.Events().AppendLLMRequest(ctx, llm.RequestEvent{Model: "m", Purpose: "turn", Success: true}))
	require.NoError(t, s.AppendMessage(ctx, sess.ID, Message{Role: "user", Content: "an answer"}))

	var msgSeq1, evSeq, msgSeq2 int64
	require.NoError(t, s.db.QueryRow(`SELECT seq FROM messages WHERE content = 'opening question'`).Scan(&msgSeq1))
	require.NoError(t, s.db.QueryRow(`SELECT seq FROM llm_requests`).Scan(&evSeq))
	require.NoError(t, s.db.QueryRow(`SELECT seq FROM messages WHERE content = 'an answer'`).Scan(&msgSeq2))
	assert.Less(t, msgSeq1, evSeq)
	assert.Less(t, evSeq, msgSeq2)
}
