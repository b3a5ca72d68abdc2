package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/efuentes/sophia/internal/session"
	"github.com/efuentes/sophia/internal/turn"
)

// Message is one entry of the append-only chat log.
type Message struct {
	Role     string // "user" or "assistant"
	Content  string
	MomentID int
}

// Evaluation is the record written for every evaluated (ANSWER) turn.
type Evaluation struct {
	MomentID int
	TargetID int
	Attempt  int

	Question string
	Answer   string

	Intent         turn.Intent
	Evaluation     string // "correct", "partial", "incorrect"
	Level          int
	MasteryDelta   float64
	DeltaCorrected bool
	Score          float64
	NextStep       turn.NextStep
	Tags           []turn.Tag

	Feedback string
	Hints    []string
}

// TurnRecord is everything one processed turn persists: the learner
// and tutor messages, the evaluation (nil on CLARIFY/OFFTOPIC turns)
// and the post-turn state snapshot.
type TurnRecord struct {
	SessionID        string
	UserMessage      Message
	AssistantMessage Message
	Evaluation       *Evaluation
	State            *session.State
}

// SaveTurn writes one turn as a single transaction: both chat
// appends, the evaluation record when present, and the session state
// update succeed together or not at all.
func (s *Store) SaveTurn(ctx context.Context, rec TurnRecord) error {
	raw, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin turn tx: %w", err)
	}
	defer tx.Rollback()

	for _, msg := range []Message{rec.UserMessage, rec.AssistantMessage} {
		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		if err := insertMessage(ctx, tx, rec.SessionID, seq, msg); err != nil {
			return err
		}
	}

	if rec.Evaluation != nil {
		if err := insertEvaluation(ctx, tx, rec.SessionID, rec.Evaluation); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET state = ?, is_completed = ?, updated_at = ? WHERE id = ?`,
		string(raw), boolInt(rec.State.IsCompleted),
		time.Now().UTC().Format(time.RFC3339Nano), rec.SessionID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update session: session %s not found", rec.SessionID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn tx: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, e execer, sessionID string, seq int64, msg Message) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, role, content, moment_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), sessionID, seq, msg.Role, msg.Content, msg.MomentID,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func insertEvaluation(ctx context.Context, tx *sql.Tx, sessionID string, ev *Evaluation) error {
	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	hints, err := json.Marshal(ev.Hints)
	if err != nil {
		return fmt.Errorf("marshal hints: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (
			id, session_id, seq, moment_id, target_id, attempt,
			question, answer, intent, evaluation, level,
			mastery_delta, delta_corrected, score, next_step,
			tags, feedback, hints, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), sessionID, seq, ev.MomentID, ev.TargetID, ev.Attempt,
		ev.Question, ev.Answer, string(ev.Intent), ev.Evaluation, ev.Level,
		ev.MasteryDelta, boolInt(ev.DeltaCorrected), ev.Score, string(ev.NextStep),
		string(tags), ev.Feedback, string(hints),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}
