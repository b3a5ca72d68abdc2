package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/efuentes/sophia/internal/session"
)

// Session is a persisted learner session: one open row per
// (user, lesson) pair, with the full state snapshot as JSON.
type Session struct {
	ID        string
	UserID    string
	LessonID  int
	State     *session.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetOrCreate loads the session for (userID, lessonID), creating it
// with the given fresh state when none exists. The second return
// value reports whether a new session was created.
func (s *Store) GetOrCreate(ctx context.Context, userID string, lessonID int, fresh *session.State) (*Session, bool, error) {
	got, err := s.getSession(ctx, userID, lessonID)
	if err == nil {
		return got, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		State:     fresh,
		CreatedAt: now,
		UpdatedAt: now,
	}
	raw, err := json.Marshal(fresh)
	if err != nil {
		return nil, false, fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, lesson_id, state, is_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, userID, lessonID, string(raw), boolInt(fresh.IsCompleted),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, false, fmt.Errorf("insert session: %w", err)
	}
	return sess, true, nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, lesson_id, state, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (s *Store) getSession(ctx context.Context, userID string, lessonID int) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, lesson_id, state, created_at, updated_at
		 FROM sessions WHERE user_id = ? AND lesson_id = ?`, userID, lessonID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*Session, error) {
	var (
		sess                 Session
		raw                  string
		createdAt, updatedAt string
	)
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.LessonID, &raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	st := &session.State{}
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	st.Normalize()
	sess.State = st
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &sess, nil
}

// SaveState persists a session's state snapshot outside a turn
// transaction. Used when the bootstrap records the opening question.
func (s *Store) SaveState(ctx context.Context, sessionID string, st *session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, is_completed = ?, updated_at = ? WHERE id = ?`,
		string(raw), boolInt(st.IsCompleted),
		time.Now().UTC().Format(time.RFC3339Nano), sessionID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update session: session %s not found", sessionID)
	}
	return nil
}

// AppendMessage appends a single chat message outside a turn
// transaction. Used for the session bootstrap (the opening question).
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg Message) error {
	seq, err := nextSeq(ctx, s.db)
	if err != nil {
		return err
	}
	return insertMessage(ctx, s.db, sessionID, seq, msg)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
