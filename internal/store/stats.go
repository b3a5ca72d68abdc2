package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/efuentes/sophia/internal/session"
)

// SessionOverview is the per-session row shown by the stats command.
type SessionOverview struct {
	ID               string
	UserID           string
	LessonID         int
	Evaluations      int
	Messages         int
	CorrectAnswers   int
	AggregateMastery float64
	CurrentMomentID  int
	IsCompleted      bool
	UpdatedAt        time.Time
}

// SessionOverviews lists all sessions with their turn counts, newest
// first.
func (s *Store) SessionOverviews(ctx context.Context) ([]SessionOverview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.lesson_id, s.state, s.is_completed, s.updated_at,
			(SELECT COUNT(*) FROM evaluations e WHERE e.session_id = s.id),
			(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
		 FROM sessions s ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionOverview
	for rows.Next() {
		var (
			o         SessionOverview
			raw       string
			completed int
			updatedAt string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.LessonID, &raw, &completed,
			&updatedAt, &o.Evaluations, &o.Messages); err != nil {
			return nil, fmt.Errorf("scan session overview: %w", err)
		}
		var st session.State
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("unmarshal state: %w", err)
		}
		o.CorrectAnswers = st.CorrectAnswers
		o.AggregateMastery = st.AggregateMastery
		o.CurrentMomentID = st.CurrentMomentID
		o.IsCompleted = completed != 0
		o.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

// RecentMessages returns the last n chat messages of a session in
// chronological order.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, n int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, moment_id FROM (
			SELECT role, content, moment_id, seq FROM messages
			WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.MomentID); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
