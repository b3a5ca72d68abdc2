package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/efuentes/sophia/internal/llm"
)

// Events returns an llm.EventSink that appends request events to the
// llm_requests table.
func (s *Store) Events() llm.EventSink {
	return &eventRepo{store: s}
}

type eventRepo struct {
	store *Store
}

var _ llm.EventSink = (*eventRepo)(nil)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, ev llm.RequestEvent) error {
	seq, err := nextSeq(ctx, r.store.db)
	if err != nil {
		return err
	}
	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO llm_requests (
			id, seq, model, purpose, input_tokens, output_tokens,
			latency_ms, success, error_message, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), seq, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
		ev.LatencyMs, boolInt(ev.Success), ev.ErrorMessage,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert llm request: %w", err)
	}
	return nil
}

// LLMUsage aggregates request events per model.
type LLMUsage struct {
	Model        string
	Requests     int
	Failures     int
	InputTokens  int64
	OutputTokens int64
	AvgLatencyMs int64
}

// LLMUsageByModel summarizes all recorded requests grouped by model.
func (s *Store) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, COUNT(*),
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0)
		 FROM llm_requests GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query llm usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Model, &u.Requests, &u.Failures,
			&u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
