package llm

import (
	"context"
	"time"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label ("turn", "preview", ...) to the
// context for request event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// RequestEvent describes one completed provider call, success or not.
type RequestEvent struct {
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventSink receives request events. The persistence layer provides
// the concrete implementation so this package stays free of storage
// concerns.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, ev RequestEvent) error
}

// loggingProvider emits a RequestEvent for every Generate call.
type loggingProvider struct {
	inner Provider
	sink  EventSink
}

// WithLogging wraps a Provider with request event logging. A nil sink
// disables logging.
func WithLogging(p Provider, sink EventSink) Provider {
	return &loggingProvider{inner: p, sink: sink}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	ev := RequestEvent{
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// Event logging is observability, not control flow: a failed
	// append never fails the turn.
	if l.sink != nil {
		_ = l.sink.AppendLLMRequest(ctx, ev)
	}

	return resp, err
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
