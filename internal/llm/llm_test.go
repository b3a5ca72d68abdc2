package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Content: json.RawMessage(`{"ok": true}`)},
	)
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"ok": true}` {
		t.Errorf("content = %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetryInvalidResponseOnlyOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json again")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, fastRetry(5))

	_, err := p.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	// One original call plus exactly one retry.
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetryDoesNotRetryTruncation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %v, want ErrMaxTokensExceeded", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Hour, // the canceled context must win
		MaxWait:     time.Hour,
		Multiplier:  2.0,
	})

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func testSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"verdict": map[string]any{
					"type": "string",
					"enum": []any{"CORRECT", "INCORRECT"},
				},
				"delta": map[string]any{
					"type":    "number",
					"minimum": -0.3,
					"maximum": 0.3,
				},
			},
			"required":             []any{"verdict", "delta"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	schema := testSchema("eval-v1")

	if err := validateResponse(schema, json.RawMessage(`{"verdict": "CORRECT", "delta": 0.1}`)); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	cases := map[string]string{
		"bad enum":        `{"verdict": "SHRUG", "delta": 0.1}`,
		"out of range":    `{"verdict": "CORRECT", "delta": 0.9}`,
		"missing field":   `{"verdict": "CORRECT"}`,
		"extra field":     `{"verdict": "CORRECT", "delta": 0.1, "note": "hi"}`,
		"not even json":   `nope`,
		"wrong root type": `[1, 2, 3]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			err := validateResponse(schema, json.RawMessage(payload))
			if err == nil {
				t.Fatal("expected rejection")
			}
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Errorf("err = %v, want ErrInvalidResponse", err)
			}
		})
	}

	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Errorf("nil schema must validate nothing: %v", err)
	}
}

func TestValidateResponseCachesCompilation(t *testing.T) {
	schema := testSchema("eval-cache")
	for i := 0; i < 3; i++ {
		if err := validateResponse(schema, json.RawMessage(`{"verdict": "CORRECT", "delta": 0}`)); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := compiledSchemas.Load("eval-cache"); !ok {
		t.Error("compiled schema not cached")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := WithPurpose(context.Background(), "turn")
	if got := PurposeFrom(ctx); got != "turn" {
		t.Errorf("PurposeFrom = %q", got)
	}
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
}

type memEvents struct {
	events []RequestEvent
}

func (m *memEvents) AppendLLMRequest(_ context.Context, ev RequestEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func TestLoggingRecordsRequests(t *testing.T) {
	events := &memEvents{}
	mock := NewMockProvider(
		MockResponse{
			Content: json.RawMessage(`{}`),
			Usage:   Usage{InputTokens: 500, OutputTokens: 120},
		},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithLogging(mock, events)
	ctx := WithPurpose(context.Background(), "turn")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected failure")
	}

	if len(events.events) != 2 {
		t.Fatalf("events = %d, want 2", len(events.events))
	}
	ok := events.events[0]
	if !ok.Success || ok.Purpose != "turn" || ok.InputTokens != 500 {
		t.Errorf("success event = %+v", ok)
	}
	failed := events.events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestMockProviderFIFO(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: json.RawMessage(`1`)})
	mock.AddResponse(MockResponse{Content: json.RawMessage(`2`)})

	a, _ := mock.Generate(context.Background(), Request{})
	b, _ := mock.Generate(context.Background(), Request{})
	if string(a.Content) != "1" || string(b.Content) != "2" {
		t.Errorf("FIFO order broken: %s, %s", a.Content, b.Content)
	}

	_, err := mock.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("empty queue err = %v", err)
	}
}
