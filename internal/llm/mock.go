package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply for the MockProvider. Err, when
// set, is returned instead of a response.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and keeps every
// request it received, so tests can script a whole conversation up
// front and then inspect the prompts and parameters that were sent.
// Safe for concurrent use.
type MockProvider struct {
	mu    sync.Mutex
	queue []MockResponse

	// Calls holds every request passed to Generate, oldest first.
	Calls []Request
}

// NewMockProvider creates a MockProvider scripted with the given
// replies.
func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{queue: replies}
}

// AddResponse scripts one more reply at the end of the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// Generate records the request and pops the next scripted reply.
// Running past the script yields ErrProviderUnavailable, which reads
// as an outage to the code under test.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	next, ok := m.pop()
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}

	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// pop removes and returns the head of the queue. Callers hold mu.
func (m *MockProvider) pop() (MockResponse, bool) {
	if len(m.queue) == 0 {
		return MockResponse{}, false
	}
	head := m.queue[0]
	m.queue = m.queue[1:]
	return head, true
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns how many times Generate was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
