package intent

import (
	"context"
	"sync"
)

// MockClient implements ChatClient for testing.
type MockClient struct {
	// ChatFunc is called when Chat is invoked. If nil, the last user
	// message is echoed back.
	ChatFunc func(ctx context.Context, messages []Message) (string, error)

	mu       sync.Mutex
	requests [][]Message
}

// Chat calls ChatFunc and records the request.
func (m *MockClient) Chat(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, messages)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content, nil
		}
	}
	return "", nil
}

// Requests returns every message sequence sent so far.
func (m *MockClient) Requests() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Message, len(m.requests))
	copy(out, m.requests)
	return out
}

// Verify MockClient implements ChatClient at compile time.
var _ ChatClient = (*MockClient)(nil)
