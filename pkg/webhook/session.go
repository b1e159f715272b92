package webhook

import (
	"sync"
	"time"

	"github.com/voicedesk/voicedesk/pkg/intent"
	"github.com/voicedesk/voicedesk/pkg/phone"
)

// State is the position of one call in the conversation loop.
type State int

const (
	StateGreeting State = iota
	StateListening
	StateProcessing
	StateSpeaking
	StateHangup
)

func (s State) String() string {
	switch s {
	case StateGreeting:
		return "greeting"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateHangup:
		return "hangup"
	default:
		return "unknown"
	}
}

// Session is the per-call conversation state. Each call gets its own
// Agent, so two simultaneous callers never share a transcript.
type Session struct {
	ID        string
	From      string
	To        string
	StartedAt time.Time

	mu    sync.Mutex
	state State
	agent *intent.Agent
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the session to a new state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Agent returns the session's intent agent.
func (s *Session) Agent() *intent.Agent {
	return s.agent
}

// Age returns how long the call has been running.
func (s *Session) Age() time.Duration {
	return time.Since(s.StartedAt)
}

// Sessions tracks live call sessions keyed by call identifier.
type Sessions struct {
	chat intent.ChatClient

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates a session manager whose agents talk to chat.
func NewSessions(chat intent.ChatClient) *Sessions {
	return &Sessions{
		chat:     chat,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for callID, creating it on first use.
// An empty callID gets a random identifier.
func (m *Sessions) GetOrCreate(callID, from, to string) *Session {
	if callID == "" {
		callID = phone.NewCallID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[callID]; ok {
		return s
	}
	s := &Session{
		ID:        callID,
		From:      from,
		To:        to,
		StartedAt: time.Now(),
		state:     StateGreeting,
		agent:     intent.NewAgent(m.chat),
	}
	m.sessions[callID] = s
	return s
}

// Get returns the session for callID, if live.
func (m *Sessions) Get(callID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[callID]
	return s, ok
}

// End removes and returns the session for callID.
func (m *Sessions) End(callID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callID]
	if ok {
		delete(m.sessions, callID)
	}
	return s, ok
}

// Count returns the number of live sessions.
func (m *Sessions) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
