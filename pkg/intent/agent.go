package intent

import (
	"context"
	"fmt"
	"sync"

	"github.com/voicedesk/voicedesk/pkg/convstore"
)

// System prompts for the two model calls made per caller turn.
const (
	analyzePrompt = "You are a customer support AI analyzing user intent."
	respondPrompt = "You are a helpful customer support AI assistant. Provide clear and concise responses."

	placeholderConfidence = 0.9
)

// Agent analyzes utterances and drafts replies for a single call. It
// keeps the call's transcript in memory; the transcript is lost on
// restart unless flushed to a conversation store.
type Agent struct {
	client ChatClient

	mu      sync.Mutex
	history []convstore.Turn
}

// NewAgent creates an agent for one call.
func NewAgent(client ChatClient) *Agent {
	return &Agent{client: client}
}

// AnalyzeIntent appends the utterance to the transcript, asks the model
// to analyze it, and buckets the analysis into the intent taxonomy. The
// confidence score is a fixed placeholder, not model-derived.
func (a *Agent) AnalyzeIntent(ctx context.Context, utterance string) (Intent, error) {
	a.append(convstore.RoleUser, utterance)

	analysis, err := a.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: analyzePrompt},
		{Role: RoleUser, Content: utterance},
	})
	if err != nil {
		return Intent{}, err
	}

	return Intent{
		Category:     Classify(analysis),
		OriginalText: utterance,
		Confidence:   placeholderConfidence,
	}, nil
}

// GenerateResponse asks the model for a reply fitting the intent and
// appends it to the transcript.
func (a *Agent) GenerateResponse(ctx context.Context, in Intent) (string, error) {
	reply, err := a.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: respondPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(
			"Generate a response for intent: %s, user said: %s",
			in.Category, in.OriginalText)},
	})
	if err != nil {
		return "", err
	}

	a.append(convstore.RoleAssistant, reply)
	return reply, nil
}

// Reset clears the in-memory transcript.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// History returns a copy of the transcript in turn order.
func (a *Agent) History() []convstore.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]convstore.Turn, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) append(role, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, convstore.Turn{Role: role, Content: content})
}
