// Package intent analyzes caller utterances with a language model,
// buckets them into a fixed support-intent taxonomy, and drafts replies.
//
// Each Agent owns one conversation transcript. Create one Agent per call;
// sharing an Agent across calls mixes caller histories.
package intent

import (
	"github.com/voicedesk/voicedesk/pkg/convstore"
)

// Category is a bucket in the fixed intent taxonomy.
type Category string

const (
	CategoryGeneralHelp      Category = "general_help"
	CategoryPricing          Category = "pricing"
	CategoryTechnicalSupport Category = "technical_support"
	CategoryAccountSupport   Category = "account_support"
	CategoryGeneralInquiry   Category = "general_inquiry"
)

// Intent is the categorized purpose of one caller utterance. Immutable
// once produced.
type Intent struct {
	Category     Category `json:"category"`
	OriginalText string   `json:"original_text"`
	Confidence   float64  `json:"confidence"`
}

// Message is one chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = convstore.RoleUser
	RoleAssistant = convstore.RoleAssistant
)
