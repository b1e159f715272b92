// Package errs defines the structured error taxonomy shared by every
// voicedesk subsystem. Provider packages wrap transport failures into an
// *Error so callers can branch on Kind and surface a uniform payload.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the subsystem it originated from.
type Kind string

const (
	KindSpeech  Kind = "speech_processing"
	KindAI      Kind = "ai_processing"
	KindCall    Kind = "call_handling"
	KindGeneral Kind = "general"
)

// Error codes carried on wrapped provider failures.
const (
	CodeGoogleSpeech = "GOOGLE_SPEECH_ERROR"
	CodeOpenAI       = "OPENAI_ERROR"
	CodeTwilio       = "TWILIO_ERROR"
	CodeGeneral      = "GENERAL_ERROR"
	CodeUnknown      = "UNKNOWN_ERROR"
)

// Error is a structured agent error with a short code and detail mapping.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a detail key/value and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a structured error without an underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates a structured error around an underlying cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Speech wraps a speech recognition or synthesis failure.
func Speech(message string, err error) *Error {
	return Wrap(KindSpeech, CodeGoogleSpeech, message, err)
}

// AI wraps a language-model failure.
func AI(message string, err error) *Error {
	return Wrap(KindAI, CodeOpenAI, message, err)
}

// Call wraps a telephony provider failure.
func Call(message string, err error) *Error {
	return Wrap(KindCall, CodeTwilio, message, err)
}

// General wraps any other failure.
func General(message string, err error) *Error {
	return Wrap(KindGeneral, CodeGeneral, message, err)
}

// KindOf returns the Kind of err, or KindGeneral when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// Response converts any error into the uniform webhook error payload:
// {"success": false, "error": {"message", "code", "details"}}.
func Response(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		details := e.Details
		if details == nil {
			details = map[string]any{}
		}
		return map[string]any{
			"success": false,
			"error": map[string]any{
				"message": e.Error(),
				"code":    e.Code,
				"details": details,
			},
		}
	}
	return map[string]any{
		"success": false,
		"error": map[string]any{
			"message": err.Error(),
			"code":    CodeUnknown,
			"details": map[string]any{"error_type": fmt.Sprintf("%T", err)},
		},
	}
}
