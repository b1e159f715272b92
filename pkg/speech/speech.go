// Package speech provides a unified interface for speech recognition and
// synthesis providers.
//
// The default implementation wraps Google Cloud Speech-to-Text and
// Text-to-Speech. A Mock implementation is included for tests and for
// running the agent without cloud credentials.
package speech

import (
	"context"
	"log/slog"
	"time"
)

// Provider converts telephony audio to text and replies to audio.
// Implementations are single-shot: no streaming, no partial results.
type Provider interface {
	// Recognize transcribes linear-PCM 16kHz mono audio. It returns the
	// top alternative of the first result, or "" when nothing was
	// recognized.
	Recognize(ctx context.Context, audio []byte) (string, error)

	// Synthesize renders text as MP3 audio with the provider's
	// configured voice.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Config holds speech provider configuration.
type Config struct {
	// CredentialsFile is the path to a service account key file.
	CredentialsFile string

	// Language is the BCP-47 recognition/synthesis language code.
	Language string

	// Voice is the synthesis voice name.
	Voice string

	// Timeout bounds each provider call.
	Timeout time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithCredentialsFile sets the service account key file path.
func WithCredentialsFile(path string) Option {
	return func(c *Config) { c.CredentialsFile = path }
}

// WithLanguage sets the language code.
func WithLanguage(code string) Option {
	return func(c *Config) { c.Language = code }
}

// WithVoice sets the synthesis voice name.
func WithVoice(name string) Option {
	return func(c *Config) { c.Voice = name }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible defaults for US English telephony.
func DefaultConfig() *Config {
	return &Config{
		Language: "en-US",
		Voice:    "en-US-Standard-A",
		Timeout:  30 * time.Second,
		Logger:   slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
