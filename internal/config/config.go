// Package config loads voicedesk configuration from the process environment.
// A .env file in the working directory is read first when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultPort            = 5000
	DefaultMaxCallDuration = 30 * time.Minute
	DefaultSpeechTimeout   = 3 * time.Second
	DefaultMaxRetries      = 3
	DefaultConfidence      = 0.7
	DefaultLanguage        = "en-US"
	DefaultMetricsDir      = "metrics"
	DefaultConversationDir = "conversations"
)

// Config holds every runtime setting the agent recognizes.
type Config struct {
	// Server
	Port          int
	PublicBaseURL string

	// Telephony provider
	AccountSID  string
	AuthToken   string
	PhoneNumber string

	// Language model
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Speech services
	GoogleCredentials string

	// Call settings
	MaxCallDuration     time.Duration
	SpeechTimeout       time.Duration
	MaxRetries          int
	ConfidenceThreshold float64
	Language            string

	// Storage
	MetricsDir      string
	ConversationDir string

	// Logging
	LogLevel string
}

// Load reads configuration from the environment, applying defaults.
// Missing credentials are not an error here; callers decide whether a
// given provider is required.
func Load() *Config {
	// Best effort: absence of a .env file is normal in production.
	_ = godotenv.Load()

	return &Config{
		Port:          envInt("PORT", DefaultPort),
		PublicBaseURL: envStr("PUBLIC_BASE_URL", "http://localhost:5000"),

		AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		PhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   envStr("OPENAI_MODEL", "gpt-4o-mini"),

		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		MaxCallDuration:     envDuration("MAX_CALL_DURATION", DefaultMaxCallDuration),
		SpeechTimeout:       envDuration("SPEECH_TIMEOUT", DefaultSpeechTimeout),
		MaxRetries:          envInt("MAX_RETRIES", DefaultMaxRetries),
		ConfidenceThreshold: envFloat("AI_CONFIDENCE_THRESHOLD", DefaultConfidence),
		Language:            envStr("DEFAULT_LANGUAGE", DefaultLanguage),

		MetricsDir:      envStr("METRICS_DIR", DefaultMetricsDir),
		ConversationDir: envStr("CONVERSATIONS_DIR", DefaultConversationDir),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

// HasTelephony reports whether telephony provider credentials are set.
func (c *Config) HasTelephony() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

// HasSpeech reports whether Google speech credentials are configured.
func (c *Config) HasSpeech() bool {
	return c.GoogleCredentials != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts either a Go duration string ("3s") or a bare
// number of seconds, which is how the setting was historically written.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
