package redact_test

import (
	"strings"
	"testing"

	"github.com/voicedesk/voicedesk/pkg/redact"
)

func TestSanitize(t *testing.T) {
	out := redact.Sanitize(`<script>alert('x')</script>`)
	for _, forbidden := range []string{"<", ">", `"`, "'"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("sanitized output %q still contains %q", out, forbidden)
		}
	}
	if !strings.Contains(out, "alert") {
		t.Errorf("sanitize should keep plain text, got %q", out)
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		secret string
	}{
		{"bare card number", "my card is 1234567890123456 thanks", "1234567890123456"},
		{"dashed card number", "card 1234-5678-9012-3456 please", "1234-5678-9012-3456"},
		{"spaced card number", "use 1234 5678 9012 3456 today", "1234 5678 9012 3456"},
		{"ssn", "ssn is 123-45-6789", "123-45-6789"},
		{"email", "reach me at caller@example.com", "caller@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := redact.Mask(tc.input)
			if strings.Contains(out, tc.secret) {
				t.Errorf("Mask(%q) = %q, still contains secret", tc.input, out)
			}
		})
	}

	t.Run("plain text untouched", func(t *testing.T) {
		in := "I need help with my account"
		if out := redact.Mask(in); out != in {
			t.Errorf("Mask(%q) = %q, want unchanged", in, out)
		}
	})
}

func TestValidAPIKey(t *testing.T) {
	if !redact.ValidAPIKey(strings.Repeat("a", 32)) {
		t.Error("32-char key should be valid")
	}
	if redact.ValidAPIKey("short") {
		t.Error("short key should be invalid")
	}
	if redact.ValidAPIKey("") {
		t.Error("empty key should be invalid")
	}
}
