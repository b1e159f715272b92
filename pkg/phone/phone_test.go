package phone_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/voicedesk/voicedesk/pkg/phone"
)

func TestValid(t *testing.T) {
	cases := []struct {
		number string
		want   bool
	}{
		{"1234567890", true},
		{"+1 (555) 123-4567", true},
		{"123456789012345", true},
		{"123456789", false},
		{"1234567890123456", false},
		{"", false},
		{"not a number", false},
	}

	for _, tc := range cases {
		if got := phone.Valid(tc.number); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.number, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"1234567890", "+11234567890"},
		{"(555) 012-3456", "+15550123456"},
		{"15550123456", "+15550123456"},
		{"+1 555 012 3456", "+15550123456"},
	}

	for _, tc := range cases {
		if got := phone.Format(tc.number); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.number, got, tc.want)
		}
	}
}

func TestCallID(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	hexID := regexp.MustCompile(`^[0-9a-f]{32}$`)

	t.Run("is 32 hex characters", func(t *testing.T) {
		id := phone.CallID("1234567890", now)
		if !hexID.MatchString(id) {
			t.Errorf("CallID = %q, want 32 lowercase hex chars", id)
		}
	})

	t.Run("same number and second collide", func(t *testing.T) {
		a := phone.CallID("1234567890", now)
		b := phone.CallID("1234567890", now.Add(500*time.Millisecond))
		if a != b {
			t.Error("expected sub-second timestamps to produce the same id")
		}
	})

	t.Run("different seconds differ", func(t *testing.T) {
		a := phone.CallID("1234567890", now)
		b := phone.CallID("1234567890", now.Add(time.Second))
		if a == b {
			t.Error("expected different seconds to produce different ids")
		}
	})
}

func TestNewCallID(t *testing.T) {
	hexID := regexp.MustCompile(`^[0-9a-f]{32}$`)

	a := phone.NewCallID()
	b := phone.NewCallID()
	if !hexID.MatchString(a) {
		t.Errorf("NewCallID = %q, want 32 hex chars", a)
	}
	if a == b {
		t.Error("expected random ids to differ")
	}
}
