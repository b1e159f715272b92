package errs_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/voicedesk/voicedesk/pkg/errs"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.Call("update call status", cause)

	t.Run("message includes kind, code and cause", func(t *testing.T) {
		msg := err.Error()
		for _, want := range []string{"call_handling", "TWILIO_ERROR", "connection refused"} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q missing %q", msg, want)
			}
		}
	})

	t.Run("errors.Is sees the cause", func(t *testing.T) {
		if !errors.Is(err, cause) {
			t.Error("expected wrapped cause to be reachable")
		}
	})

	t.Run("errors.As recovers the structured error", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", err)
		var e *errs.Error
		if !errors.As(wrapped, &e) {
			t.Fatal("expected *errs.Error")
		}
		if e.Code != errs.CodeTwilio {
			t.Errorf("expected code %s, got %s", errs.CodeTwilio, e.Code)
		}
	})
}

func TestKindOf(t *testing.T) {
	if got := errs.KindOf(errs.AI("chat", errors.New("boom"))); got != errs.KindAI {
		t.Errorf("expected %s, got %s", errs.KindAI, got)
	}
	if got := errs.KindOf(errors.New("plain")); got != errs.KindGeneral {
		t.Errorf("expected %s for plain error, got %s", errs.KindGeneral, got)
	}
}

func TestResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		err := errs.Speech("recognize", errors.New("deadline")).WithDetail("call_id", "abc123")
		resp := errs.Response(err)

		if resp["success"] != false {
			t.Error("expected success=false")
		}
		inner, ok := resp["error"].(map[string]any)
		if !ok {
			t.Fatal("expected error payload")
		}
		if inner["code"] != errs.CodeGoogleSpeech {
			t.Errorf("expected code %s, got %v", errs.CodeGoogleSpeech, inner["code"])
		}
		details, ok := inner["details"].(map[string]any)
		if !ok || details["call_id"] != "abc123" {
			t.Errorf("expected call_id detail, got %v", inner["details"])
		}
	})

	t.Run("plain error degrades to UNKNOWN_ERROR", func(t *testing.T) {
		resp := errs.Response(errors.New("boom"))
		inner := resp["error"].(map[string]any)
		if inner["code"] != errs.CodeUnknown {
			t.Errorf("expected code %s, got %v", errs.CodeUnknown, inner["code"])
		}
	})
}
