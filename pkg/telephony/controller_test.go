package telephony_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voicedesk/voicedesk/internal/log"
	"github.com/voicedesk/voicedesk/pkg/errs"
	"github.com/voicedesk/voicedesk/pkg/telephony"
)

// fakeProvider simulates the Twilio-style REST API.
type fakeProvider struct {
	srv      *httptest.Server
	requests []string
	fail     bool
}

func newFakeProvider() *fakeProvider {
	p := &fakeProvider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests = append(p.requests, r.Method+" "+r.URL.Path)

		if user, pass, ok := r.BasicAuth(); !ok || user != "AC123" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if p.fail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"provider exploded"}`)
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/Calls.json"):
			_ = r.ParseForm()
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sid": "CA001", "to": r.FormValue("To"), "from": r.FormValue("From"),
				"status": "queued",
			})
		case strings.Contains(r.URL.Path, "/Recordings.json"):
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"sid": "RE001"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sid": "CA001", "status": "in-progress", "duration": "42",
				"direction": "inbound", "answered_by": "human",
			})
		}
	}))
	return p
}

func newController(t *testing.T, p *fakeProvider) *telephony.Controller {
	t.Helper()
	t.Cleanup(p.srv.Close)
	client := telephony.NewClient("AC123", "token", p.srv.URL)
	return telephony.NewController(client, "https://bot.example.com", log.L())
}

func TestStartCall(t *testing.T) {
	p := newFakeProvider()
	c := newController(t, p)

	id, err := c.StartCall(context.Background(), "+15550001111", "+15550002222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "CA001" {
		t.Errorf("expected provider SID, got %q", id)
	}

	rec, ok := c.LocalStatus(id)
	if !ok {
		t.Fatal("expected a local call record")
	}
	if rec.Status != "initiated" || rec.To != "+15550001111" {
		t.Errorf("unexpected record %+v", rec)
	}
	if c.ActiveCalls() != 1 {
		t.Errorf("expected 1 active call, got %d", c.ActiveCalls())
	}
}

func TestEndCall(t *testing.T) {
	p := newFakeProvider()
	c := newController(t, p)

	id, err := c.StartCall(context.Background(), "+15550001111", "+15550002222")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := c.EndCall(context.Background(), id); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok := c.LocalStatus(id); ok {
		t.Error("expected local record to be removed")
	}
}

func TestStatus(t *testing.T) {
	p := newFakeProvider()
	c := newController(t, p)

	status, err := c.Status(context.Background(), "CA001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != "in-progress" || status.Duration != 42 || status.AnsweredBy != "human" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestTransferAndRecord(t *testing.T) {
	p := newFakeProvider()
	c := newController(t, p)
	ctx := context.Background()

	if err := c.Transfer(ctx, "CA001", "+15550009999"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	recID, err := c.Record(ctx, "CA001")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if recID != "RE001" {
		t.Errorf("expected recording SID, got %q", recID)
	}
}

func TestProviderErrorsAreStructured(t *testing.T) {
	p := newFakeProvider()
	p.fail = true
	c := newController(t, p)

	_, err := c.StartCall(context.Background(), "+15550001111", "+15550002222")
	if err == nil {
		t.Fatal("expected error")
	}

	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if e.Code != errs.CodeTwilio {
		t.Errorf("expected code %s, got %s", errs.CodeTwilio, e.Code)
	}
	if e.Details["status"] != http.StatusInternalServerError {
		t.Errorf("expected status detail, got %v", e.Details["status"])
	}
}

func TestEndCallDropsRecordOnProviderError(t *testing.T) {
	p := newFakeProvider()
	c := newController(t, p)

	id, err := c.StartCall(context.Background(), "+15550001111", "+15550002222")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	p.fail = true
	if err := c.EndCall(context.Background(), id); err == nil {
		t.Fatal("expected provider error")
	}
	if _, ok := c.LocalStatus(id); ok {
		t.Error("local record should be dropped even when the provider errors")
	}
}
