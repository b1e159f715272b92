package telephony

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// CallRecord is the local, in-memory view of a call the controller
// started. Records are dropped on EndCall and do not survive restarts.
type CallRecord struct {
	Status   string `json:"status"`
	To       string `json:"to"`
	From     string `json:"from"`
	Duration int    `json:"duration"` // seconds
}

// CallStatus is the provider's live view of a call.
type CallStatus struct {
	Status     string `json:"status"`
	Duration   int    `json:"duration"` // seconds
	Direction  string `json:"direction"`
	AnsweredBy string `json:"answered_by"`
}

// Controller drives call lifecycle operations against the provider and
// mirrors active calls in a mutex-guarded map.
type Controller struct {
	client        *Client
	publicBaseURL string
	logger        *slog.Logger

	mu    sync.RWMutex
	calls map[string]*CallRecord
}

// NewController creates a controller. publicBaseURL is the externally
// reachable base of this service's webhook endpoints.
func NewController(client *Client, publicBaseURL string, logger *slog.Logger) *Controller {
	return &Controller{
		client:        client,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger.With("component", "telephony.controller"),
		calls:         make(map[string]*CallRecord),
	}
}

// StartCall initiates an outbound call pointed at this service's
// incoming-call webhook and records it locally under the provider SID.
func (c *Controller) StartCall(ctx context.Context, to, from string) (string, error) {
	call, err := c.client.CreateCall(ctx, to, from, c.publicBaseURL+"/incoming_call")
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.calls[call.SID] = &CallRecord{
		Status: "initiated",
		To:     to,
		From:   from,
	}
	c.mu.Unlock()

	c.logger.Info("call started", "call_id", call.SID, "to", to)
	return call.SID, nil
}

// EndCall asks the provider to complete the call and removes the local
// record. The record is removed even when the provider call fails: the
// provider is the source of truth and a dangling local entry is worse
// than a missing one.
func (c *Controller) EndCall(ctx context.Context, callID string) error {
	form := url.Values{}
	form.Set("Status", "completed")
	_, err := c.client.UpdateCall(ctx, callID, form)

	c.mu.Lock()
	delete(c.calls, callID)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("end call failed", "call_id", callID, "error", err)
		return err
	}
	c.logger.Info("call ended", "call_id", callID)
	return nil
}

// Status fetches the live status of a call from the provider.
func (c *Controller) Status(ctx context.Context, callID string) (*CallStatus, error) {
	call, err := c.client.FetchCall(ctx, callID)
	if err != nil {
		c.logger.Error("fetch call status failed", "call_id", callID, "error", err)
		return nil, err
	}

	duration, _ := strconv.Atoi(call.Duration)
	return &CallStatus{
		Status:     call.Status,
		Duration:   duration,
		Direction:  call.Direction,
		AnsweredBy: call.AnsweredBy,
	}, nil
}

// Transfer redirects a live call to this service's transfer endpoint
// for the target number.
func (c *Controller) Transfer(ctx context.Context, callID, target string) error {
	form := url.Values{}
	form.Set("Url", fmt.Sprintf("%s/transfer/%s", c.publicBaseURL, target))
	form.Set("Method", http.MethodPost)

	if _, err := c.client.UpdateCall(ctx, callID, form); err != nil {
		c.logger.Error("transfer failed", "call_id", callID, "target", target, "error", err)
		return err
	}
	c.logger.Info("call transferred", "call_id", callID, "target", target)
	return nil
}

// Record starts a server-side recording and returns the recording SID.
func (c *Controller) Record(ctx context.Context, callID string) (string, error) {
	rec, err := c.client.CreateRecording(ctx, callID)
	if err != nil {
		c.logger.Error("start recording failed", "call_id", callID, "error", err)
		return "", err
	}
	return rec.SID, nil
}

// LocalStatus returns the locally tracked record for callID, if any.
func (c *Controller) LocalStatus(callID string) (CallRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.calls[callID]
	if !ok {
		return CallRecord{}, false
	}
	return *rec, true
}

// ActiveCalls returns the number of locally tracked calls.
func (c *Controller) ActiveCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.calls)
}
