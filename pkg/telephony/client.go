// Package telephony wraps the call-control REST API of a
// Twilio-compatible provider and tracks active calls in memory.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voicedesk/voicedesk/internal/httpc"
	"github.com/voicedesk/voicedesk/pkg/errs"
)

const apiVersion = "2010-04-01"

// Client is a thin REST client for the provider's call-control API.
// Requests are form-encoded with basic auth, responses are JSON.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	http       *http.Client
}

// NewClient creates a provider client. baseURL defaults to the Twilio
// public API host when empty.
func NewClient(accountSID, authToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		http:       httpc.NewClient(30 * time.Second),
	}
}

// Call is the provider's representation of a call resource.
type Call struct {
	SID        string `json:"sid"`
	From       string `json:"from"`
	To         string `json:"to"`
	Status     string `json:"status"`
	Direction  string `json:"direction"`
	Duration   string `json:"duration"`
	AnsweredBy string `json:"answered_by"`
}

// Recording is the provider's representation of a recording resource.
type Recording struct {
	SID string `json:"sid"`
}

// CreateCall starts an outbound call that fetches webhookURL for
// instructions when answered.
func (c *Client) CreateCall(ctx context.Context, to, from, webhookURL string) (*Call, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Url", webhookURL)
	form.Set("Method", http.MethodPost)

	var call Call
	if err := c.postForm(ctx, c.callsPath("Calls.json"), form, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// UpdateCall modifies a live call. Params may set Status, Url, Method.
func (c *Client) UpdateCall(ctx context.Context, callSID string, params url.Values) (*Call, error) {
	var call Call
	path := c.callsPath(fmt.Sprintf("Calls/%s.json", callSID))
	if err := c.postForm(ctx, path, params, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// FetchCall retrieves the live state of a call.
func (c *Client) FetchCall(ctx context.Context, callSID string) (*Call, error) {
	path := c.callsPath(fmt.Sprintf("Calls/%s.json", callSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errs.Call("create fetch request", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	var call Call
	if err := c.do(req, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// CreateRecording starts a server-side recording of a live call.
func (c *Client) CreateRecording(ctx context.Context, callSID string) (*Recording, error) {
	path := c.callsPath(fmt.Sprintf("Calls/%s/Recordings.json", callSID))

	var rec Recording
	if err := c.postForm(ctx, path, url.Values{}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) callsPath(suffix string) string {
	return fmt.Sprintf("/%s/Accounts/%s/%s", apiVersion, c.accountSID, suffix)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errs.Call("create request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Call("provider request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return errs.Call("provider request",
			fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))).
			WithDetail("status", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errs.Call("decode provider response", err)
		}
	}
	return nil
}
