package telephony

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultAPIBase = "https://api.telnyx.com/v2"

// Client issues out-of-band Call Control commands against the Telnyx REST
// API. The webhook response carries most instructions; this client covers
// the commands that have to be sent outside a webhook cycle, such as
// stopping a recording after hangup.
type Client struct {
	http    *resty.Client
	apiBase string
}

// NewClient creates a Telnyx API client authenticated with the given API key
func NewClient(apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
		apiBase: defaultAPIBase,
	}
}

// SetAPIBase overrides the API base URL, used by tests
func (c *Client) SetAPIBase(base string) {
	c.apiBase = base
}

// callAction posts a command to the call actions endpoint
func (c *Client) callAction(ctx context.Context, callControlID, action string, body interface{}) error {
	if body == nil {
		body = map[string]interface{}{}
	}

	url := fmt.Sprintf("%s/calls/%s/actions/%s", c.apiBase, callControlID, action)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return fmt.Errorf("telnyx %s action: %w", action, err)
	}

	if resp.IsError() {
		return fmt.Errorf("telnyx %s action: status %d: %s", action, resp.StatusCode(), resp.String())
	}

	return nil
}

// StopRecording stops the active recording on a call
func (c *Client) StopRecording(ctx context.Context, callControlID string) error {
	return c.callAction(ctx, callControlID, "record_stop", nil)
}

// HangupCall terminates a call
func (c *Client) HangupCall(ctx context.Context, callControlID string) error {
	return c.callAction(ctx, callControlID, "hangup", nil)
}
