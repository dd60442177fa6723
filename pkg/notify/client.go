package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// Result is the typed outcome of a best-effort notification attempt.
// Failures are carried here instead of as returned errors so callers can
// log them without ever propagating.
type Result struct {
	OK  bool
	Err error
}

// Sender delivers owner notifications
type Sender interface {
	SendCallSummary(ctx context.Context, n *CallSummary) Result
}

// CallSummary notifies a business owner that a call just finished
type CallSummary struct {
	BusinessID   string `json:"businessId"`
	ToPhone      string `json:"toPhone"`
	FromNumber   string `json:"fromNumber"`
	DurationSecs int    `json:"durationSeconds"`
	HangupCause  string `json:"hangupCause"`
}

// Client posts notifications to the internal notification endpoint
type Client struct {
	http     *resty.Client
	endpoint string
}

// NewClient creates a notification client. An empty endpoint disables
// delivery; every send reports OK without a network call.
func NewClient(endpoint, apiKey string) *Client {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}

	return &Client{http: c, endpoint: endpoint}
}

// SendCallSummary posts a call summary notification. The result is logged
// by the caller; it never fails call handling.
func (c *Client) SendCallSummary(ctx context.Context, n *CallSummary) Result {
	if c.endpoint == "" {
		logger.L().Debugw("notification endpoint not configured, skipping call summary",
			"business_id", n.BusinessID)
		return Result{OK: true}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(n).
		Post(c.endpoint)
	if err != nil {
		return Result{Err: fmt.Errorf("send call summary: %w", err)}
	}

	if resp.IsError() {
		return Result{Err: fmt.Errorf("send call summary: status %d", resp.StatusCode())}
	}

	return Result{OK: true}
}
