package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thumbworks/freshbot/internal/pkg/env"
)

// Message is the incoming-webhook payload Slack accepts.
type Message struct {
	Text      string `json:"text"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// Client posts formatted messages to a Slack incoming webhook.
type Client struct {
	WebhookURL string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from SLACK_WEBHOOK_URL.
func NewClientFromEnv() *Client {
	return &Client{
		WebhookURL: strings.TrimSpace(env.GetEnv("SLACK_WEBHOOK_URL", "")),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts one message. Slack answers plain "ok" on success; anything else
// is surfaced to the caller.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.WebhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL is not configured")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("slack webhook failed: status=%d body=%s", resp.StatusCode, string(raw))
	}
	return nil
}
