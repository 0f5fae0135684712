package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultSendTimeout = 10 * time.Second

// WebhookSender delivers messages by POSTing JSON to the subscription's
// endpoint. The push gateway behind the endpoint handles device fan-out.
type WebhookSender struct {
	client  *http.Client
	timeout time.Duration
}

// WebhookOption configures a WebhookSender.
type WebhookOption func(*WebhookSender)

// WithHTTPClient sets the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(s *WebhookSender) { s.client = client }
}

// WithSendTimeout caps how long one delivery may take.
func WithSendTimeout(d time.Duration) WebhookOption {
	return func(s *WebhookSender) { s.timeout = d }
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender(opts ...WebhookOption) *WebhookSender {
	s := &WebhookSender{
		client:  http.DefaultClient,
		timeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send POSTs the message to the subscription endpoint. Any non-2xx
// response is an error so the caller can decide whether to retry.
func (s *WebhookSender) Send(ctx context.Context, sub *Subscription, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	slog.DebugContext(ctx, "notification delivered",
		"subscription_id", sub.ID,
		"kind", msg.Kind,
		"date_key", msg.DateKey)
	return nil
}
