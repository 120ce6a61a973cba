package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultWebhookTimeout bounds one webhook call
const DefaultWebhookTimeout = 5 * time.Second

// WebhookConfig holds configuration for the HTTP webhook notifier
type WebhookConfig struct {
	URL     string
	Timeout time.Duration

	// Client is optional
	Client *http.Client
}

// Webhook POSTs the entry as JSON to a fixed URL
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier
func NewWebhook(cfg *WebhookConfig) (*Webhook, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.URL == "" {
		return nil, errors.New("webhook URL cannot be empty")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultWebhookTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Webhook{
		url:    cfg.URL,
		client: client,
	}, nil
}

// Notify sends one request; any non-2xx status is an error
func (w *Webhook) Notify(ctx context.Context, input *NotifyInput) error {
	if err := validate(input); err != nil {
		return err
	}

	body, err := json.Marshal(NewPayload(input.Entry))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
