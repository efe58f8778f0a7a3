// Package notify posts deployment announcements to a chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type message struct {
	Text string `json:"text"`
}

// Webhook posts a {"text": ...} JSON payload to a configured URL. An empty
// URL disables notifications entirely so a missing configuration never fails
// a deployment.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *Webhook) Notify(ctx context.Context, text string) error {
	if w.url == "" {
		return nil
	}

	content, err := json.Marshal(message{Text: text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("notification rejected with status %s", resp.Status)
	}

	return nil
}
