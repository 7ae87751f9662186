package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Notifier delivers one over-threshold warning
type Notifier interface {
	Notify(ctx context.Context, filesystem, usedPercent string) error
}

// WebhookMessage is the JSON body posted to the webhook
type WebhookMessage struct {
	Text string `json:"text"`
}

// WebhookNotifier posts warnings to a chat-style webhook endpoint
type WebhookNotifier struct {
	client   *http.Client
	endpoint string
}

// NewWebhookNotifier returns a notifier for endpoint. A nil client means http.DefaultClient.
func NewWebhookNotifier(endpoint string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{client: client, endpoint: endpoint}
}

// WarningText formats the message sent for an over-threshold filesystem
func WarningText(filesystem, usedPercent string) string {
	return fmt.Sprintf("WARNING: %s: used %s", filesystem, usedPercent)
}

// Notify sends a single POST and reports transport errors and non-2xx statuses.
// It never retries.
func (n *WebhookNotifier) Notify(ctx context.Context, filesystem, usedPercent string) error {
	body, err := json.Marshal(WebhookMessage{Text: WarningText(filesystem, usedPercent)})
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send webhook")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
