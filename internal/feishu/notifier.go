package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"IntelDigest/internal/ports"
)

// Feishu webhook text messages cap out around 30KB; we stay far below so the
// digest stays readable in the chat client.
const maxBodyRunes = 4000

// WebhookNotifier pushes the text digest to a Feishu group-chat webhook.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier wires the webhook; a nil client gets a 15-second timeout.
func NewWebhookNotifier(webhookURL string, client *http.Client, logger *slog.Logger) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebhookNotifier{webhookURL: webhookURL, client: client, logger: logger}
}

type textMessage struct {
	MsgType string      `json:"msg_type"`
	Content textContent `json:"content"`
}

type textContent struct {
	Text string `json:"text"`
}

type webhookResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// PublishDigest posts the digest as a plain text message, truncated to keep
// the chat rendering sane.
func (n *WebhookNotifier) PublishDigest(ctx context.Context, title, body string) error {
	text := title + "\n\n" + truncate(body, maxBodyRunes)

	payload, err := json.Marshal(textMessage{
		MsgType: "text",
		Content: textContent{Text: text},
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned %s: %s", resp.Status, raw)
	}

	// Feishu reports delivery errors in the body with HTTP 200.
	var result webhookResponse
	if err := json.Unmarshal(raw, &result); err == nil && result.Code != 0 {
		return fmt.Errorf("webhook rejected message: code %d: %s", result.Code, result.Msg)
	}

	if n.logger != nil {
		n.logger.Info("digest published to feishu", "title", title)
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n\n(truncated)"
}
