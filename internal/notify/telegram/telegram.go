package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hdnguyen/secondhand-scout/internal/notify"
	"github.com/hdnguyen/secondhand-scout/internal/retry"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier sends one Telegram message per alert via the bot sendMessage
// API, using HTML parse mode so names and prices can carry formatting.
type Notifier struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

func New(timeout time.Duration, baseURL, token, chatID string) (*Notifier, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Notifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, alert notify.Alert) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id":                  n.chatID,
		"text":                     formatAlert(alert),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("telegram: encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	var lastStatus int
	err = retry.Do(ctx, retry.Config{Attempts: 3, BaseDelay: 200 * time.Millisecond}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

		lastStatus = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("telegram transient error: %s", resp.Status)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("telegram request failed: %s", resp.Status)
		}
		return nil
	})
	if err != nil {
		if lastStatus != 0 {
			return fmt.Errorf("telegram: status %d: %w", lastStatus, err)
		}
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

func formatAlert(alert notify.Alert) string {
	b := &strings.Builder{}
	b.WriteString("🚨 <b>HÀNG MỚI!</b>\n")
	fmt.Fprintf(b, "📦 %s\n", html.EscapeString(alert.Item.Name))
	fmt.Fprintf(b, "💰 %s\n", html.EscapeString(alert.Item.Price))
	if alert.Score.Score > 0 {
		fmt.Fprintf(b, "⭐ %d/10 — %s\n", alert.Score.Score, html.EscapeString(alert.Score.Rationale))
	}
	fmt.Fprintf(b, "🔗 <a href=\"%s\">Xem ngay</a>", alert.Item.URL)
	return b.String()
}
