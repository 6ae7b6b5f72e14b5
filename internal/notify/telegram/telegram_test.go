package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/notify"
)

func sampleAlert() notify.Alert {
	return notify.Alert{
		Item: core.Item{
			URL:   "https://2handland.com/san-pham/iphone-13",
			Name:  "iPhone 13 <cũ>",
			Price: "6.500.000₫",
		},
		Score: core.ScoreResult{Score: 9, Rationale: "well below market"},
	}
}

func TestNotifySendsHTMLMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n, err := New(5*time.Second, server.URL, "bot-token", "chat-42")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := n.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotPayload["chat_id"] != "chat-42" || gotPayload["parse_mode"] != "HTML" {
		t.Fatalf("unexpected payload: %+v", gotPayload)
	}
	text, _ := gotPayload["text"].(string)
	if !strings.Contains(text, "HÀNG MỚI") || !strings.Contains(text, "6.500.000₫") {
		t.Fatalf("unexpected message text: %q", text)
	}
	if !strings.Contains(text, "iPhone 13 &lt;cũ&gt;") {
		t.Fatalf("item name must be html-escaped: %q", text)
	}
	if !strings.Contains(text, "9/10") {
		t.Fatalf("expected score line: %q", text)
	}
	if !strings.Contains(text, `<a href="https://2handland.com/san-pham/iphone-13">`) {
		t.Fatalf("expected item link: %q", text)
	}
}

func TestNotifyOmitsScoreLineForDegradedResult(t *testing.T) {
	alert := sampleAlert()
	alert.Score = core.ScoreResult{Score: 0, Rationale: "scoring unavailable: quota"}

	text := formatAlert(alert)
	if strings.Contains(text, "/10") {
		t.Fatalf("degraded score must not be shown: %q", text)
	}
}

func TestNotifyRetriesTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n, err := New(5*time.Second, server.URL, "bot-token", "chat-42")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := n.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("notify failed after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
}

func TestNotifyHardFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad chat", http.StatusBadRequest)
	}))
	defer server.Close()

	n, err := New(5*time.Second, server.URL, "bot-token", "chat-42")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := n.Notify(context.Background(), sampleAlert()); err == nil {
		t.Fatalf("expected error for 4xx response")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(time.Second, "", "", "chat"); err == nil {
		t.Fatalf("expected error without token")
	}
	if _, err := New(time.Second, "", "tok", ""); err == nil {
		t.Fatalf("expected error without chat id")
	}
}
