package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hdnguyen/secondhand-scout/internal/llm"
	"github.com/hdnguyen/secondhand-scout/internal/llm/mock"
)

func TestCompleteWithRetriesReasksOnDecodeFailure(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{
		{Content: "not json"},
		{Content: `{"score": 7}`},
	}}

	var parsed struct {
		Score int `json:"score"`
	}
	response, err := llm.CompleteWithRetries(context.Background(), client, "test-model", "sys", "user", 2, func(content string) error {
		return json.Unmarshal([]byte(content), &parsed)
	}, nil)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if response.Content != `{"score": 7}` || parsed.Score != 7 {
		t.Fatalf("unexpected response: %+v parsed=%d", response, parsed.Score)
	}
	if len(client.Requests) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(client.Requests))
	}
}

func TestCompleteWithRetriesGivesUpAfterBudget(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{{Content: "still not json"}}}

	_, err := llm.CompleteWithRetries(context.Background(), client, "test-model", "sys", "user", 1, func(content string) error {
		return fmt.Errorf("bad content")
	}, nil)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(client.Requests) != 2 {
		t.Fatalf("expected retries+1 attempts, got %d", len(client.Requests))
	}
}

func TestCompleteWithRetriesTransportErrorIsImmediate(t *testing.T) {
	client := &mock.Client{Err: fmt.Errorf("quota exceeded")}

	_, err := llm.CompleteWithRetries(context.Background(), client, "test-model", "sys", "user", 3, func(string) error { return nil }, nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if len(client.Requests) != 1 {
		t.Fatalf("transport errors must not be retried, got %d attempts", len(client.Requests))
	}
}
