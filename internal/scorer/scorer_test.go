package scorer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hdnguyen/secondhand-scout/internal/llm"
	"github.com/hdnguyen/secondhand-scout/internal/llm/mock"
)

func newScorer(t *testing.T, client llm.Client) *LLMScorer {
	t.Helper()
	s, err := NewLLMScorer(client, "test-model", nil, "", "", nil)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	return s
}

func TestScoreParsesResponse(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{
		{Content: `{"score": 8, "reason": "well below market price"}`},
	}}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "iPhone 13 cũ", "6.500.000₫")
	if result.Score != 8 || result.Rationale != "well below market price" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(client.Requests) != 1 {
		t.Fatalf("expected one completion call, got %d", len(client.Requests))
	}
	prompt := client.Requests[0].Messages[1].Content
	if !strings.Contains(prompt, "iPhone 13 cũ") || !strings.Contains(prompt, "6.500.000₫") {
		t.Fatalf("prompt missing item fields: %q", prompt)
	}
}

func TestScoreUnwrapsFencedJSON(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{
		{Content: "```json\n{\"score\": 9, \"reason\": \"rare find\"}\n```"},
	}}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "Loa JBL", "500k")
	if result.Score != 9 || result.Rationale != "rare find" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestScoreRetriesInvalidJSON(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{
		{Content: "Sure! The score is 7."},
		{Content: `{"score": 7, "reason": "decent"}`},
	}}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "Bàn gỗ", "200k")
	if result.Score != 7 {
		t.Fatalf("expected retried parse to succeed: %+v", result)
	}
	if len(client.Requests) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(client.Requests))
	}
}

func TestScoreDegradesOnClientError(t *testing.T) {
	client := &mock.Client{Err: fmt.Errorf("429 too many requests")}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "Tủ lạnh", "1.200.000₫")
	if result.Score != 0 {
		t.Fatalf("expected degraded sentinel score 0, got %d", result.Score)
	}
	if !strings.Contains(result.Rationale, "scoring unavailable") {
		t.Fatalf("expected degraded rationale, got %q", result.Rationale)
	}
}

func TestScoreDegradesOnPersistentGarbage(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{{Content: "not json, ever"}}}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "Ghế", "50k")
	if result.Score != 0 || !strings.Contains(result.Rationale, "scoring unavailable") {
		t.Fatalf("expected degraded sentinel, got %+v", result)
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{
		{Content: `{"score": 15, "reason": "overexcited model"}`},
	}}
	s := newScorer(t, client)

	result := s.Score(context.Background(), "Xe đạp", "900k")
	if result.Score != 10 {
		t.Fatalf("expected clamp to 10, got %d", result.Score)
	}
}
