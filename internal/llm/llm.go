package llm

import (
	"context"
	"fmt"
)

type MessageRole string

const (
	RoleSystem MessageRole = "system"
	RoleUser   MessageRole = "user"
)

type Message struct {
	Role    MessageRole
	Content string
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

type ChatResponse struct {
	Content string
}

type Client interface {
	ChatCompletion(ctx context.Context, request ChatRequest) (ChatResponse, error)
}

// ResponseDecoder validates and parses a completion body.
type ResponseDecoder func(content string) error

// CompleteWithRetries sends a system+user prompt pair and re-asks when the
// decoder rejects the response. The prompts are not modified between
// attempts. Transport errors are returned immediately; only decode
// failures are retried.
func CompleteWithRetries(
	ctx context.Context,
	client Client,
	model, systemPrompt, userPrompt string,
	decodeRetries int,
	decode ResponseDecoder,
	temperature *float64,
) (ChatResponse, error) {
	attempts := decodeRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	request := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	}

	var lastResponse ChatResponse
	var lastDecodeErr error
	for attempt := 0; attempt < attempts; attempt++ {
		response, err := client.ChatCompletion(ctx, request)
		if err != nil {
			return ChatResponse{}, err
		}
		lastResponse = response
		if decode == nil {
			return response, nil
		}
		if err := decode(response.Content); err != nil {
			lastDecodeErr = err
			continue
		}
		return response, nil
	}
	return lastResponse, fmt.Errorf("decode response after %d attempt(s): %w; content=%q", attempts, lastDecodeErr, lastResponse.Content)
}
