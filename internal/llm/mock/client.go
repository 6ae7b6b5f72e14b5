package mock

import (
	"context"
	"fmt"

	"github.com/hdnguyen/secondhand-scout/internal/llm"
)

// Client replays scripted responses in call order; the last response
// repeats once the script runs out. Err short-circuits every call.
type Client struct {
	Responses []llm.ChatResponse
	Err       error
	Requests  []llm.ChatRequest
}

var _ llm.Client = (*Client)(nil)

func (c *Client) ChatCompletion(ctx context.Context, request llm.ChatRequest) (llm.ChatResponse, error) {
	_ = ctx
	call := len(c.Requests)
	c.Requests = append(c.Requests, request)
	if c.Err != nil {
		return llm.ChatResponse{}, c.Err
	}
	if len(c.Responses) == 0 {
		return llm.ChatResponse{}, fmt.Errorf("mock llm: no responses scripted")
	}
	if call >= len(c.Responses) {
		return c.Responses[len(c.Responses)-1], nil
	}
	return c.Responses[call], nil
}
