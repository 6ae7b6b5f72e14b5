package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/llm"
)

// Scorer assigns a 0-10 desirability score to a posting. Implementations
// must not fail: when scoring is unavailable they return the degraded
// sentinel (score 0 with the reason in the rationale) so the pipeline can
// proceed and the item is never dropped.
type Scorer interface {
	Score(ctx context.Context, name, price string) core.ScoreResult
}

const DefaultSystemTemplate = `You help a bargain hunter triage secondhand marketplace listings from Vietnam. Given a posting's name and price, rate how desirable it is to buy on an integer scale from 0 to 10, where 10 is an exceptional deal worth acting on immediately and 0 is not worth a look. Respond with JSON only, no prose: {"score": <integer 0-10>, "reason": "<one short sentence>"}`

const DefaultPromptTemplate = `Posting:
Name: {{.Name}}
Price: {{.Price}}`

const defaultDecodeRetries = 2

type promptData struct {
	Name  string
	Price string
}

type scoreResponse struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// LLMScorer scores postings with a chat-completion model.
type LLMScorer struct {
	client         llm.Client
	model          string
	temperature    *float64
	systemTemplate *template.Template
	promptTemplate *template.Template
	decodeRetries  int
	logger         *slog.Logger
}

func NewLLMScorer(client llm.Client, model string, temperature *float64, systemTemplate, promptTemplate string, logger *slog.Logger) (*LLMScorer, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if systemTemplate == "" {
		systemTemplate = DefaultSystemTemplate
	}
	if promptTemplate == "" {
		promptTemplate = DefaultPromptTemplate
	}
	systemTmpl, err := template.New("scorer-system").Parse(systemTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse system template: %w", err)
	}
	promptTmpl, err := template.New("scorer-prompt").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMScorer{
		client:         client,
		model:          model,
		temperature:    temperature,
		systemTemplate: systemTmpl,
		promptTemplate: promptTmpl,
		decodeRetries:  defaultDecodeRetries,
		logger:         logger,
	}, nil
}

func (s *LLMScorer) Score(ctx context.Context, name, price string) core.ScoreResult {
	logger := core.LoggerFromContext(ctx).With("component", "scorer")

	data := promptData{Name: name, Price: price}
	systemPrompt, err := executeTemplate(s.systemTemplate, data)
	if err != nil {
		return degraded(logger, name, err)
	}
	userPrompt, err := executeTemplate(s.promptTemplate, data)
	if err != nil {
		return degraded(logger, name, err)
	}

	var parsed scoreResponse
	_, err = llm.CompleteWithRetries(ctx, s.client, s.model, systemPrompt, userPrompt, s.decodeRetries, func(content string) error {
		return json.Unmarshal([]byte(stripCodeFences(content)), &parsed)
	}, s.temperature)
	if err != nil {
		return degraded(logger, name, err)
	}

	score := parsed.Score
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return core.ScoreResult{Score: score, Rationale: parsed.Reason}
}

func degraded(logger *slog.Logger, name string, err error) core.ScoreResult {
	logger.Warn("scoring degraded", "item", name, "error", err)
	return core.ScoreResult{Score: 0, Rationale: "scoring unavailable: " + err.Error()}
}

func executeTemplate(tmpl *template.Template, data any) (string, error) {
	builder := &strings.Builder{}
	if err := tmpl.Execute(builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// stripCodeFences unwraps responses the model insists on fencing.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
