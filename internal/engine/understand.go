package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrUnderstandingUnavailable signals that the text-understanding backend is
// not configured or not reachable. Callers must treat it as a quality
// downgrade, never as a pipeline failure.
var ErrUnderstandingUnavailable = errors.New("text understanding unavailable")

// Understood is the partial field set a classification call may fill in.
// Nil pointer fields mean "the model did not decide".
type Understood struct {
	IsJobPosting *bool    `json:"is_job_posting,omitempty"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	Level        string   `json:"level,omitempty"`
	Skills       []string `json:"skills,omitempty"`
}

// Understanding classifies raw search snippets and extracts fields that
// mechanical parsing cannot produce reliably. Implementations must be safe
// for concurrent use.
type Understanding interface {
	ClassifyAndExtract(ctx context.Context, rawText, hint string) (*Understood, error)
}

const classifyPrompt = `You classify one web search result for a career assistant.

Hint about what the user searched for: %s

Result text:
%s

Respond with valid JSON only (no markdown, no ` + "```" + ` block):
{
  "is_job_posting": true,
  "company": "<hiring company, empty string if unknown>",
  "location": "<job location, empty string if unknown>",
  "level": "<one of: internship, entry, associate, mid-senior, director, executive, or empty>",
  "skills": ["<required skills mentioned in the text>"]
}

Rules:
- is_job_posting is true ONLY for an actual open position (not news, layoffs coverage, or a salary survey)
- Extract only what the text states. Do NOT invent fields.`

// LLMUnderstanding implements Understanding over an OpenAI-compatible chat API.
type LLMUnderstanding struct {
	client llms.Model
}

// NewLLMUnderstanding builds the service from engine config.
// Returns ErrUnderstandingUnavailable when no API base is configured.
func NewLLMUnderstanding() (*LLMUnderstanding, error) {
	if cfg.LLMAPIBase == "" {
		return nil, ErrUnderstandingUnavailable
	}
	token := cfg.LLMAPIKey
	if token == "" {
		token = "none" // local OpenAI-compatible services accept any token
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.LLMAPIBase),
		openai.WithToken(token),
		openai.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, fmt.Errorf("llm client init: %w", err)
	}
	return &LLMUnderstanding{client: client}, nil
}

// ClassifyAndExtract asks the model whether rawText is a genuine posting and
// which fields it can read off. Malformed model output is retried once, then
// reported as unavailable.
func (u *LLMUnderstanding) ClassifyAndExtract(ctx context.Context, rawText, hint string) (*Understood, error) {
	IncrUnderstandCalls()

	prompt := fmt.Sprintf(classifyPrompt, hint, TruncateRunes(rawText, 2000, "..."))
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(prompt)}},
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := u.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			IncrUnderstandErrors()
			return nil, fmt.Errorf("%w: %v", ErrUnderstandingUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			IncrUnderstandErrors()
			return nil, ErrUnderstandingUnavailable
		}

		raw := stripFences(resp.Choices[0].Content)
		var out Understood
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			lastErr = err
			slog.Debug("understand: malformed JSON", slog.Int("attempt", attempt+1), slog.Any("error", err))
			continue
		}
		return &out, nil
	}

	IncrUnderstandErrors()
	return nil, fmt.Errorf("%w: %v", ErrUnderstandingUnavailable, lastErr)
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
