// Package ai talks to an OpenAI-compatible chat model to extract flashcards
// from free text and to explain missed answers.
//
// Every call degrades instead of failing: extraction returns an empty list and
// explanation returns ExplainFallback.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
)

// ExplainFallback is returned when no explanation could be produced.
const ExplainFallback = "Não foi possível obter a explicação da IA no momento."

// CardDraft is a card proposed by the model, before it gets an id.
type CardDraft struct {
	Frente   string `json:"frente" validate:"required"`
	Gabarito string `json:"gabarito"`
	Verso    string `json:"verso"`
}

// ExplainRequest describes a missed (or doubted) answer.
type ExplainRequest struct {
	Question        string
	CorrectAnswer   string
	ExplanationText string
	UserAnswer      string
}

// Collaborator is the external text-understanding capability.
type Collaborator interface {
	ExtractCards(ctx context.Context, text string) []CardDraft
	Explain(ctx context.Context, req ExplainRequest) string
}

// Disabled is used when no API key is configured.
type Disabled struct{}

// ExtractCards implements Collaborator.
func (Disabled) ExtractCards(context.Context, string) []CardDraft { return nil }

// Explain implements Collaborator.
func (Disabled) Explain(context.Context, ExplainRequest) string { return ExplainFallback }

// Client implements Collaborator over go-openai.
type Client struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// New returns the collaborator described by cfg: a Client when an API key is
// set, Disabled otherwise.
func New(cfg model.AIConfig, logger *slog.Logger) Collaborator {
	if logger == nil {
		logger = logging.Discard()
	}
	if !cfg.Enabled() {
		logger.Info("AI collaborator disabled, no api key configured")
		return Disabled{}
	}
	return NewClient(cfg, logger)
}

// NewClient builds a Client for cfg regardless of whether a key is set.
func NewClient(cfg model.AIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger.Info("Initializing AI client", "model", cfg.Model, "base_url", clientCfg.BaseURL)
	return &Client{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: cfg.Language,
		timeout:  timeout,
		logger:   logger,
	}
}

type extractResponse struct {
	Cards []CardDraft `json:"cards"`
}

// ExtractCards implements Collaborator.
func (c *Client) ExtractCards(ctx context.Context, text string) []CardDraft {
	started := time.Now()
	content, err := c.complete(ctx, extractPrompt(text, c.language), true)
	if err != nil {
		c.logger.Warn("card extraction failed", "error", err)
		return nil
	}
	drafts, err := decodeDrafts(content)
	if err != nil {
		c.logger.Warn("card extraction returned malformed data", "error", err)
		return nil
	}
	c.logger.Info("card extraction complete", "cards", len(drafts), "duration", time.Since(started))
	return drafts
}

// Explain implements Collaborator.
func (c *Client) Explain(ctx context.Context, req ExplainRequest) string {
	content, err := c.complete(ctx, explainPrompt(req, c.language), false)
	if err != nil {
		c.logger.Warn("explanation failed", "error", err)
		return ExplainFallback
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ExplainFallback
	}
	return content
}

func (c *Client) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a precise study assistant for multiple-choice flashcards."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	c.logger.Debug("sending chat completion", "model", c.model, "json", jsonMode, "prompt_bytes", len(prompt))
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeDrafts accepts either {"cards": [...]} or a bare array, optionally
// wrapped in a markdown code fence.
func decodeDrafts(content string) ([]CardDraft, error) {
	content = stripFence(content)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}
	if strings.HasPrefix(content, "[") {
		var drafts []CardDraft
		if err := json.Unmarshal([]byte(content), &drafts); err != nil {
			return nil, err
		}
		return drafts, nil
	}
	var resp extractResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func extractPrompt(text, language string) string {
	return fmt.Sprintf(`Analyze the content below and extract multiple-choice flashcards.
The content may be Python code (lists, dicts or comments holding questions), plain text or badly formatted CSV.

RULES:
1. If it is code, look for structures that represent questions and answers.
2. If it is text, identify clear questions and their options.
3. "frente" must hold the question followed by its options A) to E).
4. "gabarito" must be only the letter of the correct option (e.g. "A").
5. "verso" must be a short explanation in %s.

Reply with a JSON object of the form {"cards": [{"frente": "...", "gabarito": "A", "verso": "..."}]}.

Content:
---
%s
---`, language, text)
}

func explainPrompt(req ExplainRequest, language string) string {
	return fmt.Sprintf(`Context: I am studying with multiple choice flashcards.
Question: %s
Correct Answer: %s
My Answer: %s
Provided Explanation: %s

Task: Give me a concise, clear explanation of why the correct answer is %s and if my answer (%s) was wrong, briefly explain the misconception. Keep it under 100 words. Respond in %s.`,
		req.Question, req.CorrectAnswer, req.UserAnswer, req.ExplanationText,
		req.CorrectAnswer, req.UserAnswer, language)
}
