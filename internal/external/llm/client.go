package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/logger"
)

// ErrEmptyResponse is returned when the backend answers without any text
var ErrEmptyResponse = errors.New("reasoning backend returned no content")

// Client is a chat-completion client for any OpenAI-compatible endpoint
// (OpenRouter by default). One Complete call is one request; nothing is retried.
// ⭐ SSOT: 추론 백엔드 호출은 이 클라이언트에서만
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	logger      *logger.Logger
}

// NewClient creates a reasoning client from the LLM settings.
// extra options are appended after the defaults (tests use option.WithMiddleware).
func NewClient(cfg config.LLMConfig, log *logger.Logger, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	opts = append(opts, extra...)

	return &Client{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      log,
	}
}

// Complete sends the prompt and returns the first choice's text.
// The caller owns the deadline: ctx is passed through unchanged.
func (c *Client) Complete(ctx context.Context, prompt contracts.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	startTime := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(map[string]interface{}{
		"model":             c.model,
		"prompt_chars":      len(prompt.System) + len(prompt.User),
		"completion_chars":  len(text),
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration":          time.Since(startTime),
	}).Debug("Chat completion finished")

	return text, nil
}
