// Package llm turns a news story into a scene-by-scene short video script
// using an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultTimeout     = 2 * time.Minute
)

var ErrEmptyResponse = errors.New("model returned no content")

// Writer implements the script writer on top of openai-go. Any server that
// speaks the chat completions API (OpenAI, OpenRouter, Ollama) works.
type Writer struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

func New(cfg config.LLMConfig, logger *slog.Logger, opts ...option.RequestOption) *Writer {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	w := &Writer{
		client:      openai.NewClient(clientOpts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger.With("component", "llm"),
	}
	if w.model == "" {
		w.model = DefaultModel
	}
	if w.temperature <= 0 {
		w.temperature = DefaultTemperature
	}
	if w.timeout <= 0 {
		w.timeout = DefaultTimeout
	}
	return w
}

func (w *Writer) WriteScript(ctx context.Context, req domain.ScriptRequest) (*domain.ScriptDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(req)),
		},
		Model:       w.model,
		Temperature: openai.Float(w.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	draft, err := ParseDraft(raw)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("script drafted",
		"title", req.Title,
		"scenes", len(draft.Scenes),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return draft, nil
}
