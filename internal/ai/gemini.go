// Package ai - клиент генеративной модели Gemini поверх официального SDK google.golang.org/genai.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shenikar/travel_safety_system/internal/service"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("gemini API key is not configured")

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient реализует service.TextGenerator
type GeminiClient struct {
	model  string
	client *genai.Client
}

var _ service.TextGenerator = (*GeminiClient)(nil)

// NewGeminiClient создает клиента. Без ключа клиент создается, но каждый вызов
// возвращает ErrNotConfigured.
func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	c := &GeminiClient{model: opts.Model}
	if opts.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	c.client = client
	return c, nil
}

// GenerateContent отправляет один текстовый запрос и возвращает текст первого кандидата
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini: unexpected status code %d: %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini: empty response")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: candidate has no text (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return text, nil
}
