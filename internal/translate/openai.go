package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates through the chat completions API.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAITranslator builds a client. baseURL may point at any
// OpenAI-compatible server; empty means the public API.
func NewOpenAITranslator(apiKey, model, baseURL string) *OpenAITranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITranslator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (o *OpenAITranslator) Name() string { return "openai:" + o.model }

func (o *OpenAITranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(text, targetLang, sourceLang),
			},
		},
		MaxTokens:   completionBudget(text),
		Temperature: 0.2,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500) {
			return text, &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return text, fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return text, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return text, fmt.Errorf("%w: completion truncated at max_tokens", ErrMalformedResponse)
	}

	out := cleanLLMOutput(resp.Choices[0].Message.Content)
	if out == "" {
		return text, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return out, nil
}
