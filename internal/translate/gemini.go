package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiTranslator translates through the Gemini API.
type GeminiTranslator struct {
	client *genai.Client
	model  string
}

func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiTranslator{client: client, model: model}, nil
}

func (g *GeminiTranslator) Name() string { return "gemini:" + g.model }

func (g *GeminiTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(text, targetLang, sourceLang)), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500) {
			return text, &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return text, fmt.Errorf("gemini api: %w", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return text, fmt.Errorf("%w: gemini output truncated at max tokens", ErrMalformedResponse)
	}

	out := cleanLLMOutput(resp.Text())
	if out == "" {
		return text, fmt.Errorf("%w: empty response from gemini", ErrMalformedResponse)
	}
	return out, nil
}
