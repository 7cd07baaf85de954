package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClaudeURL is the Anthropic Messages endpoint.
const DefaultClaudeURL = "https://api.anthropic.com/v1/messages"

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeTranslator translates through the Anthropic Messages API.
type ClaudeTranslator struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

func NewClaudeTranslator(apiKey, model, apiURL string) *ClaudeTranslator {
	if model == "" {
		model = DefaultClaudeModel
	}
	if apiURL == "" {
		apiURL = DefaultClaudeURL
	}
	return &ClaudeTranslator{
		apiKey: apiKey,
		model:  model,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClaudeTranslator) Name() string { return "claude:" + c.model }

func (c *ClaudeTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	reqBody := anthropicRequest{
		Model:       c.model,
		MaxTokens:   completionBudget(text),
		System:      SystemPrompt,
		Temperature: 0.2,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(text, targetLang, sourceLang)},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return text, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return text, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return text, fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return text, fmt.Errorf("read response: %w", err)
	}

	// 529 is Anthropic's "overloaded".
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return text, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return text, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if apiResp.Error != nil {
		return text, fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if apiResp.StopReason == "max_tokens" {
		return text, fmt.Errorf("%w: claude output truncated at max_tokens", ErrMalformedResponse)
	}

	var out bytes.Buffer
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	translated := cleanLLMOutput(out.String())
	if translated == "" {
		return text, fmt.Errorf("%w: empty response from claude", ErrMalformedResponse)
	}
	return translated, nil
}

// Close releases resources.
func (c *ClaudeTranslator) Close() {
	c.httpClient.CloseIdleConnections()
}
