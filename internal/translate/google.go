package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGoogleURL is the keyless web endpoint used by browser extensions.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator calls the public Google Translate web endpoint.
type GoogleTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewGoogleTranslator(baseURL string) *GoogleTranslator {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &GoogleTranslator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GoogleTranslator) Name() string { return "google" }

func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceOrAuto(sourceLang))
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return text, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return text, fmt.Errorf("google translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return text, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return text, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("google translate status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	out, err := parseGoogleResponse(body)
	if err != nil {
		return text, err
	}
	return out, nil
}

// parseGoogleResponse joins the translated segments of a gtx reply. The
// payload is a nested array whose first element lists
// [translated, original, ...] tuples, one per input sentence.
func parseGoogleResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return "", fmt.Errorf("%w: not an array", ErrMalformedResponse)
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("%w: bad segment list", ErrMalformedResponse)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		// Transliteration rows carry null in the first slot.
		var part *string
		if err := json.Unmarshal(seg[0], &part); err != nil || part == nil {
			continue
		}
		sb.WriteString(*part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no segments", ErrMalformedResponse)
	}
	return sb.String(), nil
}

// Close releases resources.
func (g *GoogleTranslator) Close() {
	g.httpClient.CloseIdleConnections()
}
