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

const DefaultDeepLURL = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator calls the DeepL REST API.
type DeepLTranslator struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewDeepLTranslator(apiKey, apiURL string) *DeepLTranslator {
	if apiURL == "" {
		apiURL = DefaultDeepLURL
	}
	return &DeepLTranslator{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
}

func (d *DeepLTranslator) Name() string { return "deepl" }

func (d *DeepLTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if d.apiKey == "" {
		return text, fmt.Errorf("DeepL API key not configured")
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", deeplLangCode(targetLang))
	if sourceLang != "" && sourceLang != "auto" {
		form.Set("source_lang", deeplSourceCode(sourceLang))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return text, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return text, fmt.Errorf("deepl api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return text, fmt.Errorf("read response: %w", err)
	}

	// DeepL signals quota exhaustion with 456; that does not clear on retry.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return text, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("deepl api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return text, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(deeplResp.Translations) == 0 {
		return text, fmt.Errorf("%w: no translations", ErrMalformedResponse)
	}
	return deeplResp.Translations[0].Text, nil
}

// deeplLangCode converts ISO 639-1 codes to DeepL target codes.
func deeplLangCode(code string) string {
	switch strings.ToLower(code) {
	case "pt":
		return "PT-BR"
	case "en":
		return "EN-US"
	}
	return strings.ToUpper(code)
}

// deeplSourceCode drops the regional variant, which DeepL rejects for sources.
func deeplSourceCode(code string) string {
	code = strings.ToUpper(code)
	if i := strings.IndexByte(code, '-'); i > 0 {
		code = code[:i]
	}
	return code
}

// Close releases resources.
func (d *DeepLTranslator) Close() {
	d.httpClient.CloseIdleConnections()
}
