package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/wikidoc/internal/config"
)

// Backend is a concrete translation service.
type Backend interface {
	Translator
	Name() string
}

// NewBackend builds the backend named by cfg.TranslateProvider.
func NewBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.TranslateProvider {
	case "", "google":
		return NewGoogleTranslator(cfg.GoogleTranslateURL), nil
	case "openai":
		return NewOpenAITranslator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "gemini":
		return NewGeminiTranslator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "deepl":
		return NewDeepLTranslator(cfg.DeepLAPIKey, cfg.DeepLAPIURL), nil
	case "claude":
		return NewClaudeTranslator(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicURL), nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.TranslateProvider)
	}
}

// Stack is the backend wrapped with retries, a circuit breaker, latency
// stats and, when configured, a translation memory.
type Stack struct {
	Translator
	Backend string
	Breaker *Breaker
	Stats   *Stats
}

// NewStack wires a backend into the full call chain. mem may be nil.
func NewStack(backend Backend, cfg config.Config, mem Memory, log *slog.Logger) *Stack {
	stats := NewStats(time.Hour)

	var t Translator = NewMeasured(backend, stats)
	t = NewRetrying(t, cfg.TranslateMaxRetries, log)
	breaker := NewBreaker(t, backend.Name(), uint32(cfg.BreakerFailures), cfg.BreakerCooldown, log)
	t = breaker
	if mem != nil {
		t = NewCached(t, mem, log)
	}

	return &Stack{
		Translator: t,
		Backend:    backend.Name(),
		Breaker:    breaker,
		Stats:      stats,
	}
}

// OptionsFromConfig maps fan-out settings onto coordinator options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		MaxWorkers:     cfg.TranslateMaxWorkers,
		ShortTextLimit: cfg.TranslateShortText,
		ChunkSize:      cfg.TranslateChunkSize,
		ChunkTimeout:   cfg.TranslateChunkTimeout,
		BatchTimeout:   cfg.TranslateBatchTimeout,
	}
}
