package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	WikidocAPIKey string

	// CORS
	CORSOrigins []string

	// Encyclopedia
	WikiAPIURL      string // printf pattern taking the language code
	WikiUserAgent   string
	DefaultLanguage string

	// Translation backend
	TranslateProvider  string
	GoogleTranslateURL string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string
	DeepLAPIKey        string
	DeepLAPIURL        string
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicURL       string

	// Translation fan-out
	TranslateMaxWorkers   int
	TranslateShortText    int
	TranslateChunkSize    int
	TranslateChunkTimeout time.Duration
	TranslateBatchTimeout time.Duration
	TranslateMaxRetries   int

	// Circuit breaker
	BreakerFailures int
	BreakerCooldown time.Duration

	// Translation memory; empty disables it.
	CachePath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Providers lists the accepted TRANSLATE_PROVIDER values.
var Providers = []string{"google", "openai", "gemini", "deepl", "claude"}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		WikidocAPIKey: os.Getenv("WIKIDOC_API_KEY"),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		WikiAPIURL:      envOr("WIKI_API_URL", "https://%s.wikipedia.org/w/api.php"),
		WikiUserAgent:   envOr("WIKI_USER_AGENT", "wikidoc/1.0 (https://github.com/dgallion1/wikidoc)"),
		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "en"),

		TranslateProvider:  strings.ToLower(envOr("TRANSLATE_PROVIDER", "google")),
		GoogleTranslateURL: envOr("GOOGLE_TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		DeepLAPIKey:        os.Getenv("DEEPL_API_KEY"),
		DeepLAPIURL:        envOr("DEEPL_API_URL", "https://api-free.deepl.com/v2/translate"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     envOr("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		AnthropicURL:       envOr("ANTHROPIC_API_URL", "https://api.anthropic.com/v1/messages"),

		TranslateMaxWorkers:   envInt("TRANSLATE_MAX_WORKERS", 12),
		TranslateShortText:    envInt("TRANSLATE_SHORT_TEXT", 200),
		TranslateChunkSize:    envInt("TRANSLATE_CHUNK_SIZE", 800),
		TranslateChunkTimeout: envDuration("TRANSLATE_CHUNK_TIMEOUT", 30*time.Second),
		TranslateBatchTimeout: envDuration("TRANSLATE_BATCH_TIMEOUT", 2*time.Minute),
		TranslateMaxRetries:   envInt("TRANSLATE_MAX_RETRIES", 2),

		BreakerFailures: envInt("BREAKER_FAILURES", 5),
		BreakerCooldown: envDuration("BREAKER_COOLDOWN", 30*time.Second),

		CachePath: os.Getenv("CACHE_PATH"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults replaces out-of-range numeric settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.TranslateMaxWorkers <= 0 {
		c.TranslateMaxWorkers = 12
	}
	if c.TranslateShortText <= 0 {
		c.TranslateShortText = 200
	}
	if c.TranslateChunkSize <= 0 {
		c.TranslateChunkSize = 800
	}
	if c.TranslateChunkTimeout <= 0 {
		c.TranslateChunkTimeout = 30 * time.Second
	}
	if c.TranslateBatchTimeout <= 0 {
		c.TranslateBatchTimeout = 2 * time.Minute
	}
	if c.TranslateMaxRetries < 0 {
		c.TranslateMaxRetries = 0
	}
	if c.BreakerFailures <= 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 50
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 20971520
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
}

func (c Config) Validate() error {
	switch c.TranslateProvider {
	case "google":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider gemini")
		}
	case "deepl":
		if c.DeepLAPIKey == "" {
			return fmt.Errorf("DEEPL_API_KEY is required for provider deepl")
		}
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider claude")
		}
	default:
		return fmt.Errorf("TRANSLATE_PROVIDER must be one of %s, got %q", strings.Join(Providers, ", "), c.TranslateProvider)
	}
	if !strings.Contains(c.WikiAPIURL, "%s") {
		return fmt.Errorf("WIKI_API_URL must contain %%s for the language code")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
