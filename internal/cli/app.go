package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/dgallion1/wikidoc/internal/cache"
	"github.com/dgallion1/wikidoc/internal/config"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

// Wiki is the encyclopedia access the commands need.
type Wiki interface {
	Search(ctx context.Context, query, lang string) ([]wiki.SearchResult, error)
	Article(ctx context.Context, title, lang string) (*wiki.Article, error)
	ArticleIn(ctx context.Context, title, from, to string) (*wiki.Article, error)
}

// App holds the collaborators the commands use. Tests swap them out.
type App struct {
	Out io.Writer
	Err io.Writer

	// Translator builds the translation chain; the returned func releases it.
	Translator func(ctx context.Context, cfg config.Config, log *slog.Logger) (pipeline.TextTranslator, func(), error)
	Wiki       func(cfg config.Config) Wiki
}

// NewApp wires the real backends.
func NewApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		Translator: newTranslator,
		Wiki: func(cfg config.Config) Wiki {
			return wiki.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent)
		},
	}
}

func (a *App) logger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(a.Err, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers config-file and WIKIDOC_* values over the service
// environment variables.
func loadConfig() config.Config {
	cfg := config.Load()
	if v := viper.GetString("translate.provider"); v != "" {
		cfg.TranslateProvider = strings.ToLower(v)
	}
	if v := viper.GetString("translate.cache"); v != "" {
		cfg.CachePath = v
	}
	if v := viper.GetString("openai.api_key"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := viper.GetString("gemini.api_key"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := viper.GetString("deepl.api_key"); v != "" {
		cfg.DeepLAPIKey = v
	}
	if v := viper.GetString("anthropic.api_key"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := viper.GetInt("translate.workers"); v > 0 {
		cfg.TranslateMaxWorkers = v
	}
	return cfg
}

func newTranslator(ctx context.Context, cfg config.Config, log *slog.Logger) (pipeline.TextTranslator, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	backend, err := translate.NewBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var mem translate.Memory
	release := func() {}
	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		mem = store
		release = func() { store.Close() }
	}

	stack := translate.NewStack(backend, cfg, mem, log)
	return translate.NewCoordinator(stack, translate.OptionsFromConfig(cfg), log), release, nil
}
