package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/dgallion1/wikidoc/internal/config"
	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

type tagTranslator struct {
	sources []string
}

func (f *tagTranslator) TranslateDetailed(_ context.Context, text, targetLang, sourceLang string) (string, translate.Report) {
	f.sources = append(f.sources, sourceLang)
	if text == "" {
		return "", translate.Report{}
	}
	return "[" + targetLang + "]" + text, translate.Report{Chunks: 1}
}

type fakeWiki struct {
	searchLang string
	inCalls    []string
}

func (f *fakeWiki) Search(_ context.Context, query, lang string) ([]wiki.SearchResult, error) {
	f.searchLang = lang
	return []wiki.SearchResult{{Title: "Go", Snippet: "about " + query}}, nil
}

func (f *fakeWiki) Article(_ context.Context, title, lang string) (*wiki.Article, error) {
	if title != "Go" {
		return nil, wiki.ErrNotFound
	}
	return &wiki.Article{
		Title:   "Go",
		Lang:    lang,
		URL:     wiki.ArticleURL("Go", lang),
		Summary: "A language.",
		Sections: []doctree.Section{
			doctree.Untitled("A language."),
			doctree.Titled("History", "Designed in 2007.", 2),
		},
	}, nil
}

func (f *fakeWiki) ArticleIn(ctx context.Context, title, from, to string) (*wiki.Article, error) {
	f.inCalls = append(f.inCalls, from+">"+to)
	return f.Article(ctx, title, to)
}

type testEnv struct {
	app  *App
	out  *bytes.Buffer
	err  *bytes.Buffer
	tr   *tagTranslator
	wiki *fakeWiki
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	env := &testEnv{
		out:  &bytes.Buffer{},
		err:  &bytes.Buffer{},
		tr:   &tagTranslator{},
		wiki: &fakeWiki{},
	}
	env.app = &App{
		Out: env.out,
		Err: env.err,
		Translator: func(context.Context, config.Config, *slog.Logger) (pipeline.TextTranslator, func(), error) {
			return env.tr, func() {}, nil
		},
		Wiki: func(config.Config) Wiki { return env.wiki },
	}
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	cmd := CreateRootCommand(NewFlags(), e.app)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(e.err)
	cmd.SetErr(e.err)
	return cmd.Execute()
}

func TestCreateRootCommand(t *testing.T) {
	env := newTestEnv(t)
	cmd := CreateRootCommand(NewFlags(), env.app)

	if cmd.Use != "wikidoc" {
		t.Errorf("Expected Use to be 'wikidoc', got %s", cmd.Use)
	}
	for _, name := range []string{"config", "lang", "provider", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s to exist", name)
		}
	}
	for _, name := range []string{"sections", "translate", "search", "article"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s, got %v (%v)", name, sub, err)
		}
	}
	if def := cmd.PersistentFlags().Lookup("lang").DefValue; def != "en" {
		t.Errorf("Expected default lang en, got %s", def)
	}
	usage := cmd.PersistentFlags().Lookup("provider").Usage
	for _, p := range config.Providers {
		if !strings.Contains(usage, p) {
			t.Errorf("Expected --provider help to mention %s, got %q", p, usage)
		}
	}
}

func TestSectionsCommand(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "page.wiki")
	os.WriteFile(path, []byte("Intro\n== History ==\nOld times."), 0644)

	if err := env.run(t, "", "sections", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0\t(lead)\t5 chars\n2\tHistory\t10 chars\n"
	if env.out.String() != want {
		t.Errorf("got %q, want %q", env.out.String(), want)
	}
}

func TestSectionsCommand_JSONFromStdin(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "== A ==\nx", "sections", "--json", "-"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(env.out.String(), `"title": "A"`) {
		t.Errorf("unexpected output %s", env.out.String())
	}
}

func TestTranslateCommand(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run(t, "hi", "translate", "-"); err == nil || !strings.Contains(err.Error(), "--to") {
		t.Errorf("expected missing --to error, got %v", err)
	}

	if err := env.run(t, "hello world", "translate", "--to", "FR", "--from", "EN", "-"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.out.String() != "[fr]hello world\n" {
		t.Errorf("unexpected output %q", env.out.String())
	}
	if got := env.tr.sources[len(env.tr.sources)-1]; got != "en" {
		t.Errorf("expected lower-cased source, got %q", got)
	}
}

func TestSearchCommand_UsesLangFlag(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "", "search", "--lang", "de", "alan", "turing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.wiki.searchLang != "de" {
		t.Errorf("expected de edition, got %q", env.wiki.searchLang)
	}
	if env.out.String() != "Go\tabout alan turing\n" {
		t.Errorf("unexpected output %q", env.out.String())
	}
}

func TestArticleCommand_TranslateToDOCX(t *testing.T) {
	env := newTestEnv(t)
	out := filepath.Join(t.TempDir(), "go.docx")

	if err := env.run(t, "", "article", "Go", "--to", "de", "--out", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("expected a docx (zip) file")
	}
	if !strings.Contains(env.err.String(), "Wrote") {
		t.Errorf("expected status line, got %q", env.err.String())
	}
}

func TestArticleCommand_Print(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "", "article", "Go", "--to", "fr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := env.out.String()
	if !strings.HasPrefix(got, "[fr]Go (French)\n") {
		t.Errorf("unexpected header %q", got)
	}
	if !strings.Contains(got, "== [fr]History ==\n[fr]Designed in 2007.") {
		t.Errorf("expected translated sections, got %q", got)
	}
}

func TestArticleCommand_Native(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "", "article", "Go", "--to", "fr", "--native"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.wiki.inCalls) != 1 || env.wiki.inCalls[0] != "en>fr" {
		t.Errorf("expected a langlink lookup, got %v", env.wiki.inCalls)
	}
	if len(env.tr.sources) != 0 {
		t.Error("native edition must not be machine translated")
	}
}

func TestArticleCommand_NotFound(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "", "article", "Nope"); err == nil {
		t.Error("expected an error for a missing article")
	}
}

func TestInitConfig(t *testing.T) {
	env := newTestEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "wikidoc.yaml")
	content := "lang: fr\ntranslate:\n  provider: DeepL\ndeepl:\n  api_key: k\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	// Flags are bound before the file is read, as in main.
	CreateRootCommand(NewFlags(), env.app)
	InitConfig(cfgPath)

	if got := viper.GetString("lang"); got != "fr" {
		t.Errorf("expected lang from config file, got %q", got)
	}
	cfg := loadConfig()
	if cfg.TranslateProvider != "deepl" || cfg.DeepLAPIKey != "k" {
		t.Errorf("unexpected config %q %q", cfg.TranslateProvider, cfg.DeepLAPIKey)
	}

	t.Setenv("WIKIDOC_TRANSLATE_PROVIDER", "gemini")
	if got := loadConfig().TranslateProvider; got != "gemini" {
		t.Errorf("expected env override, got %q", got)
	}
}
