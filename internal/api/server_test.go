package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/wikidoc/internal/config"
	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

type fakeWiki struct{}

func (fakeWiki) Search(_ context.Context, query, lang string) ([]wiki.SearchResult, error) {
	return []wiki.SearchResult{{Title: "Go", PageID: 7, Snippet: "a language about " + query}}, nil
}

func (fakeWiki) Article(_ context.Context, title, lang string) (*wiki.Article, error) {
	if title != "Go" {
		return nil, wiki.ErrNotFound
	}
	return &wiki.Article{
		Title:   "Go",
		Lang:    lang,
		URL:     wiki.ArticleURL("Go", lang),
		Summary: "A language.",
		Content: "A language.\n\n== History ==\nDesigned in 2007.",
		Sections: []doctree.Section{
			doctree.Untitled("A language."),
			doctree.Titled("History", "Designed in 2007.", 2),
		},
	}, nil
}

func (fakeWiki) Languages(_ context.Context, title, lang string) (map[string]string, error) {
	if title != "Go" {
		return nil, wiki.ErrNotFound
	}
	return map[string]string{lang: title, "fr": "Go (langage)", "de": "Go (Programmiersprache)"}, nil
}

type upperBackend struct{}

func (upperBackend) Name() string { return "upper" }

func (upperBackend) Translate(_ context.Context, text, targetLang, sourceLang string) (string, error) {
	return strings.ToUpper(text), nil
}

func testConfig() config.Config {
	cfg := config.Config{
		DefaultLanguage: "en",
		MaxUploadBytes:  1 << 20,
		WorkerCount:     1,
		MaxQueueSize:    4,
		JobTTL:          time.Hour,
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stack := translate.NewStack(upperBackend{}, cfg, nil, log)
	coord := translate.NewCoordinator(stack, translate.OptionsFromConfig(cfg), log)
	orch := pipeline.NewOrchestrator(cfg, coord, fakeWiki{}, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, coord, fakeWiki{}, stack, nil, log, cfg)
}

func do(t *testing.T, srv http.Handler, method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := do(t, srv, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.WikidocAPIKey = "secret"
	srv := newTestServer(t, cfg)

	if rec := do(t, srv, http.MethodGet, "/api/languages", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	bad := http.Header{"Authorization": {"Bearer wrong"}}
	if rec := do(t, srv, http.MethodGet, "/api/languages", nil, bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
	good := http.Header{"Authorization": {"Bearer secret"}}
	if rec := do(t, srv, http.MethodGet, "/api/languages", nil, good); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/health", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("health must stay public, got %d", rec.Code)
	}
}

func TestSections(t *testing.T) {
	srv := newTestServer(t, testConfig())
	body := strings.NewReader(`{"content":"Intro\n== A ==\nx"}`)
	rec := do(t, srv, http.MethodPost, "/api/sections", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	sections := decode(t, rec)["sections"].([]any)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	lead := sections[0].(map[string]any)
	if lead["title"] != nil || lead["content"] != "Intro" {
		t.Errorf("unexpected lead %v", lead)
	}
	if rec := do(t, srv, http.MethodPost, "/api/sections", strings.NewReader("{"), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestTranslate(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/translate", strings.NewReader(`{"text":"hello","target_lang":"FR"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["translated_text"] != "HELLO" || out["target_lang"] != "fr" {
		t.Errorf("unexpected response %v", out)
	}
	if out["chunks"].(float64) != 1 || out["failed_chunks"].(float64) != 0 {
		t.Errorf("unexpected counts %v", out)
	}

	rec = do(t, srv, http.MethodPost, "/api/translate", strings.NewReader(`{"text":"hello"}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without target_lang, got %d", rec.Code)
	}
}

func TestSearchAndArticle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	if rec := do(t, srv, http.MethodGet, "/api/search", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", rec.Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/search?q=golang&lang=de", nil, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["lang"] != "de" {
		t.Errorf("unexpected search response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/api/articles/Go", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	codes := out["available_languages"].([]any)
	if len(codes) != 3 || codes[0] != "de" {
		t.Errorf("unexpected languages %v", codes)
	}
	if out["language_name"] != "English" {
		t.Errorf("unexpected language name %v", out["language_name"])
	}

	if rec := do(t, srv, http.MethodGet, "/api/articles/Nope", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestArticleLink(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/articles/Go/link?lang=en&to=fr", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["title"] != "Go (langage)" || out["url"] != "https://fr.wikipedia.org/wiki/Go_%28langage%29" {
		t.Errorf("unexpected link %v", out)
	}

	if rec := do(t, srv, http.MethodGet, "/api/articles/Go/link?to=ja", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing edition, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/articles/Go/link", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without to, got %d", rec.Code)
	}
}

func TestArticleExport(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/articles/Go/export?to=fr", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "GO_fr.docx") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip container")
	}
}

func waitJob(t *testing.T, srv http.Handler, id string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, srv, http.MethodGet, "/api/jobs/"+id+"/status", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
		}
		snap := decode(t, rec)
		if pipeline.JobStatus(snap["status"].(string)).Done() {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not finish: %v", id, snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestArticleJobLifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/jobs/article", strings.NewReader(`{"title":"Go","target_lang":"fr"}`), nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	id := decode(t, rec)["job_id"].(string)

	snap := waitJob(t, srv, id)
	if snap["status"] != string(pipeline.StatusCompleted) {
		t.Fatalf("expected completed, got %v", snap)
	}

	rec = do(t, srv, http.MethodGet, "/api/jobs/"+id+"/result", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	res := decode(t, rec)["result"].(map[string]any)
	if res["title"] != "GO" || res["lang"] != "fr" || res["source_lang"] != "en" {
		t.Errorf("unexpected result %v", res)
	}

	rec = do(t, srv, http.MethodGet, "/api/jobs/"+id+"/result?format=docx", nil, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != docxContentType {
		t.Errorf("unexpected docx response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := do(t, srv, http.MethodGet, "/api/jobs/"+id+"/result?format=pdf", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestArticleJobValidation(t *testing.T) {
	srv := newTestServer(t, testConfig())
	for _, body := range []string{`{"target_lang":"fr"}`, `{"title":"Go"}`, ``} {
		if rec := do(t, srv, http.MethodPost, "/api/jobs/article", strings.NewReader(body), nil); rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestFailedArticleJob(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := do(t, srv, http.MethodPost, "/api/jobs/article", strings.NewReader(`{"title":"Nope","target_lang":"fr"}`), nil)
	id := decode(t, rec)["job_id"].(string)

	if snap := waitJob(t, srv, id); snap["status"] != string(pipeline.StatusFailed) {
		t.Fatalf("expected failed, got %v", snap)
	}
	if rec := do(t, srv, http.MethodGet, "/api/jobs/"+id+"/result", nil, nil); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for failed job result, got %d", rec.Code)
	}
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (io.Reader, http.Header) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, http.Header{"Content-Type": {mw.FormDataContentType()}}
}

func TestDocumentJob(t *testing.T) {
	srv := newTestServer(t, testConfig())

	body, hdr := multipartBody(t, "../notes.txt", "Intro.\n== Part ==\nbody", map[string]string{"target_lang": "de"})
	rec := do(t, srv, http.MethodPost, "/api/jobs/document", body, hdr)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	id := decode(t, rec)["job_id"].(string)

	snap := waitJob(t, srv, id)
	if snap["status"] != string(pipeline.StatusCompleted) || snap["filename"] != "notes.txt" {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	progress := snap["progress"].(map[string]any)
	if progress["total_sections"].(float64) != 2 || progress["sections_done"].(float64) != 2 {
		t.Errorf("unexpected progress %v", progress)
	}
}

func TestDocumentJobRejectsUnsupported(t *testing.T) {
	srv := newTestServer(t, testConfig())

	body, hdr := multipartBody(t, "data.csv", "a,b", map[string]string{"target_lang": "de"})
	if rec := do(t, srv, http.MethodPost, "/api/jobs/document", body, hdr); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for csv, got %d", rec.Code)
	}

	body, hdr = multipartBody(t, "a.txt", "x", nil)
	if rec := do(t, srv, http.MethodPost, "/api/jobs/document", body, hdr); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without target_lang, got %d", rec.Code)
	}
}

func TestJobNotFound(t *testing.T) {
	srv := newTestServer(t, testConfig())
	if rec := do(t, srv, http.MethodGet, "/api/jobs/nope/status", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/jobs/nope/result", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestTranslateStats(t *testing.T) {
	srv := newTestServer(t, testConfig())
	do(t, srv, http.MethodPost, "/api/translate", strings.NewReader(`{"text":"hi","target_lang":"fr"}`), nil)

	rec := do(t, srv, http.MethodGet, "/api/stats/translate", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	out := decode(t, rec)
	if out["backend"] != "upper" || out["breaker_state"] != "closed" {
		t.Errorf("unexpected stats %v", out)
	}
	if _, ok := out["cache"]; ok {
		t.Error("cache stats should be absent without a translation memory")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"notes.txt", "notes.txt"},
		{"../../etc/passwd", "passwd"},
		{"a..b.md", "a_b.md"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
