package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeWiki serves canned action API responses keyed on the query shape.
func fakeWiki(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Header.Get("User-Agent") != "wikidoc-test" {
			t.Errorf("missing user agent, got %q", r.Header.Get("User-Agent"))
		}
		if q.Get("formatversion") != "2" || q.Get("action") != "query" {
			t.Errorf("unexpected base params %s", r.URL.RawQuery)
		}
		lang := strings.Split(r.URL.Path, "/")[1]
		w.Header().Set("Content-Type", "application/json")

		switch {
		case q.Get("list") == "search":
			w.Write([]byte(`{"query":{"search":[
				{"title":"Go (programming language)","pageid":25039021,"snippet":"<span class=\"searchmatch\">Go</span> is a &quot;compiled&quot;   language","wordcount":5000},
				{"title":"Go (game)","pageid":12,"snippet":"board game","wordcount":100}]}}`))
		case q.Get("prop") == "langlinks":
			if q.Get("titles") == "Missing" {
				w.Write([]byte(`{"query":{"pages":[{"title":"Missing","missing":true}]}}`))
				return
			}
			w.Write([]byte(`{"query":{"pages":[{"pageid":7,"title":"Go","langlinks":[{"lang":"fr","title":"Go (langage)"},{"lang":"de","title":"Go (Programmiersprache)"}]}]}}`))
		case q.Get("prop") == "extracts|info":
			title := q.Get("titles")
			if title == "Missing" {
				w.Write([]byte(`{"query":{"pages":[{"title":"Missing","missing":true}]}}`))
				return
			}
			if q.Get("exintro") == "1" {
				w.Write([]byte(`{"query":{"pages":[{"pageid":7,"title":"` + title + `","extract":"Intro of ` + lang + `.","fullurl":"https://x/wiki/Go"}]}}`))
				return
			}
			w.Write([]byte(`{"query":{"pages":[{"pageid":7,"title":"` + title + `","extract":"Intro of ` + lang + `.\n\n== History ==\nDesigned in 2007.\n\n=== Release ===\nPublic in 2009.","fullurl":"https://x/wiki/Go"}]}}`))
		default:
			w.Write([]byte(`{"error":{"code":"badparams","info":"unexpected"}}`))
		}
	}))
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL+"/%s/w/api.php", "wikidoc-test")
}

func TestSearch_StripsSnippetMarkup(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	results, err := newTestClient(srv).Search(context.Background(), "go", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Snippet != `Go is a "compiled" language` {
		t.Errorf("unexpected snippet %q", results[0].Snippet)
	}
	if results[0].PageID != 25039021 || results[0].WordCount != 5000 {
		t.Errorf("unexpected result %+v", results[0])
	}
}

func TestArticle_SplitsSections(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	art, err := newTestClient(srv).Article(context.Background(), "Go", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Summary != "Intro of en." {
		t.Errorf("unexpected summary %q", art.Summary)
	}
	if art.URL != "https://x/wiki/Go" {
		t.Errorf("unexpected url %q", art.URL)
	}
	if len(art.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(art.Sections), art.Sections)
	}
	if art.Sections[0].HasTitle() || art.Sections[0].Content != "Intro of en." {
		t.Errorf("unexpected lead section %+v", art.Sections[0])
	}
	if art.Sections[2].TitleText() != "Release" || art.Sections[2].Level != 3 {
		t.Errorf("unexpected nested section %+v", art.Sections[2])
	}
}

func TestArticle_NotFound(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	_, err := newTestClient(srv).Article(context.Background(), "Missing", "en")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLanguages_IncludesSource(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	links, err := newTestClient(srv).Languages(context.Background(), "Go", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if links["en"] != "Go" || links["fr"] != "Go (langage)" {
		t.Errorf("unexpected links %v", links)
	}
	codes := SortedCodes(links)
	if strings.Join(codes, ",") != "de,en,fr" {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestArticleIn_FollowsLangLink(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()
	c := newTestClient(srv)

	art, err := c.ArticleIn(context.Background(), "Go", "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Title != "Go (langage)" || art.Lang != "fr" {
		t.Errorf("unexpected article %q in %q", art.Title, art.Lang)
	}
	if art.Summary != "Intro of fr." {
		t.Errorf("expected the fr edition to be queried, got %q", art.Summary)
	}

	if _, err := c.ArticleIn(context.Background(), "Go", "en", "ja"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing edition, got %v", err)
	}
}

func TestQuery_RejectsBadLanguage(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	if _, err := newTestClient(srv).Search(context.Background(), "go", "en/../x"); err == nil {
		t.Error("expected error for an invalid language code")
	}
}

func TestArticleURL(t *testing.T) {
	tests := []struct{ title, lang, want string }{
		{"Albert Einstein", "en", "https://en.wikipedia.org/wiki/Albert_Einstein"},
		{"AC/DC", "de", "https://de.wikipedia.org/wiki/AC/DC"},
		{"Café", "fr", "https://fr.wikipedia.org/wiki/Caf%C3%A9"},
	}
	for _, tt := range tests {
		if got := ArticleURL(tt.title, tt.lang); got != tt.want {
			t.Errorf("ArticleURL(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain   text", "plain text"},
		{`<span class="searchmatch">Bold</span> &amp; more`, "Bold & more"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripMarkup(tt.in); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
