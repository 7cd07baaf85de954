package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/parser"
)

// ErrNotFound is returned when the requested page does not exist.
var ErrNotFound = errors.New("article not found")

const searchLimit = 10

// Client talks to the MediaWiki action API of any language edition.
type Client struct {
	apiPattern string // e.g. https://%s.wikipedia.org/w/api.php
	userAgent  string
	httpClient *http.Client
}

func NewClient(apiPattern, userAgent string) *Client {
	return &Client{
		apiPattern: apiPattern,
		userAgent:  userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchResult is one hit from a full-text search.
type SearchResult struct {
	Title     string `json:"title"`
	PageID    int    `json:"page_id"`
	Snippet   string `json:"snippet"`
	WordCount int    `json:"word_count"`
}

// Article is a fetched page with its plain-text body split into sections.
type Article struct {
	Title    string            `json:"title"`
	Lang     string            `json:"lang"`
	PageID   int               `json:"page_id"`
	URL      string            `json:"url"`
	Summary  string            `json:"summary"`
	Content  string            `json:"content"`
	Sections []doctree.Section `json:"sections"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type page struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Invalid   bool   `json:"invalid"`
	Extract   string `json:"extract"`
	FullURL   string `json:"fullurl"`
	LangLinks []struct {
		Lang  string `json:"lang"`
		Title string `json:"title"`
	} `json:"langlinks"`
}

type queryResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Search []struct {
			Title     string `json:"title"`
			PageID    int    `json:"pageid"`
			Snippet   string `json:"snippet"`
			WordCount int    `json:"wordcount"`
		} `json:"search"`
		Pages []page `json:"pages"`
	} `json:"query"`
}

// Search runs a full-text search and returns up to ten hits with plain-text
// snippets.
func (c *Client) Search(ctx context.Context, query, lang string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprint(searchLimit))

	var resp queryResponse
	if err := c.query(ctx, lang, params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]SearchResult, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		results = append(results, SearchResult{
			Title:     s.Title,
			PageID:    s.PageID,
			Snippet:   StripMarkup(s.Snippet),
			WordCount: s.WordCount,
		})
	}
	return results, nil
}

// Article fetches the intro summary and full plain-text body of a page.
// Redirects are followed, so the returned title may differ from the one asked.
func (c *Client) Article(ctx context.Context, title, lang string) (*Article, error) {
	full, err := c.extract(ctx, title, lang, false)
	if err != nil {
		return nil, err
	}
	intro, err := c.extract(ctx, full.Title, lang, true)
	if err != nil {
		return nil, err
	}

	art := &Article{
		Title:   full.Title,
		Lang:    lang,
		PageID:  full.PageID,
		URL:     full.FullURL,
		Summary: strings.TrimSpace(intro.Extract),
		Content: strings.TrimSpace(full.Extract),
	}
	if art.URL == "" {
		art.URL = ArticleURL(full.Title, lang)
	}
	art.Sections = parser.SplitSections(art.Content)
	return art, nil
}

func (c *Client) extract(ctx context.Context, title, lang string, introOnly bool) (*page, error) {
	params := url.Values{}
	params.Set("prop", "extracts|info")
	params.Set("inprop", "url")
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "wiki")
	params.Set("redirects", "1")
	params.Set("titles", title)
	if introOnly {
		params.Set("exintro", "1")
	}

	var resp queryResponse
	if err := c.query(ctx, lang, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch %q: %w", title, err)
	}
	p, err := firstPage(resp, title)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Languages lists the editions that carry this article, keyed by language
// code. The edition it was looked up in is always included.
func (c *Client) Languages(ctx context.Context, title, lang string) (map[string]string, error) {
	params := url.Values{}
	params.Set("prop", "langlinks")
	params.Set("lllimit", "500")
	params.Set("redirects", "1")
	params.Set("titles", title)

	var resp queryResponse
	if err := c.query(ctx, lang, params, &resp); err != nil {
		return nil, fmt.Errorf("languages for %q: %w", title, err)
	}
	p, err := firstPage(resp, title)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(p.LangLinks)+1)
	for _, ll := range p.LangLinks {
		if ll.Lang != "" && ll.Title != "" {
			out[ll.Lang] = ll.Title
		}
	}
	out[lang] = p.Title
	return out, nil
}

// ArticleIn follows the interlanguage link from the from edition and
// fetches the counterpart in the to edition.
func (c *Client) ArticleIn(ctx context.Context, title, from, to string) (*Article, error) {
	if from == to {
		return c.Article(ctx, title, to)
	}
	links, err := c.Languages(ctx, title, from)
	if err != nil {
		return nil, err
	}
	target, ok := links[to]
	if !ok {
		return nil, fmt.Errorf("no %s edition of %q: %w", to, title, ErrNotFound)
	}
	return c.Article(ctx, target, to)
}

// SortedCodes returns the language codes of a Languages result in order.
func SortedCodes(links map[string]string) []string {
	codes := make([]string, 0, len(links))
	for code := range links {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func firstPage(resp queryResponse, title string) (*page, error) {
	if len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("%q: %w", title, ErrNotFound)
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid || p.PageID <= 0 {
		return nil, fmt.Errorf("%q: %w", title, ErrNotFound)
	}
	return &p, nil
}

// query issues a GET against the action API of the given edition.
func (c *Client) query(ctx context.Context, lang string, params url.Values, out *queryResponse) error {
	if !validLang(lang) {
		return fmt.Errorf("invalid language code %q", lang)
	}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("utf8", "1")

	endpoint := fmt.Sprintf(c.apiPattern, lang)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("wiki api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return fmt.Errorf("wiki api error: %s: %s", out.Error.Code, out.Error.Info)
	}
	return nil
}

// ArticleURL builds the canonical page URL for a title.
func ArticleURL(title, lang string) string {
	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	path = strings.ReplaceAll(path, "%2F", "/")
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, path)
}

// validLang accepts edition codes such as "en", "zh-yue" or "simple".
func validLang(lang string) bool {
	if lang == "" || len(lang) > 16 {
		return false
	}
	for _, r := range lang {
		if !(r >= 'a' && r <= 'z') && r != '-' {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
