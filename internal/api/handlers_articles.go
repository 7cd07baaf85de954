package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/dgallion1/wikidoc/internal/langs"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/render"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q is required", http.StatusBadRequest)
		return
	}
	lang := s.langParam(r, "lang")

	results, err := s.wiki.Search(r.Context(), q, lang)
	if err != nil {
		s.wikiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"lang":    lang,
		"results": results,
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	lang := s.langParam(r, "lang")

	art, err := s.wiki.Article(r.Context(), title, lang)
	if err != nil {
		s.wikiError(w, err)
		return
	}

	codes := []string{art.Lang}
	if links, err := s.wiki.Languages(r.Context(), art.Title, lang); err != nil {
		s.log.Warn("language links unavailable", "title", art.Title, "lang", lang, "error", err)
	} else {
		codes = wiki.SortedCodes(links)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"article":             art,
		"language_name":       langs.Name(art.Lang),
		"available_languages": codes,
	})
}

func (s *Server) handleArticleLanguages(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	lang := s.langParam(r, "lang")

	links, err := s.wiki.Languages(r.Context(), title, lang)
	if err != nil {
		s.wikiError(w, err)
		return
	}

	type entry struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	out := make([]entry, 0, len(links))
	for _, code := range wiki.SortedCodes(links) {
		out = append(out, entry{Code: code, Name: langs.Name(code), Title: links[code]})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":     title,
		"lang":      lang,
		"languages": out,
	})
}

// handleArticleLink resolves the counterpart of an article in another
// edition without fetching its body.
func (s *Server) handleArticleLink(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	lang := s.langParam(r, "lang")
	to := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("to")))
	if to == "" {
		jsonError(w, "to is required", http.StatusBadRequest)
		return
	}

	links, err := s.wiki.Languages(r.Context(), title, lang)
	if err != nil {
		s.wikiError(w, err)
		return
	}
	target, ok := links[to]
	if !ok {
		jsonError(w, "no "+to+" edition of "+title, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": target,
		"lang":  to,
		"name":  langs.Name(to),
		"url":   wiki.ArticleURL(target, to),
	})
}

// handleArticleExport downloads an article as DOCX, translated first when
// a to parameter names another language.
func (s *Server) handleArticleExport(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	lang := s.langParam(r, "lang")
	to := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("to")))

	art, err := s.wiki.Article(r.Context(), title, lang)
	if err != nil {
		s.wikiError(w, err)
		return
	}
	if to != "" && to != art.Lang {
		translated, rep := pipeline.TranslateArticle(r.Context(), s.coord, art, to, nil)
		if rep.Partial() {
			s.log.Warn("export has untranslated chunks", "title", art.Title, "to", to, "failed_chunks", rep.Failed)
		}
		art = translated
	}

	var buf bytes.Buffer
	err = render.DOCX(&buf, render.Document{
		Title:    art.Title,
		Lang:     art.Lang,
		Source:   "Wikipedia",
		URL:      art.URL,
		Summary:  art.Summary,
		Sections: art.Sections,
		Content:  art.Content,
	})
	if err != nil {
		s.log.Error("render failed", "title", art.Title, "error", err)
		jsonError(w, "failed to render document", http.StatusInternalServerError)
		return
	}
	writeDOCX(w, render.Filename(art.Title, art.Lang), buf.Bytes())
}
