package api

import (
	"net/http"
	"strings"

	"github.com/dgallion1/wikidoc/internal/langs"
	"github.com/dgallion1/wikidoc/internal/parser"
)

type sectionsRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	var req sectionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": parser.SplitSections(req.Content),
	})
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.TargetLang = strings.ToLower(strings.TrimSpace(req.TargetLang))
	req.SourceLang = strings.ToLower(strings.TrimSpace(req.SourceLang))
	if req.TargetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}

	out, rep := s.coord.TranslateDetailed(r.Context(), req.Text, req.TargetLang, req.SourceLang)
	writeJSON(w, http.StatusOK, map[string]any{
		"translated_text": out,
		"target_lang":     req.TargetLang,
		"source_lang":     req.SourceLang,
		"chunks":          rep.Chunks,
		"failed_chunks":   rep.Failed,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if err := langs.Err(); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": langs.All(),
		"popular":   langs.Popular(),
		"default":   s.cfg.DefaultLanguage,
	})
}
