package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/wikidoc/internal/parser"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/render"
)

type articleJobRequest struct {
	Title      string `json:"title"`
	Lang       string `json:"lang"`
	TargetLang string `json:"target_lang"`
}

func (s *Server) handleArticleJob(w http.ResponseWriter, r *http.Request) {
	var req articleJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	req.Lang = strings.ToLower(strings.TrimSpace(req.Lang))
	if req.Lang == "" {
		req.Lang = s.cfg.DefaultLanguage
	}
	req.TargetLang = strings.ToLower(strings.TrimSpace(req.TargetLang))
	if req.TargetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}

	s.submit(w, pipeline.NewArticleJob(req.Title, req.Lang, req.TargetLang))
}

func (s *Server) handleDocumentJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	target := strings.ToLower(strings.TrimSpace(r.FormValue("target_lang")))
	if target == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}
	source := strings.ToLower(strings.TrimSpace(r.FormValue("source_lang")))

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	s.submit(w, pipeline.NewDocumentJob(filename, data, source, target))
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     snap.ID,
		"kind":       snap.Kind,
		"status":     snap.Status,
		"poll_url":   fmt.Sprintf("/api/jobs/%s/status", snap.ID),
		"result_url": fmt.Sprintf("/api/jobs/%s/result", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	res, docx := job.Result()
	if res == nil {
		if snap.Status == pipeline.StatusFailed {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "job failed",
				"status": snap.Status,
				"errors": snap.Progress.Errors,
			})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"result": res,
		})
	case "docx":
		writeDOCX(w, render.Filename(res.Title, res.Lang), docx)
	default:
		jsonError(w, "format must be json or docx", http.StatusBadRequest)
	}
}
