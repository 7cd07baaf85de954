package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/wikidoc/internal/wiki"
)

const maxJSONBody = 4 << 20

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// wikiError maps encyclopedia failures onto HTTP status codes.
func (s *Server) wikiError(w http.ResponseWriter, err error) {
	if errors.Is(err, wiki.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.Error("wiki request failed", "error", err)
	jsonError(w, "encyclopedia unavailable: "+err.Error(), http.StatusBadGateway)
}

// langParam reads a language query parameter, falling back to the
// configured default.
func (s *Server) langParam(r *http.Request, name string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return strings.ToLower(v)
	}
	return s.cfg.DefaultLanguage
}

// titleParam returns the decoded {title} path segment with underscores
// read as spaces.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	if t, err := url.PathUnescape(raw); err == nil {
		raw = t
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
}

func writeDOCX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
