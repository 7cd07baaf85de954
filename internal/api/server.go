package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/wikidoc/internal/cache"
	"github.com/dgallion1/wikidoc/internal/config"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

// WikiClient is the encyclopedia access the API needs.
type WikiClient interface {
	Search(ctx context.Context, query, lang string) ([]wiki.SearchResult, error)
	Article(ctx context.Context, title, lang string) (*wiki.Article, error)
	Languages(ctx context.Context, title, lang string) (map[string]string, error)
}

// Server is the HTTP API server for wikidoc.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	coord        *translate.Coordinator
	wiki         WikiClient
	stack        *translate.Stack // optional; enables backend stats
	memory       *cache.Store     // optional translation memory
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stack and memory may
// be nil.
func NewServer(orch *pipeline.Orchestrator, coord *translate.Coordinator, wc WikiClient, stack *translate.Stack, memory *cache.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		coord:        coord,
		wiki:         wc,
		stack:        stack,
		memory:       memory,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(corsOptions(s.cfg.CORSOrigins)))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.WikidocAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.WikidocAPIKey, s.log))
		}

		r.Post("/api/sections", s.handleSections)
		r.Post("/api/translate", s.handleTranslate)
		r.Get("/api/languages", s.handleLanguages)

		r.Get("/api/search", s.handleSearch)
		r.Get("/api/articles/{title}", s.handleArticle)
		r.Get("/api/articles/{title}/languages", s.handleArticleLanguages)
		r.Get("/api/articles/{title}/link", s.handleArticleLink)
		r.Get("/api/articles/{title}/export", s.handleArticleExport)

		r.Post("/api/jobs/article", s.handleArticleJob)
		r.Post("/api/jobs/document", s.handleDocumentJob)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Get("/api/stats/translate", s.handleTranslateStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
