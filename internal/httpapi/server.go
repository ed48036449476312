// Package httpapi exposes saved forms over HTTP: CRUD in the shape existing
// builder clients expect, plus visibility, preview, lint and OpenAPI
// endpoints and a websocket for live previews.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Config holds the server collaborators.
type Config struct {
	Repository storage.Repository
	// Renderers used by the preview endpoint. A registry with the vanilla
	// renderer is built when nil.
	Renderers *render.Registry
	Evaluator visibility.Evaluator
	Logger    *slog.Logger
}

// Server serves the form API.
type Server struct {
	repo      storage.Repository
	renderers *render.Registry
	eval      visibility.Evaluator
	logger    *slog.Logger
}

// New validates cfg and builds a Server.
func New(cfg Config) (*Server, error) {
	s := &Server{
		repo:      cfg.Repository,
		renderers: cfg.Renderers,
		eval:      cfg.Evaluator,
		logger:    cfg.Logger,
	}
	if s.repo == nil {
		s.repo = storage.NewMemory()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.eval == nil {
		s.eval = visibility.Default
	}
	if s.renderers == nil {
		html, err := vanilla.New()
		if err != nil {
			return nil, err
		}
		s.renderers = render.NewRegistry()
		if err := s.renderers.Register(html); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API under /api on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.root)
		r.Get("/examples", s.listExamples)
		r.Post("/lint", s.lintDocument)

		r.Route("/forms", func(r chi.Router) {
			r.Post("/", s.createForm)
			r.Get("/", s.listForms)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getForm)
				r.Put("/", s.updateForm)
				r.Delete("/", s.deleteForm)
				r.Post("/visible", s.visibleFields)
				r.Get("/preview", s.preview)
				r.Post("/preview", s.previewWithErrors)
				r.Get("/openapi", s.openAPI)
				r.Post("/lint", s.lintForm)
				r.Get("/live", s.live)
			})
		})
	})
	r.Get("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))).ServeHTTP)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("httpapi: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// cors allows any origin, method and header.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
			h.Set("Access-Control-Allow-Headers", requested)
		} else {
			h.Set("Access-Control-Allow-Headers", "*")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
