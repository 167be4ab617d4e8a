// Package api serves the import, progress and export endpoints over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/progress"
)

const (
	// SessionHeader keys the progress slot of an import.
	SessionHeader = "X-Import-Session"
	// MaxErrorsInSummary is how many row errors an import response carries.
	MaxErrorsInSummary = 20

	defaultMaxUpload = 32 << 20
)

// Server is the HTTP front end of the import and export pipelines.
type Server struct {
	gw         catalog.Gateway
	importOpts importer.Options
	tracker    *progress.Tracker
	router     *chi.Mux
	logger     *slog.Logger
	now        func() time.Time
	maxUpload  int64
}

// NewServer creates a Server. importOpts is the base configuration of every
// import; its Reporter is replaced per request.
func NewServer(gw catalog.Gateway, importOpts importer.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		gw:         gw,
		importOpts: importOpts,
		tracker:    progress.NewTracker(),
		router:     chi.NewRouter(),
		logger:     logger,
		now:        time.Now,
		maxUpload:  defaultMaxUpload,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Tracker returns the progress store shared by the import and progress endpoints.
func (s *Server) Tracker() *progress.Tracker {
	return s.tracker
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/import", func(r chi.Router) {
			r.Post("/librarything", s.handleImport)
			r.Get("/progress", s.handleProgress)
		})
		r.Get("/export/librarything", s.handleExport)
	})
}
