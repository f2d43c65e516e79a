// Package web serves the catwalk form and its JSON API over HTTP.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/catwalk/internal/web/sse"
	"github.com/thebtf/catwalk/pkg/models"
)

// Walker is the domain surface the web layer drives.
type Walker interface {
	RegisterCat(ctx context.Context, name string) (*models.Cat, error)
	ToggleWalk(ctx context.Context, catID int64, walking bool) (models.Transition, error)
	Snapshot(ctx context.Context) ([]models.CatState, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	Reset(ctx context.Context) error
}

// HealthChecker reports store liveness for /health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
	Counts(ctx context.Context) (cats, walks int64, err error)
}

// Server owns the HTTP router and its dependencies.
type Server struct {
	version   string
	walker    Walker
	health    HealthChecker
	router    chi.Router
	events    *sse.Broadcaster
	metrics   *metrics
	startTime time.Time
}

// NewServer creates a server and registers its routes.
func NewServer(walker Walker, health HealthChecker, version string) *Server {
	s := &Server{
		version:   version,
		walker:    walker,
		health:    health,
		router:    chi.NewRouter(),
		events:    sse.NewBroadcaster(),
		startTime: time.Now(),
	}
	s.metrics = newMetrics(s.events)
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(s.metrics.instrument)

	r.Get("/", s.handleIndex)
	r.Post("/cats", s.handleAddCat)
	r.Post("/cats/{id}/walk", s.handleToggleWalk)
	r.Post("/reset", s.handleReset)
	r.Get("/assets/*", serveAssets)
	r.Get("/health", s.handleHealth)
	r.Get("/events", s.events.ServeHTTP)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/cats", s.handleAPIListCats)
		r.Post("/cats", s.handleAPIAddCat)
		r.Put("/cats/{id}/walk", s.handleAPIToggleWalk)
		r.Get("/history", s.handleAPIHistory)
		r.Delete("/data", s.handleAPIReset)
	})
}

// Events returns the change broadcaster.
func (s *Server) Events() *sse.Broadcaster {
	return s.events
}

// notify publishes a change to subscribers and counts it.
func (s *Server) notify(ev sse.Event) {
	s.metrics.observe(ev)
	s.events.Publish(ev)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// Requests end with ctx so open event streams do not hold up Shutdown.
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", s.version).Msg("Starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each request with the zerolog global logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
