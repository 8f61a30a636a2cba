// Package server exposes interviews and stored sessions over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/transcribe"
)

// maxAudioBytes caps transcription uploads.
const maxAudioBytes = 25 << 20

const (
	DefaultInterviewTTL  = 2 * time.Hour
	DefaultMaxInterviews = 5
)

// UserSyncer maps an external identity to the local user id.
type UserSyncer interface {
	SyncUser(ctx context.Context, id identity.Identity) (string, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server. Transcriber and Pinger may
// be nil. Zero InterviewTTL and MaxInterviews select the defaults.
type Deps struct {
	Generator   questions.Generator
	Scorer      feedback.Scorer
	Persister   session.Persister
	Users       UserSyncer
	Sessions    store.Repository
	Transcriber transcribe.Transcriber
	Pinger      Pinger
	Session     session.Config
	Logger      *slog.Logger

	// InterviewTTL evicts interviews idle for longer than this.
	InterviewTTL time.Duration
	// MaxInterviews caps the live interviews of one user.
	MaxInterviews int
}

// Server holds the live interviews and routes requests to them.
type Server struct {
	deps   Deps
	logger *slog.Logger
	router chi.Router

	mu         sync.Mutex
	interviews map[string]*liveInterview
	now        func() time.Time
}

// New creates a Server with its routes.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.InterviewTTL <= 0 {
		deps.InterviewTTL = DefaultInterviewTTL
	}
	if deps.MaxInterviews <= 0 {
		deps.MaxInterviews = DefaultMaxInterviews
	}
	s := &Server{
		deps:       deps,
		logger:     logger,
		interviews: make(map[string]*liveInterview),
		now:        time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/wake", s.handleWake)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware)

		r.Route("/api/interviews", func(r chi.Router) {
			r.Post("/", s.handleCreateInterview)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.withInterview(s.handleGetInterview))
				r.Delete("/", s.handleDeleteInterview)
				r.Put("/role", s.withInterview(s.handleSetRole))
				r.Post("/start", s.withInterview(s.handleStart))
				r.Put("/answers/{questionID}", s.withInterview(s.handleAnswer))
				r.Post("/next", s.withInterview(s.handleNext))
				r.Post("/previous", s.withInterview(s.handlePrevious))
				r.Post("/score", s.withInterview(s.handleScore))
				r.Post("/reset", s.withInterview(s.handleReset))
				r.Post("/transcribe", s.withInterview(s.handleTranscribe))
			})
		})

		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Get("/export", s.handleExportSessions)
			r.Get("/{id}", s.handleGetSession)
			r.Get("/{id}/report", s.handleSessionReport)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.sweepLoop(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
