package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/mockprep/internal/cache"
	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/persist"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/store/postgres"
	"github.com/abhisek/mockprep/internal/transcribe"
)

// services holds everything a command needs, built from one Config.
type services struct {
	cfg    config.Config
	logger *slog.Logger

	repo    store.Repository
	events  store.EventRepo
	pinger  interface{ Ping(context.Context) error }
	persist *persist.Service
	closers []func() error

	// Set by withLLM.
	generator   questions.Generator
	scorer      feedback.Scorer
	transcriber transcribe.Transcriber
}

// openServices opens the session store and the optional Redis view cache.
func openServices(ctx context.Context, cfg config.Config, logger *slog.Logger) (*services, error) {
	s := &services{cfg: cfg, logger: logger}

	switch cfg.Database.Driver {
	case "postgres":
		pg, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s.repo, s.events, s.pinger = pg, pg, pg
		s.closers = append(s.closers, pg.Close)
	default:
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.OpenContext(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		s.repo, s.events, s.pinger = st.Repository(), st.EventRepo(), st
		s.closers = append(s.closers, st.Close)
		logger.Debug("store opened", "path", dbPath)
	}

	var invalidator persist.Invalidator = cache.Nop{}
	if cfg.Redis.Addr != "" {
		c, err := cache.Open(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, c.Close)
		s.repo = cache.NewRepository(s.repo, c, logger)
		invalidator = c
		logger.Debug("view cache enabled", "addr", cfg.Redis.Addr)
	}

	s.persist = persist.New(s.repo, invalidator, logger)
	return s, nil
}

// withLLM builds the question generator and the scorer. The transcriber is
// only built when a transcription key is configured.
func (s *services) withLLM(ctx context.Context) error {
	if err := s.cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}
	provider, err := llm.NewProvider(ctx, s.cfg.LLM, s.events, s.logger)
	if err != nil {
		return err
	}
	s.generator = questions.New(provider, s.cfg.Questions())
	s.scorer = feedback.New(provider, s.cfg.Feedback(), s.logger)

	if s.cfg.Transcribe.APIKey != "" {
		w, err := transcribe.NewWhisper(s.cfg.Transcribe, s.events, s.logger)
		if err != nil {
			return err
		}
		s.transcriber = w
	}
	return nil
}

// newInterview starts a fresh interview owned by the configured identity.
func (s *services) newInterview() *session.Interview {
	return session.New(s.cfg.Identity, session.Deps{
		Generator: s.generator,
		Scorer:    s.scorer,
		Persister: s.persist,
		Logger:    s.logger,
	}, s.cfg.Session())
}

// Close waits for background invalidations, then releases connections in
// reverse order of opening.
func (s *services) Close() error {
	if s.persist != nil {
		s.persist.Wait()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
