// Package persist stores scored interviews: it syncs the external identity
// into a local user, writes the session with all of its responses in one
// transaction and then invalidates the dependent views.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
)

// invalidateTimeout bounds one background invalidation.
const invalidateTimeout = 5 * time.Second

// Invalidator drops cached views after a write.
type Invalidator interface {
	InvalidateSessions(ctx context.Context, userID string) error
	InvalidateSession(ctx context.Context, sessionID string) error
}

// SaveInput is one scored interview for a known user.
type SaveInput struct {
	UserID    string
	JobRole   string
	Questions []questions.Question
	Answers   map[string]string
	Scores    feedback.Scores
}

// Service is the persistence adapter. It implements session.Persister.
type Service struct {
	repo        store.Repository
	invalidator Invalidator
	logger      *slog.Logger

	users    singleflight.Group
	inflight sync.WaitGroup
}

// New creates a Service. A nil invalidator disables invalidation; a nil
// logger uses slog.Default().
func New(repo store.Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// SyncUser returns the local user id for the identity, creating the user on
// first sight. Concurrent calls for one identity share a single lookup.
func (s *Service) SyncUser(ctx context.Context, id identity.Identity) (string, error) {
	if !id.Valid() {
		return "", &PersistenceError{Op: "sync user", Err: identity.ErrMissing}
	}

	v, err, _ := s.users.Do(id.ExternalID, func() (any, error) {
		return s.repo.FindOrCreateUser(ctx, id)
	})
	if err != nil {
		return "", &PersistenceError{Op: "sync user", Err: err}
	}
	return v.(string), nil
}

// SaveSession writes the session and one response per question, in
// question order, atomically. Questions without a score entry are stored
// with a nil score and feedback and empty lists.
func (s *Service) SaveSession(ctx context.Context, in SaveInput) (string, error) {
	ns := store.NewSession{
		UserID:     in.UserID,
		JobRole:    in.JobRole,
		TotalScore: feedback.TotalScore(in.Questions, in.Scores),
		Responses:  make([]store.NewQuestionResponse, 0, len(in.Questions)),
	}
	if in.Scores.Overall != nil {
		overall, err := json.Marshal(in.Scores.Overall)
		if err != nil {
			return "", &PersistenceError{Op: "encode overall", Err: err}
		}
		ns.Overall = overall
	}

	for _, q := range in.Questions {
		qr := store.NewQuestionResponse{
			QuestionID:     q.ID,
			Question:       q.Text,
			Answer:         in.Answers[q.ID],
			Strengths:      []string{},
			AreasToImprove: []string{},
		}
		if e, ok := in.Scores.Entry(q.ID); ok {
			qr.Score = e.Score
			fb := e.Feedback
			qr.Feedback = &fb
			if e.Strengths != nil {
				qr.Strengths = e.Strengths
			}
			if e.AreasToImprove != nil {
				qr.AreasToImprove = e.AreasToImprove
			}
		}
		ns.Responses = append(ns.Responses, qr)
	}

	sessionID, err := s.repo.CreateSession(ctx, ns)
	if err != nil {
		return "", &PersistenceError{Op: "create session", Err: err}
	}

	s.notify(ctx, in.UserID, sessionID)
	return sessionID, nil
}

// Persist syncs the owner and saves the result.
func (s *Service) Persist(ctx context.Context, owner identity.Identity, r session.Result) (string, error) {
	userID, err := s.SyncUser(ctx, owner)
	if err != nil {
		return "", err
	}
	return s.SaveSession(ctx, SaveInput{
		UserID:    userID,
		JobRole:   r.JobRole,
		Questions: r.Questions,
		Answers:   r.Answers,
		Scores:    r.Scores,
	})
}

// Wait blocks until background invalidations have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// notify drops the views the new session makes stale. The user's list is
// invalidated before SaveSession returns so the caller's next read sees the
// session; the detail view is dropped in the background.
func (s *Service) notify(ctx context.Context, userID, sessionID string) {
	if s.invalidator == nil {
		return
	}

	listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	if err := s.invalidator.InvalidateSessions(listCtx, userID); err != nil {
		s.logger.Warn("view invalidation failed",
			"error", &RevalidationError{View: "sessions", Key: userID, Err: err})
	}
	cancel()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
		defer cancel()

		if err := s.invalidator.InvalidateSession(ctx, sessionID); err != nil {
			s.logger.Warn("view invalidation failed",
				"error", &RevalidationError{View: "session", Key: sessionID, Err: err})
		}
	}()
}

var _ session.Persister = (*Service)(nil)
