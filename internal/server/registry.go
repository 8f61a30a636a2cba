package server

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/session"
)

// ErrTooManyInterviews is returned when a user already has the maximum
// number of live interviews.
var ErrTooManyInterviews = errors.New("too many open interviews, finish or delete one first")

type liveInterview struct {
	iv       *session.Interview
	lastSeen time.Time
}

func (s *Server) expired(li *liveInterview, now time.Time) bool {
	return now.Sub(li.lastSeen) > s.deps.InterviewTTL
}

func (s *Server) newInterview(owner identity.Identity) (string, *session.Interview, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	live := 0
	for _, li := range s.interviews {
		if li.iv.Owner().ExternalID == owner.ExternalID && !s.expired(li, now) {
			live++
		}
	}
	if live >= s.deps.MaxInterviews {
		return "", nil, ErrTooManyInterviews
	}

	iv := session.New(owner, session.Deps{
		Generator: s.deps.Generator,
		Scorer:    s.deps.Scorer,
		Persister: s.deps.Persister,
		Logger:    s.logger,
	}, s.deps.Session)

	id := newID()
	s.interviews[id] = &liveInterview{iv: iv, lastSeen: now}
	return id, iv, nil
}

// interview returns the interview if it is live and belongs to owner, and
// marks it as used.
func (s *Server) interview(id string, owner identity.Identity) (*session.Interview, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	li, ok := s.interviews[id]
	if !ok || li.iv.Owner().ExternalID != owner.ExternalID || s.expired(li, now) {
		return nil, false
	}
	li.lastSeen = now
	return li.iv, true
}

func (s *Server) removeInterview(id string, owner identity.Identity) (*session.Interview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	li, ok := s.interviews[id]
	if !ok || li.iv.Owner().ExternalID != owner.ExternalID {
		return nil, false
	}
	delete(s.interviews, id)
	return li.iv, true
}

// sweep drops idle interviews and returns how many were evicted. Evicted
// interviews are reset so a call still in flight discards its result.
func (s *Server) sweep() int {
	now := s.now()

	s.mu.Lock()
	var stale []*session.Interview
	for id, li := range s.interviews {
		if s.expired(li, now) {
			stale = append(stale, li.iv)
			delete(s.interviews, id)
		}
	}
	s.mu.Unlock()

	for _, iv := range stale {
		iv.ResetInterview()
	}
	return len(stale)
}

func (s *Server) sweepLoop(ctx context.Context) {
	interval := max(s.deps.InterviewTTL/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Info("evicted idle interviews", "count", n)
			}
		}
	}
}
