package cache

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mockprep/internal/store"
)

// Repository serves ListSessions and GetSession from the cache, filling it
// from the wrapped repository on a miss. Writes pass through. Cache errors
// are logged and the wrapped repository is used instead.
type Repository struct {
	store.Repository
	cache  *Cache
	logger *slog.Logger
	sf     singleflight.Group
}

// NewRepository decorates repo with the cache.
func NewRepository(repo store.Repository, c *Cache, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{Repository: repo, cache: c, logger: logger}
}

func (r *Repository) ListSessions(ctx context.Context, userID string) ([]store.SessionSummary, error) {
	gen, err := r.cache.listGen(ctx, userID)
	if err != nil {
		r.logger.Warn("cache read failed", "key", listGenKey(userID), "error", err)
		return r.Repository.ListSessions(ctx, userID)
	}
	key := sessionsKey(userID, gen)
	var cached []store.SessionSummary
	if r.lookup(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		list, err := r.Repository.ListSessions(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.SessionSummary), nil
}

func (r *Repository) GetSession(ctx context.Context, id string) (*store.Session, error) {
	key := sessionKey(id)
	var cached store.Session
	if r.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		s, err := r.Repository.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Session), nil
}

func (r *Repository) lookup(ctx context.Context, key string, v any) bool {
	hit, err := r.cache.get(ctx, key, v)
	if err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (r *Repository) store(ctx context.Context, key string, v any) {
	if err := r.cache.set(ctx, key, v); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
