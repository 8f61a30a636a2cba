package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/store"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute), mr
}

// countingRepo is an in-memory store.Repository that counts reads.
type countingRepo struct {
	mu       sync.Mutex
	lists    int
	gets     int
	sessions map[string]*store.Session
	byUser   map[string][]store.SessionSummary
}

func newCountingRepo() *countingRepo {
	return &countingRepo{
		sessions: map[string]*store.Session{},
		byUser:   map[string][]store.SessionSummary{},
	}
}

func (r *countingRepo) FindOrCreateUser(_ context.Context, id identity.Identity) (string, error) {
	return "user-" + id.ExternalID, nil
}

func (r *countingRepo) CreateSession(_ context.Context, s store.NewSession) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := "s" + string(rune('0'+len(r.sessions)+1))
	r.sessions[id] = &store.Session{ID: id, UserID: s.UserID, JobRole: s.JobRole, TotalScore: s.TotalScore}
	r.byUser[s.UserID] = append([]store.SessionSummary{{ID: id, JobRole: s.JobRole, TotalScore: s.TotalScore}}, r.byUser[s.UserID]...)
	return id, nil
}

func (r *countingRepo) ListSessions(_ context.Context, userID string) ([]store.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	return append([]store.SessionSummary(nil), r.byUser[userID]...), nil
}

func (r *countingRepo) GetSession(_ context.Context, id string) (*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	s, ok := r.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func TestRepository_ListSessionsCached(t *testing.T) {
	c, mr := newTestCache(t)
	base := newCountingRepo()
	repo := NewRepository(base, c, nil)
	ctx := context.Background()

	if _, err := repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "SRE", TotalScore: 7}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		list, err := repo.ListSessions(ctx, "u1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].JobRole != "SRE" {
			t.Fatalf("unexpected list: %+v", list)
		}
	}
	if base.lists != 1 {
		t.Errorf("expected one backing read, got %d", base.lists)
	}
	if !mr.Exists("mockprep:sessions:u1:0") {
		t.Error("expected list view in redis")
	}
	if ttl := mr.TTL("mockprep:sessions:u1:0"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Errorf("unexpected ttl %v", ttl)
	}
}

func TestRepository_InvalidateSessions(t *testing.T) {
	c, mr := newTestCache(t)
	base := newCountingRepo()
	repo := NewRepository(base, c, nil)
	ctx := context.Background()

	_, _ = repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "SRE"})
	_, _ = repo.ListSessions(ctx, "u1")

	_, _ = repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "PM"})
	if err := c.InvalidateSessions(ctx, "u1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if gen, _ := mr.Get("mockprep:sessions-gen:u1"); gen != "1" {
		t.Errorf("list generation = %q, want 1", gen)
	}

	list, err := repo.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].JobRole != "PM" {
		t.Errorf("expected fresh list, got %+v", list)
	}
	if base.lists != 2 {
		t.Errorf("expected two backing reads, got %d", base.lists)
	}
}

func TestRepository_LateFillDoesNotResurrectStaleList(t *testing.T) {
	c, _ := newTestCache(t)
	base := newCountingRepo()
	repo := NewRepository(base, c, nil)
	ctx := context.Background()

	// A reader picks up the generation and reads the empty list, then a
	// session is written and invalidated before the reader stores its fill.
	gen, err := c.listGen(ctx, "u1")
	if err != nil {
		t.Fatalf("listGen: %v", err)
	}
	stale, _ := base.ListSessions(ctx, "u1")
	_, _ = repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "SRE"})
	if err := c.InvalidateSessions(ctx, "u1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := c.set(ctx, sessionsKey("u1", gen), stale); err != nil {
		t.Fatalf("late fill: %v", err)
	}

	list, err := repo.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].JobRole != "SRE" {
		t.Errorf("expected the new session, got %+v", list)
	}
}

func TestRepository_GetSessionCachedAndInvalidated(t *testing.T) {
	c, _ := newTestCache(t)
	base := newCountingRepo()
	repo := NewRepository(base, c, nil)
	ctx := context.Background()

	id, _ := repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "QA", TotalScore: 6.5})
	for i := 0; i < 2; i++ {
		s, err := repo.GetSession(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if s.TotalScore != 6.5 {
			t.Errorf("TotalScore = %v", s.TotalScore)
		}
	}
	if base.gets != 1 {
		t.Errorf("expected one backing read, got %d", base.gets)
	}

	if err := c.InvalidateSession(ctx, id); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetSession(ctx, id)
	if base.gets != 2 {
		t.Errorf("expected re-read after invalidation, got %d", base.gets)
	}
}

func TestRepository_NotFoundNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	repo := NewRepository(newCountingRepo(), c, nil)

	_, err := repo.GetSession(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if mr.Exists("mockprep:session:missing") {
		t.Error("misses must not be cached")
	}
}

func TestRepository_FallsBackWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	base := newCountingRepo()
	repo := NewRepository(base, c, nil)
	ctx := context.Background()
	_, _ = repo.CreateSession(ctx, store.NewSession{UserID: "u1", JobRole: "SRE"})

	mr.Close()

	list, err := repo.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("list with redis down: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := c.InvalidateSessions(ctx, "u1"); err == nil {
		t.Error("expected invalidation error with redis down")
	}
}

func TestOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	c, err := Open(context.Background(), Options{Addr: mr.Addr(), TTL: time.Minute})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if _, err := Open(context.Background(), Options{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected error for unreachable redis")
	}
}

func TestNop(t *testing.T) {
	var n Nop
	if err := n.InvalidateSessions(context.Background(), "u"); err != nil {
		t.Error(err)
	}
	if err := n.InvalidateSession(context.Background(), "s"); err != nil {
		t.Error(err)
	}
}
