package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/store"
)

type fakeUsers struct{ err error }

func (f fakeUsers) SyncUser(context.Context, identity.Identity) (string, error) {
	return "user-1", f.err
}

type fakeRepo struct {
	store.Repository
	list   []store.SessionSummary
	gotFor string
}

func (r *fakeRepo) ListSessions(_ context.Context, userID string) ([]store.SessionSummary, error) {
	r.gotFor = userID
	return r.list, nil
}

func (r *fakeRepo) GetSession(_ context.Context, id string) (*store.Session, error) {
	for _, s := range r.list {
		if s.ID == id {
			return &store.Session{ID: id, JobRole: s.JobRole, TotalScore: s.TotalScore}, nil
		}
	}
	return nil, store.ErrNotFound
}

func newRepo() *fakeRepo {
	now := time.Now()
	return &fakeRepo{list: []store.SessionSummary{
		{ID: "s2", JobRole: "SRE", TotalScore: 8.5, QuestionCount: 5, CreatedAt: now},
		{ID: "s1", JobRole: "Backend Engineer", TotalScore: 5.5, QuestionCount: 5, CreatedAt: now.Add(-time.Hour)},
	}}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestHistoryScreen_Lists(t *testing.T) {
	repo := newRepo()
	s := New(repo, fakeUsers{}, identity.Local())
	if view := s.View(100, 20); !strings.Contains(view, "Loading history") {
		t.Errorf("expected loading view, got %q", view)
	}

	load(t, s)
	if repo.gotFor != "user-1" {
		t.Errorf("listed for %q, want user-1", repo.gotFor)
	}
	view := s.View(120, 20)
	for _, want := range []string{"SRE", "Backend Engineer", "8.5", "5.5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&fakeRepo{}, fakeUsers{}, identity.Local())
	load(t, s)
	if view := s.View(100, 20); !strings.Contains(view, "No interviews yet") {
		t.Errorf("expected empty message, got %q", view)
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(newRepo(), fakeUsers{err: errors.New("db locked")}, identity.Local())
	load(t, s)
	if view := s.View(100, 20); !strings.Contains(view, "db locked") {
		t.Errorf("expected error, got %q", view)
	}
}

func TestHistoryScreen_OpenSession(t *testing.T) {
	s := New(newRepo(), fakeUsers{}, identity.Local())
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Fatalf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selection should stop at the last row, got %d", s.selected)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	_, cmd = s.Update(cmd())
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Interview Results" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
}

func TestHistoryScreen_Esc(t *testing.T) {
	s := New(newRepo(), fakeUsers{}, identity.Local())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
