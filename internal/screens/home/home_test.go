package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
)

type fakeUsers struct{}

func (fakeUsers) SyncUser(context.Context, identity.Identity) (string, error) { return "u1", nil }

type fakeRepo struct {
	store.Repository
	list []store.SessionSummary
}

func (r fakeRepo) ListSessions(context.Context, string) ([]store.SessionSummary, error) {
	return r.list, nil
}

func newHome(list []store.SessionSummary) *HomeScreen {
	return New(Deps{
		Owner: identity.Local(),
		NewInterview: func() *session.Interview {
			return session.New(identity.Local(), session.Deps{
				Generator: questions.New(llm.NewMockProvider(), questions.DefaultConfig()),
			}, session.Config{CallTimeout: time.Second})
		},
		Sessions: fakeRepo{list: list},
		Users:    fakeUsers{},
	})
}

func TestSummarize(t *testing.T) {
	p := summarize([]store.SessionSummary{{TotalScore: 6}, {TotalScore: 7.5}, {TotalScore: 9}})
	if p.Count != 3 || p.Average != 7.5 || p.Best != 9 {
		t.Errorf("progress = %+v", p)
	}
	if p := summarize(nil); p.Count != 0 || p.Average != 0 {
		t.Errorf("empty progress = %+v", p)
	}
}

func TestHomeScreen_ProgressLine(t *testing.T) {
	h := newHome([]store.SessionSummary{{TotalScore: 6}, {TotalScore: 8}})
	h.Update(h.Init()())
	view := h.View(120, 30)
	if !strings.Contains(view, "2 interviews") || !strings.Contains(view, "best 8.0") {
		t.Errorf("view missing progress line:\n%s", view)
	}
}

func TestHomeScreen_StartInterview(t *testing.T) {
	h := newHome(nil)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Mock Interview" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
}

func TestHomeScreen_History(t *testing.T) {
	h := newHome(nil)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "History" {
		t.Fatalf("expected history screen, got %#v", push)
	}
}
