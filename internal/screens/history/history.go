package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/screens/summary"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

// UserSyncer resolves the signed-in identity to the local user id.
type UserSyncer interface {
	SyncUser(ctx context.Context, id identity.Identity) (string, error)
}

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type sessionLoadedMsg struct {
	Session *store.Session
	Err     error
}

// HistoryScreen lists the candidate's past interviews.
type HistoryScreen struct {
	repo     store.Repository
	users    UserSyncer
	owner    identity.Identity
	sessions []store.SessionSummary
	selected int
	loaded   bool
	opening  bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.Repository, users UserSyncer, owner identity.Identity) *HistoryScreen {
	return &HistoryScreen{repo: repo, users: users, owner: owner}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, users, owner := s.repo, s.users, s.owner
	return func() tea.Msg {
		ctx := context.Background()
		userID, err := users.SyncUser(ctx, owner)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		sessions, err := repo.ListSessions(ctx, userID)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case sessionLoadedMsg:
		s.opening = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(summary.FromSession(msg.Session))}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.opening || s.selected >= len(s.sessions) {
				return s, nil
			}
			s.opening = true
			s.errMsg = ""
			repo, id := s.repo, s.sessions[s.selected].ID
			return s, func() tea.Msg {
				sess, err := repo.GetSession(context.Background(), id)
				return sessionLoadedMsg{Session: sess, Err: err}
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if s.errMsg != "" && len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No interviews yet. Start one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	// Keep the selection visible on short terminals.
	rows := max(height-4, 1)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(s.sessions))

	for i := start; i < end; i++ {
		sess := s.sessions[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		role := sess.JobRole
		if r := []rune(role); len(r) > 32 {
			role = string(r[:31]) + "…"
		}
		line := fmt.Sprintf("%s%s  %-32s  %2d questions  ",
			prefix, sess.CreatedAt.Local().Format("Jan 02, 2006 15:04"), role, sess.QuestionCount)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		score := lipgloss.NewStyle().Foreground(theme.ScoreColor(sess.TotalScore)).Bold(true).
			Render(fmt.Sprintf("%4.1f", sess.TotalScore))
		band := theme.Hint.Render(" " + string(feedback.BandFor(sess.TotalScore)))

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)+score+" "+components.ScoreBar(sess.TotalScore, 10)+band))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}
