package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/montanaflynn/stats"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/screens/history"
	"github.com/abhisek/mockprep/internal/screens/interview"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

const bannerArt = `
 ███╗   ███╗ ██████╗  ██████╗██╗  ██╗██████╗ ██████╗ ███████╗██████╗
 ████╗ ████║██╔═══██╗██╔════╝██║ ██╔╝██╔══██╗██╔══██╗██╔════╝██╔══██╗
 ██╔████╔██║██║   ██║██║     █████╔╝ ██████╔╝██████╔╝█████╗  ██████╔╝
 ██║╚██╔╝██║██║   ██║██║     ██╔═██╗ ██╔═══╝ ██╔══██╗██╔══╝  ██╔═══╝
 ██║ ╚═╝ ██║╚██████╔╝╚██████╗██║  ██╗██║     ██║  ██║███████╗██║
 ╚═╝     ╚═╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝`

const bannerCompact = "M O C K P R E P"

// renderBanner uses the compact fallback below 72 columns.
func renderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < 72 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

// Deps wires the home menu to the rest of the application.
type Deps struct {
	Owner        identity.Identity
	NewInterview func() *session.Interview
	Sessions     store.Repository
	Users        history.UserSyncer
}

// progress aggregates past scores for the stats line.
type progress struct {
	Count   int
	Average float64
	Best    float64
}

type progressLoadedMsg struct {
	Progress progress
	Err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps     Deps
	menu     components.Menu
	progress *progress
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "START INTERVIEW", Description: "Answer AI-generated questions for a role", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: interview.New(deps.NewInterview())}
			}
		}},
		{Label: "HISTORY", Description: "Review past interviews", Disabled: deps.Sessions == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Sessions, deps.Users, deps.Owner)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	return &HomeScreen{deps: deps, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Sessions == nil || h.deps.Users == nil {
		return nil
	}
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		userID, err := deps.Users.SyncUser(ctx, deps.Owner)
		if err != nil {
			return progressLoadedMsg{Err: err}
		}
		list, err := deps.Sessions.ListSessions(ctx, userID)
		if err != nil {
			return progressLoadedMsg{Err: err}
		}
		return progressLoadedMsg{Progress: summarize(list)}
	}
}

func summarize(list []store.SessionSummary) progress {
	p := progress{Count: len(list)}
	if len(list) == 0 {
		return p
	}
	scores := make(stats.Float64Data, len(list))
	for i, s := range list {
		scores[i] = s.TotalScore
	}
	p.Average, _ = scores.Mean()
	p.Average, _ = stats.Round(p.Average, 1)
	p.Best, _ = scores.Max()
	return p
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		if msg.Err == nil {
			h.progress = &msg.Progress
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string
	sections = append(sections, renderBanner(width))
	sections = append(sections, theme.Subtitle.Render("Practice interviews with instant feedback"))

	if p := h.progress; p != nil {
		line := "No interviews yet"
		if p.Count > 0 {
			line = fmt.Sprintf("%d interviews  ·  average %.1f  ·  best %.1f", p.Count, p.Average, p.Best)
		}
		sections = append(sections, theme.Hint.Render(line))
	}

	sections = append(sections, theme.Card.Render(strings.TrimRight(h.menu.View(), "\n")))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
