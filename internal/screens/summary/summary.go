// Package summary renders scored interview results, both for an interview
// that just finished and for a stored session.
package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/report"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

// Item is one question with its answer and feedback.
type Item struct {
	Question       string
	Answer         string
	Score          *float64
	Feedback       string
	Strengths      []string
	AreasToImprove []string
}

// Report is everything the results view shows.
type Report struct {
	JobRole    string
	TotalScore float64
	Overall    *feedback.Overall
	Items      []Item

	// Notice is shown under the score, e.g. a failed save.
	Notice string
}

// FromState builds a report from an interview in the summary step.
func FromState(st session.State) Report {
	r := Report{
		JobRole:    st.JobRole,
		TotalScore: st.TotalScore,
		Overall:    st.Scores.Overall,
		Notice:     st.Error,
	}
	for _, q := range st.Questions {
		it := Item{Question: q.Text, Answer: st.Answers[q.ID]}
		if e, ok := st.Scores.Entry(q.ID); ok {
			it.Score = e.Score
			it.Feedback = e.Feedback
			it.Strengths = e.Strengths
			it.AreasToImprove = e.AreasToImprove
		}
		r.Items = append(r.Items, it)
	}
	return r
}

// FromSession builds a report from a stored session.
func FromSession(s *store.Session) Report {
	r := Report{
		JobRole:    s.JobRole,
		TotalScore: s.TotalScore,
		Overall:    report.Overall(s),
	}
	for _, qr := range s.Responses {
		it := Item{
			Question:       qr.Question,
			Answer:         qr.Answer,
			Score:          qr.Score,
			Strengths:      qr.Strengths,
			AreasToImprove: qr.AreasToImprove,
		}
		if qr.Feedback != nil {
			it.Feedback = *qr.Feedback
		}
		r.Items = append(r.Items, it)
	}
	return r
}

// Render lays the report out at the given width.
func Render(r Report, width int) string {
	inner := max(width-6, 20)
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Foreground(theme.Primary).Bold(true).
		Render("Interview results: " + r.JobRole))
	b.WriteString("\n\n")

	band := feedback.BandFor(r.TotalScore)
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Foreground(theme.ScoreColor(r.TotalScore)).Bold(true).
		Render(fmt.Sprintf("Overall score %.1f / 10 (%s)", r.TotalScore, band)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.ScoreBar(r.TotalScore, 30)))
	b.WriteString("\n")

	if r.Notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render(r.Notice))
		b.WriteString("\n")
	}

	if o := r.Overall; o != nil {
		if o.GeneralFeedback != "" {
			b.WriteString("\n")
			b.WriteString(indent(layout.Wrap(o.GeneralFeedback, inner)))
			b.WriteString("\n")
		}
		writeList(&b, "Key strengths", o.KeyStrengths, theme.Success, inner)
		writeList(&b, "Development areas", o.DevelopmentAreas, theme.Accent, inner)
	}

	for i, it := range r.Items {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
		b.WriteString("\n")
		b.WriteString(indent(theme.Heading.Render(fmt.Sprintf("Question %d", i+1))))
		if it.Score != nil {
			b.WriteString("  ")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ScoreColor(*it.Score)).Bold(true).
				Render(fmt.Sprintf("%g / 10", *it.Score)))
		} else {
			b.WriteString("  " + theme.Hint.Render("not scored"))
		}
		b.WriteString("\n")
		b.WriteString(indent(layout.Wrap(theme.Body.Bold(true).Render(it.Question), inner)))
		b.WriteString("\n")
		b.WriteString(indent(layout.Wrap(theme.Hint.Render(it.Answer), inner)))
		b.WriteString("\n")
		if it.Feedback != "" {
			b.WriteString("\n")
			b.WriteString(indent(layout.Wrap(it.Feedback, inner)))
			b.WriteString("\n")
		}
		writeList(&b, "Strengths", it.Strengths, theme.Success, inner)
		writeList(&b, "Areas to improve", it.AreasToImprove, theme.Accent, inner)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string, c color.Color, width int) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(indent(lipgloss.NewStyle().Bold(true).Foreground(c).Render(title)))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(indent(layout.Wrap("• "+item, width)))
		b.WriteString("\n")
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// Viewport scrolls rendered content by whole lines.
type Viewport struct {
	Offset int
}

// Update handles scroll keys and reports whether the key was consumed.
func (v *Viewport) Update(key string, lines, height int) bool {
	maxOffset := max(lines-height, 0)
	switch key {
	case "up", "k":
		v.Offset--
	case "down", "j":
		v.Offset++
	case "pgup":
		v.Offset -= height
	case "pgdown", "space":
		v.Offset += height
	case "home", "g":
		v.Offset = 0
	case "end", "G":
		v.Offset = maxOffset
	default:
		return false
	}
	v.Offset = min(max(v.Offset, 0), maxOffset)
	return true
}

// View returns the visible window of content.
func (v Viewport) View(content string, height int) string {
	lines := strings.Split(content, "\n")
	start := min(v.Offset, max(len(lines)-1, 0))
	end := min(start+height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

// SummaryScreen shows a report full screen.
type SummaryScreen struct {
	report   Report
	viewport Viewport
	height   int
	lines    int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(r Report) *SummaryScreen {
	return &SummaryScreen{report: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Interview Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		switch key {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.viewport.Update(key, s.lines, s.height)
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	content := Render(s.report, width)
	s.height = height
	s.lines = strings.Count(content, "\n") + 1
	return s.viewport.View(content, height)
}
