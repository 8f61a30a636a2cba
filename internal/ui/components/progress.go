package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/ui/theme"
)

// QuestionProgress shows one marker per question: the cursor, answered
// questions and the remaining ones.
type QuestionProgress struct {
	Current  int
	Answered []bool
}

// View renders the markers followed by "Question n of m".
func (p QuestionProgress) View() string {
	var b strings.Builder
	for i, done := range p.Answered {
		var style lipgloss.Style
		marker := "○"
		switch {
		case i == p.Current:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
			marker = "◉"
		case done:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
			marker = "●"
		default:
			style = lipgloss.NewStyle().Foreground(theme.Border)
		}
		b.WriteString(style.Render(marker))
		b.WriteString(" ")
	}
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf(" Question %d of %d", p.Current+1, len(p.Answered))))
	return b.String()
}

// ScoreBar renders a 0-10 score as a coloured bar of the given width.
func ScoreBar(score float64, width int) string {
	width = max(width, 4)
	filled := min(max(int(float64(width)*score/10), 0), width)
	return lipgloss.NewStyle().Background(theme.ScoreColor(score)).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width-filled))
}
