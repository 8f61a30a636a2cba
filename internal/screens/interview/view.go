package interview

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/screens/summary"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

func (s *InterviewScreen) View(width, height int) string {
	s.height = height
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}

	st := s.iv.State()
	switch {
	case st.Loading:
		return s.renderBusy(width, "Generating interview questions for "+st.JobRole+"...")
	case st.ScoringLoading && st.SavingToDB:
		return s.renderBusy(width, "Saving your results...")
	case st.ScoringLoading:
		return s.renderBusy(width, "Scoring your answers...")
	}

	switch st.Step {
	case session.StepQuestions:
		return s.renderQuestion(st, width)
	case session.StepSummary:
		content := summary.Render(summary.FromState(st), width)
		s.resultLines = strings.Count(content, "\n") + 1
		return s.results.View(content, height)
	default:
		return s.renderRole(st, width)
	}
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

func (s *InterviewScreen) renderRole(st session.State, width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centered(width).Inherit(theme.Title).Render("What role are you interviewing for?"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.role.View()))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Inherit(theme.Hint).
		Render("We will generate a short set of technical, behavioral and situational questions."))
	if st.Error != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Inherit(theme.ErrorText).Render(st.Error))
	}
	return b.String()
}

func (s *InterviewScreen) renderQuestion(st session.State, width int) string {
	q, ok := st.CurrentQuestion()
	if !ok {
		return ""
	}

	answered := make([]bool, len(st.Questions))
	for i, qq := range st.Questions {
		answered[i] = strings.TrimSpace(st.Answers[qq.ID]) != ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.QuestionProgress{Current: st.CurrentQuestionIndex, Answered: answered}.View()))
	b.WriteString("\n\n")

	inner := min(width-8, 90)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Render(layout.Wrap(q.Text, inner))))
	b.WriteString("\n\n")

	s.answer.Resize(inner, 6)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Render(s.answer.View())))
	b.WriteString("\n")

	switch {
	case st.Error != "":
		b.WriteString("\n")
		b.WriteString(centered(width).Inherit(theme.ErrorText).Render(st.Error))
	case st.InterviewComplete:
		b.WriteString("\n")
		b.WriteString(centered(width).Inherit(theme.Hint).
			Render("That was the last question. Press Ctrl+S to submit all answers for feedback."))
	}
	return b.String()
}

func (s *InterviewScreen) renderBusy(width int, label string) string {
	return "\n\n\n" + centered(width).Foreground(theme.TextDim).
		Render(s.spinner.View()+" "+label)
}

func renderQuitConfirm(width int) string {
	return "\n\n\n" + centered(width).Foreground(theme.Accent).Bold(true).
		Render("Leave this interview? Your answers will be discarded.") +
		"\n\n" + centered(width).Inherit(theme.Hint).Render("Y to leave, N to keep going")
}
