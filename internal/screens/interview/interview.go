// Package interview is the terminal screen that walks a candidate through
// one mock interview: job role, questions, then scored results.
package interview

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/screens/summary"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

// startDoneMsg is sent when question generation returns.
type startDoneMsg struct {
	Err error
}

// scoreDoneMsg is sent when scoring and saving return.
type scoreDoneMsg struct {
	Err error
}

// InterviewScreen implements screen.Screen for an interview in progress.
type InterviewScreen struct {
	iv          *session.Interview
	role        components.TextInput
	answer      components.TextArea
	answerFor   string
	spinner     spinner.Model
	results     summary.Viewport
	resultLines int
	height      int
	confirmQuit bool
}

var (
	_ screen.Screen          = (*InterviewScreen)(nil)
	_ screen.KeyHintProvider = (*InterviewScreen)(nil)
	_ screen.BackHandler     = (*InterviewScreen)(nil)
)

// New creates the screen around iv.
func New(iv *session.Interview) *InterviewScreen {
	st := iv.State()
	return &InterviewScreen{
		iv:   iv,
		role: components.NewTextInput("e.g. Senior Backend Engineer", st.JobRole, 120, 50),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *InterviewScreen) Init() tea.Cmd {
	return s.role.Init()
}

func (s *InterviewScreen) Title() string {
	return "Mock Interview"
}

// HandlesBack keeps Esc inside the screen so answers are not lost silently.
func (s *InterviewScreen) HandlesBack() bool {
	return true
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave interview"},
			{Key: "N", Description: "Keep going"},
		}
	}
	st := s.iv.State()
	switch {
	case st.Loading || st.ScoringLoading:
		return []layout.KeyHint{{Key: "Esc", Description: "Leave"}}
	case st.Step == session.StepQuestions:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next"},
			{Key: "Shift+Tab", Description: "Previous"},
			{Key: "Ctrl+S", Description: "Submit all"},
			{Key: "Esc", Description: "Leave"},
		}
	case st.Step == session.StepSummary:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "N", Description: "New interview"},
			{Key: "Esc", Description: "Home"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Generate questions"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		st := s.iv.State()
		if !st.Loading && !st.ScoringLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case startDoneMsg:
		if msg.Err == nil {
			return s, s.loadAnswer()
		}
		return s, nil

	case scoreDoneMsg:
		s.results = summary.Viewport{}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			s.iv.ResetInterview()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	st := s.iv.State()
	if st.Loading || st.ScoringLoading {
		if key == "esc" {
			s.confirmQuit = true
		}
		return s, nil
	}

	switch st.Step {
	case session.StepRole:
		switch key {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s, s.start()
		}

	case session.StepQuestions:
		switch key {
		case "esc":
			s.confirmQuit = true
			return s, nil
		case "tab":
			s.saveAnswer()
			s.iv.NextQuestion()
			return s, s.loadAnswer()
		case "shift+tab":
			s.saveAnswer()
			s.iv.PreviousQuestion()
			return s, s.loadAnswer()
		case "ctrl+s":
			s.saveAnswer()
			return s, s.score()
		}

	case session.StepSummary:
		switch key {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N":
			s.iv.ResetInterview()
			s.role = components.NewTextInput("e.g. Senior Backend Engineer", "", 120, 50)
			s.answerFor = ""
			return s, s.role.Init()
		}
		s.results.Update(key, s.resultLines, s.height)
		return s, nil
	}

	return s.forward(msg)
}

// forward passes input to the field of the current step.
func (s *InterviewScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.iv.State().Step {
	case session.StepRole:
		s.role, cmd = s.role.Update(msg)
	case session.StepQuestions:
		s.answer, cmd = s.answer.Update(msg)
		s.saveAnswer()
	}
	return s, cmd
}

func (s *InterviewScreen) start() tea.Cmd {
	if err := s.iv.SetJobRole(s.role.Value()); err != nil {
		return nil
	}
	iv := s.iv
	return tea.Batch(
		func() tea.Msg {
			return startDoneMsg{Err: iv.StartInterview(context.Background())}
		},
		s.spinner.Tick,
	)
}

func (s *InterviewScreen) score() tea.Cmd {
	iv := s.iv
	return tea.Batch(
		func() tea.Msg {
			return scoreDoneMsg{Err: iv.ScoreAllAnswers(context.Background())}
		},
		s.spinner.Tick,
	)
}

func (s *InterviewScreen) saveAnswer() {
	if s.answerFor == "" {
		return
	}
	_ = s.iv.HandleAnswerChange(s.answerFor, s.answer.Value())
}

// loadAnswer points the answer box at the question under the cursor.
func (s *InterviewScreen) loadAnswer() tea.Cmd {
	st := s.iv.State()
	q, ok := st.CurrentQuestion()
	if !ok {
		s.answerFor = ""
		return nil
	}
	s.answerFor = q.ID
	s.answer = components.NewTextArea("Type your answer...", st.Answers[q.ID], 70, 6)
	return s.answer.Init()
}
