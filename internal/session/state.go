package session

import (
	"maps"
	"slices"
	"strings"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/questions"
)

// Step is a stage of the interview. Steps only move forward:
// role -> questions -> summary.
type Step string

const (
	StepRole      Step = "role"
	StepQuestions Step = "questions"
	StepSummary   Step = "summary"
)

// State is a snapshot of an interview.
type State struct {
	Step                 Step                `json:"currentStep"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	JobRole              string              `json:"jobRole"`
	Questions            []questions.Question `json:"questions"`
	Answers              map[string]string   `json:"answers"`
	Scores               feedback.Scores     `json:"scores"`
	TotalScore           float64             `json:"totalScore"`

	// Loading is set while questions are being generated.
	Loading bool `json:"loading"`

	// ScoringLoading is set from the scoring request until the result has
	// been persisted.
	ScoringLoading bool `json:"scoringLoading"`

	SavingToDB bool `json:"savingToDb"`

	// Error is the last message for the candidate. Empty when none.
	Error string `json:"error"`

	// InterviewComplete is set when the cursor is advanced past the last
	// question. Submission still has to be explicit.
	InterviewComplete bool `json:"interviewComplete"`

	SavedSessionID string `json:"savedSessionId,omitempty"`
}

func initialState() State {
	return State{
		Step:      StepRole,
		Questions: []questions.Question{},
		Answers:   map[string]string{},
	}
}

// CurrentQuestion returns the question under the cursor.
func (s State) CurrentQuestion() (questions.Question, bool) {
	if s.Step != StepQuestions || len(s.Questions) == 0 {
		return questions.Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Unanswered counts questions whose trimmed answer is empty.
func (s State) Unanswered() int {
	n := 0
	for _, q := range s.Questions {
		if isBlank(s.Answers[q.ID]) {
			n++
		}
	}
	return n
}

func (s State) clone() State {
	out := s
	out.Questions = slices.Clone(s.Questions)
	out.Answers = maps.Clone(s.Answers)
	if s.Scores.Questions != nil {
		out.Scores.Questions = maps.Clone(s.Scores.Questions)
	}
	if s.Scores.Overall != nil {
		o := *s.Scores.Overall
		out.Scores.Overall = &o
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
