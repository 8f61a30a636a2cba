// Package session runs one mock interview: it collects the job role, drives
// question generation, gathers answers, requests batched scoring and hands
// the scored result to persistence.
package session

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/questions"
)

// DefaultCallTimeout bounds each generation, scoring and save call.
const DefaultCallTimeout = 90 * time.Second

// Result is a scored interview ready to be stored.
type Result struct {
	JobRole   string
	Questions []questions.Question
	Answers   map[string]string
	Scores    feedback.Scores
}

// Persister stores a scored interview for its owner and returns the stored
// session id.
type Persister interface {
	Persist(ctx context.Context, owner identity.Identity, r Result) (string, error)
}

// Config tunes an Interview.
type Config struct {
	// CallTimeout bounds every outbound call. Zero selects
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

// Deps are the collaborators of an Interview. Persister may be nil, in
// which case scored interviews are not stored.
type Deps struct {
	Generator questions.Generator
	Scorer    feedback.Scorer
	Persister Persister
	Logger    *slog.Logger
}

// Interview is the state machine for one interview. It is safe for
// concurrent use. At most one generation or scoring call is in flight at a
// time; network calls run without holding the lock.
type Interview struct {
	mu    sync.Mutex
	state State

	// generation is bumped by ResetInterview so results of calls started
	// before the reset are dropped.
	generation uint64

	owner     identity.Identity
	generator questions.Generator
	scorer    feedback.Scorer
	persister Persister
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates an interview in the role step for owner.
func New(owner identity.Identity, deps Deps, cfg Config) *Interview {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Interview{
		state:     initialState(),
		owner:     owner,
		generator: deps.Generator,
		scorer:    deps.Scorer,
		persister: deps.Persister,
		timeout:   cfg.CallTimeout,
		logger:    logger,
	}
}

// Owner returns the identity the interview belongs to.
func (iv *Interview) Owner() identity.Identity {
	return iv.owner
}

// State returns a copy of the current state.
func (iv *Interview) State() State {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.state.clone()
}

// TotalScore aggregates the current scores.
func (iv *Interview) TotalScore() float64 {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return feedback.TotalScore(iv.state.Questions, iv.state.Scores)
}

// SetJobRole records the role. The role is fixed once the interview starts.
func (iv *Interview) SetJobRole(role string) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.state.Loading {
		return ErrBusy
	}
	if iv.state.Step != StepRole {
		return ErrWrongStep
	}
	iv.state.JobRole = role
	return nil
}

// StartInterview generates the questions for the job role and moves to the
// questions step. A blank role fails with a *ValidationError without calling
// the generator. On generation failure the interview stays in the role step
// with Error set.
func (iv *Interview) StartInterview(ctx context.Context) error {
	iv.mu.Lock()
	if iv.state.Loading || iv.state.ScoringLoading {
		iv.mu.Unlock()
		return ErrBusy
	}
	if iv.state.Step != StepRole {
		iv.mu.Unlock()
		return ErrWrongStep
	}
	role := strings.TrimSpace(iv.state.JobRole)
	if role == "" {
		verr := &ValidationError{Message: errBlankRole}
		iv.state.Error = verr.Message
		iv.mu.Unlock()
		return verr
	}
	iv.state.Error = ""
	iv.state.Loading = true
	gen := iv.generation
	iv.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, iv.timeout)
	qs, err := iv.generator.Generate(callCtx, role)
	cancel()

	iv.mu.Lock()
	defer iv.mu.Unlock()

	if gen != iv.generation {
		return ErrReset
	}
	iv.state.Loading = false

	if err != nil {
		var genErr *questions.GenerationError
		if !errors.As(err, &genErr) {
			genErr = &questions.GenerationError{Err: err}
		}
		iv.logger.Warn("question generation failed", "role", role, "error", genErr)
		iv.state.Error = genErr.Error()
		return genErr
	}

	answers := make(map[string]string, len(qs))
	for _, q := range qs {
		answers[q.ID] = ""
	}
	iv.state.JobRole = role
	iv.state.Questions = qs
	iv.state.Answers = answers
	iv.state.CurrentQuestionIndex = 0
	iv.state.InterviewComplete = false
	iv.state.Step = StepQuestions
	return nil
}

// HandleAnswerChange replaces the answer text for a question. Empty text is
// allowed.
func (iv *Interview) HandleAnswerChange(questionID, text string) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.setAnswer(questionID, text)
}

// AnswerCurrent replaces the answer for the question under the cursor. It
// is the entry point for transcribed audio.
func (iv *Interview) AnswerCurrent(text string) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	q, ok := iv.state.CurrentQuestion()
	if !ok {
		return ErrWrongStep
	}
	return iv.setAnswer(q.ID, text)
}

func (iv *Interview) setAnswer(questionID, text string) error {
	if iv.state.Step != StepQuestions {
		return ErrWrongStep
	}
	if iv.state.ScoringLoading {
		return ErrBusy
	}
	if _, ok := iv.state.Answers[questionID]; !ok {
		return ErrUnknownQuestion
	}
	iv.state.Answers[questionID] = text
	return nil
}

// NextQuestion advances the cursor. Advancing past the last question sets
// InterviewComplete instead of moving.
func (iv *Interview) NextQuestion() error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.state.Step != StepQuestions {
		return ErrWrongStep
	}
	iv.state.Error = ""
	if iv.state.CurrentQuestionIndex < len(iv.state.Questions)-1 {
		iv.state.CurrentQuestionIndex++
	} else {
		iv.state.InterviewComplete = true
	}
	return nil
}

// PreviousQuestion moves the cursor back, stopping at the first question.
func (iv *Interview) PreviousQuestion() error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.state.Step != StepQuestions {
		return ErrWrongStep
	}
	iv.state.Error = ""
	iv.state.InterviewComplete = false
	if iv.state.CurrentQuestionIndex > 0 {
		iv.state.CurrentQuestionIndex--
	}
	return nil
}

// ScoreAllAnswers requests feedback for every answer in one call, then
// persists the result and moves to the summary step. Unanswered questions
// fail with a *ValidationError before any call is made. A scoring failure
// keeps the interview in the questions step. A persistence failure is
// reported in Error but does not prevent the move to summary.
func (iv *Interview) ScoreAllAnswers(ctx context.Context) error {
	iv.mu.Lock()
	if iv.state.Loading || iv.state.ScoringLoading {
		iv.mu.Unlock()
		return ErrBusy
	}
	if iv.state.Step != StepQuestions {
		iv.mu.Unlock()
		return ErrWrongStep
	}
	if n := iv.state.Unanswered(); n > 0 {
		verr := unansweredError(n)
		iv.state.Error = verr.Message
		iv.mu.Unlock()
		return verr
	}
	iv.state.Error = ""
	iv.state.ScoringLoading = true
	gen := iv.generation
	role := iv.state.JobRole
	qs := slices.Clone(iv.state.Questions)
	answers := maps.Clone(iv.state.Answers)
	iv.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, iv.timeout)
	scores, err := iv.scorer.Score(callCtx, role, qs, answers)
	cancel()

	iv.mu.Lock()
	if gen != iv.generation {
		iv.mu.Unlock()
		return ErrReset
	}
	if err != nil {
		var fbErr *feedback.FeedbackError
		if !errors.As(err, &fbErr) {
			fbErr = &feedback.FeedbackError{Err: err}
		}
		iv.logger.Warn("feedback generation failed", "role", role, "error", fbErr)
		iv.state.ScoringLoading = false
		iv.state.Error = fbErr.Error()
		iv.mu.Unlock()
		return fbErr
	}
	iv.state.Scores = scores
	iv.state.TotalScore = feedback.TotalScore(qs, scores)
	iv.state.SavingToDB = iv.persister != nil
	iv.mu.Unlock()

	var (
		sessionID string
		saveErr   error
	)
	if iv.persister != nil {
		saveCtx, cancel := context.WithTimeout(ctx, iv.timeout)
		sessionID, saveErr = iv.persister.Persist(saveCtx, iv.owner, Result{
			JobRole:   role,
			Questions: qs,
			Answers:   answers,
			Scores:    scores,
		})
		cancel()
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()

	if gen != iv.generation {
		return ErrReset
	}
	iv.state.SavingToDB = false
	iv.state.ScoringLoading = false
	if saveErr != nil {
		iv.logger.Error("failed to save interview", "role", role, "error", saveErr)
		iv.state.Error = "Failed to save your interview results: " + saveErr.Error()
	} else {
		iv.state.SavedSessionID = sessionID
	}
	iv.state.Step = StepSummary
	return nil
}

// ResetInterview returns the interview to its initial state. Results of
// calls still in flight are discarded.
func (iv *Interview) ResetInterview() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.generation++
	iv.state = initialState()
}
