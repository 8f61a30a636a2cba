package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a generation or scoring request is already
	// in flight for the interview.
	ErrBusy = errors.New("interview is busy with another request")

	// ErrWrongStep is returned when an operation is not valid for the
	// current step.
	ErrWrongStep = errors.New("operation not allowed at this step")

	// ErrUnknownQuestion is returned for an answer to a question id that is
	// not part of the interview.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrReset is returned when the interview was reset while a request was
	// in flight. The late result is discarded.
	ErrReset = errors.New("interview was reset")
)

// ValidationError is a guard failure reported to the candidate before any
// network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const errBlankRole = "Please enter a job role"

func unansweredError(n int) *ValidationError {
	noun := "questions"
	if n == 1 {
		noun = "question"
	}
	return &ValidationError{
		Message: fmt.Sprintf("Please answer all questions before submitting. You have %d unanswered %s.", n, noun),
	}
}
