package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
)

var newID = uuid.NewString

type errorBody struct {
	Error string `json:"error"`
}

type interviewBody struct {
	ID         string        `json:"id"`
	State      session.State `json:"state"`
	Error      string        `json:"error,omitempty"`
	Transcript string        `json:"transcript,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps interview and storage errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verr   *session.ValidationError
		genErr *questions.GenerationError
		fbErr  *feedback.FeedbackError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrWrongStep), errors.Is(err, session.ErrReset):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownQuestion), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &genErr), errors.As(err, &fbErr):
		return http.StatusBadGateway
	case errors.Is(err, ErrTooManyInterviews):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeInterview writes the current state, with err when the operation
// failed.
func writeInterview(w http.ResponseWriter, id string, iv *session.Interview, status int, err error) {
	body := interviewBody{ID: id, State: iv.State()}
	if err != nil {
		body.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, body)
}
