package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/report"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/transcribe"
)

// exportConcurrency bounds parallel session reads during export.
const exportConcurrency = 4

func (s *Server) handleWake(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		if err := s.deps.Pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("wake: storage unavailable", "error", err)
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func owner(r *http.Request) identity.Identity {
	id, _ := identity.FromContext(r.Context())
	return id
}

// withInterview resolves the {id} route param for the caller, answering 404
// when it is unknown or owned by someone else.
func (s *Server) withInterview(fn func(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		iv, ok := s.interview(id, owner(r))
		if !ok {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		fn(w, r, id, iv)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return &session.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JobRole string `json:"jobRole"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}

	id, iv, err := s.newInterview(owner(r))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.logger.Info("interview created", "interview_id", id, "user", iv.Owner().ExternalID)
	if body.JobRole != "" {
		if err := iv.SetJobRole(body.JobRole); err != nil {
			writeInterview(w, id, iv, http.StatusCreated, err)
			return
		}
	}
	writeInterview(w, id, iv, http.StatusCreated, nil)
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	writeInterview(w, id, iv, http.StatusOK, nil)
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request) {
	iv, ok := s.removeInterview(chi.URLParam(r, "id"), owner(r))
	if !ok {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}
	iv.ResetInterview()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	var body struct {
		JobRole string `json:"jobRole"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeInterview(w, id, iv, 0, err)
		return
	}
	writeInterview(w, id, iv, http.StatusOK, iv.SetJobRole(body.JobRole))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	writeInterview(w, id, iv, http.StatusOK, iv.StartInterview(r.Context()))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	var body struct {
		Answer string `json:"answer"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeInterview(w, id, iv, 0, err)
		return
	}
	err := iv.HandleAnswerChange(chi.URLParam(r, "questionID"), body.Answer)
	writeInterview(w, id, iv, http.StatusOK, err)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	writeInterview(w, id, iv, http.StatusOK, iv.NextQuestion())
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	writeInterview(w, id, iv, http.StatusOK, iv.PreviousQuestion())
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	writeInterview(w, id, iv, http.StatusOK, iv.ScoreAllAnswers(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	iv.ResetInterview()
	writeInterview(w, id, iv, http.StatusOK, nil)
}

// handleTranscribe turns the multipart "audio" field into text and stores it
// as the answer to the "questionId" field, or the current question.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request, id string, iv *session.Interview) {
	if s.deps.Transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeInterview(w, id, iv, 0, &session.ValidationError{Message: "missing audio upload"})
		return
	}
	defer file.Close()

	text, err := s.deps.Transcriber.Transcribe(r.Context(), transcribe.Audio{Name: header.Filename, Data: file})
	switch {
	case errors.Is(err, transcribe.ErrEmptyAudio), errors.Is(err, transcribe.ErrNoSpeech):
		writeInterview(w, id, iv, 0, &session.ValidationError{Message: err.Error()})
		return
	case err != nil:
		s.logger.Error("transcription failed", "interview_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	if qid := r.FormValue("questionId"); qid != "" {
		err = iv.HandleAnswerChange(qid, text)
	} else {
		err = iv.AnswerCurrent(text)
	}

	body := interviewBody{ID: id, State: iv.State(), Transcript: text}
	status := http.StatusOK
	if err != nil {
		body.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, body)
}

// userID resolves the caller to the local user id.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.deps.Users.SyncUser(r.Context(), owner(r))
	if err != nil {
		s.logger.Error("sync user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return "", false
	}
	return userID, true
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	list, err := s.deps.Sessions.ListSessions(r.Context(), userID)
	if err != nil {
		s.logger.Error("list sessions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if list == nil {
		list = []store.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ownedSession loads {id} and hides sessions that belong to other users.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	userID, ok := s.userID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := s.deps.Sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && sess.UserID != userID) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.ownedSession(w, r); ok {
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(sess))
}

func (s *Server) handleExportSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	list, err := s.deps.Sessions.ListSessions(ctx, userID)
	if err != nil {
		s.logger.Error("export: list sessions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	details := make([]*store.Session, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, sum := range list {
		g.Go(func() error {
			sess, err := s.deps.Sessions.GetSession(gctx, sum.ID)
			if err != nil {
				return fmt.Errorf("load session %s: %w", sum.ID, err)
			}
			details[i] = sess
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("export: load sessions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, list, details); err != nil {
		s.logger.Error("export: write workbook failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	name := fmt.Sprintf("mockprep-sessions-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
