// Package postgres implements the session repository on PostgreSQL for
// deployments that serve the HTTP API from more than one process.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/store"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	external_id TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS interview_sessions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	job_role    TEXT NOT NULL,
	total_score DOUBLE PRECISION NOT NULL,
	overall     JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS interview_sessions_user_created
	ON interview_sessions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS question_responses (
	id               TEXT PRIMARY KEY,
	session_id       TEXT NOT NULL REFERENCES interview_sessions(id) ON DELETE CASCADE,
	question_id      TEXT NOT NULL,
	position         INTEGER NOT NULL,
	question         TEXT NOT NULL,
	answer           TEXT NOT NULL,
	score            DOUBLE PRECISION,
	feedback         TEXT,
	strengths        TEXT[] NOT NULL DEFAULT '{}',
	areas_to_improve TEXT[] NOT NULL DEFAULT '{}',
	UNIQUE (session_id, position)
);

CREATE TABLE IF NOT EXISTS llm_request_events (
	id            BIGSERIAL PRIMARY KEY,
	timestamp     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	latency_ms    BIGINT NOT NULL,
	success       BOOLEAN NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	request_body  TEXT NOT NULL DEFAULT '',
	response_body TEXT NOT NULL DEFAULT ''
);
`

// Repository implements store.Repository and store.EventRepo on PostgreSQL.
type Repository struct {
	db *sqlx.DB
}

// Open connects to url, verifies the connection and ensures the schema.
func Open(ctx context.Context, url string) (*Repository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r := New(db)
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

type userRow struct {
	ID         string    `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	CreatedAt  time.Time `db:"created_at"`
}

// FindOrCreateUser looks the user up by external id and inserts it when
// missing. A concurrent insert that wins the unique constraint is resolved
// by reading the winner's row.
func (r *Repository) FindOrCreateUser(ctx context.Context, id identity.Identity) (string, error) {
	if !id.Valid() {
		return "", identity.ErrMissing
	}

	userID, err := r.userIDByExternal(ctx, id.ExternalID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("select user: %w", err)
	}

	row := userRow{
		ID:         uuid.NewString(),
		ExternalID: id.ExternalID,
		Name:       id.DisplayName,
		Email:      id.Email,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, external_id, name, email, created_at)
		VALUES (:id, :external_id, :name, :email, :created_at)
	`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return r.userIDByExternal(ctx, id.ExternalID)
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) userIDByExternal(ctx context.Context, externalID string) (string, error) {
	var userID string
	err := r.db.GetContext(ctx, &userID, `SELECT id FROM users WHERE external_id = $1`, externalID)
	return userID, err
}

// CreateSession inserts the session and its responses in one transaction.
func (r *Repository) CreateSession(ctx context.Context, s store.NewSession) (string, error) {
	sessionID := uuid.NewString()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var overall any
	if len(s.Overall) > 0 {
		overall = string(s.Overall)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interview_sessions (id, user_id, job_role, total_score, overall, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sessionID, s.UserID, s.JobRole, s.TotalScore, overall, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	for i, qr := range s.Responses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO question_responses
				(id, session_id, question_id, position, question, answer, score, feedback, strengths, areas_to_improve)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.NewString(), sessionID, qr.QuestionID, i, qr.Question, qr.Answer,
			qr.Score, qr.Feedback, pq.Array(nonNil(qr.Strengths)), pq.Array(nonNil(qr.AreasToImprove)))
		if err != nil {
			return "", fmt.Errorf("insert question response %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit session: %w", err)
	}
	return sessionID, nil
}

type summaryRow struct {
	ID            string    `db:"id"`
	JobRole       string    `db:"job_role"`
	TotalScore    float64   `db:"total_score"`
	QuestionCount int       `db:"question_count"`
	CreatedAt     time.Time `db:"created_at"`
}

// ListSessions returns the user's sessions, newest first.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]store.SessionSummary, error) {
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.id, s.job_role, s.total_score, s.created_at, COUNT(q.id) AS question_count
		FROM interview_sessions s
		LEFT JOIN question_responses q ON q.session_id = s.id
		WHERE s.user_id = $1
		GROUP BY s.id
		ORDER BY s.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	out := make([]store.SessionSummary, len(rows))
	for i, row := range rows {
		out[i] = store.SessionSummary(row)
	}
	return out, nil
}

type sessionRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	JobRole    string         `db:"job_role"`
	TotalScore float64        `db:"total_score"`
	Overall    sql.NullString `db:"overall"`
	CreatedAt  time.Time      `db:"created_at"`
}

type responseRow struct {
	ID             string          `db:"id"`
	QuestionID     string          `db:"question_id"`
	Position       int             `db:"position"`
	Question       string          `db:"question"`
	Answer         string          `db:"answer"`
	Score          sql.NullFloat64 `db:"score"`
	Feedback       sql.NullString  `db:"feedback"`
	Strengths      pq.StringArray  `db:"strengths"`
	AreasToImprove pq.StringArray  `db:"areas_to_improve"`
}

// GetSession returns a session with its responses, or store.ErrNotFound.
func (r *Repository) GetSession(ctx context.Context, id string) (*store.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, job_role, total_score, overall::text AS overall, created_at
		FROM interview_sessions WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var responses []responseRow
	err = r.db.SelectContext(ctx, &responses, `
		SELECT id, question_id, position, question, answer, score, feedback, strengths, areas_to_improve
		FROM question_responses WHERE session_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}

	s := &store.Session{
		ID:         row.ID,
		UserID:     row.UserID,
		JobRole:    row.JobRole,
		TotalScore: row.TotalScore,
		CreatedAt:  row.CreatedAt,
	}
	if row.Overall.Valid {
		s.Overall = json.RawMessage(row.Overall.String)
	}
	for _, rr := range responses {
		qr := store.QuestionResponse{
			ID:             rr.ID,
			QuestionID:     rr.QuestionID,
			Position:       rr.Position,
			Question:       rr.Question,
			Answer:         rr.Answer,
			Strengths:      nonNil(rr.Strengths),
			AreasToImprove: nonNil(rr.AreasToImprove),
		}
		if rr.Score.Valid {
			qr.Score = &rr.Score.Float64
		}
		if rr.Feedback.Valid {
			qr.Feedback = &rr.Feedback.String
		}
		s.Responses = append(s.Responses, qr)
	}
	return s, nil
}

// AppendLLMRequest records an LLM request event.
func (r *Repository) AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_request_events
			(provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var (
	_ store.Repository = (*Repository)(nil)
	_ store.EventRepo  = (*Repository)(nil)
)
