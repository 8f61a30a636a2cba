package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/mockprep/internal/identity"
)

// sqliteRepo implements Repository over the SQLite tables.
type sqliteRepo struct {
	db *sql.DB
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *sqliteRepo) FindOrCreateUser(ctx context.Context, id identity.Identity) (string, error) {
	if !id.Valid() {
		return "", identity.ErrMissing
	}

	insert, args := builder().
		Insert(usersTable).
		Columns("id", "external_id", "name", "email", "created_at").
		Values(uuid.NewString(), id.ExternalID, id.DisplayName, id.Email, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("external_id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.ExecContext(ctx, insert, args...); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}

	b := builder()
	query, args := b.Select("id").
		From(b.Table(usersTable)).
		Where(entsql.EQ("external_id", id.ExternalID)).
		Query()

	var userID string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&userID); err != nil {
		return "", fmt.Errorf("select user: %w", err)
	}
	return userID, nil
}

func (r *sqliteRepo) CreateSession(ctx context.Context, s NewSession) (string, error) {
	sessionID := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var overall any
	if len(s.Overall) > 0 {
		overall = string(s.Overall)
	}

	query, args := builder().
		Insert(sessionsTable).
		Columns("id", "job_role", "total_score", "overall", "created_at", "user_id").
		Values(sessionID, s.JobRole, s.TotalScore, overall, time.Now().UTC(), s.UserID).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	if len(s.Responses) > 0 {
		ins := builder().
			Insert(responsesTable).
			Columns("id", "question_id", "position", "question", "answer", "score",
				"feedback", "strengths", "areas_to_improve", "session_id")
		for i, qr := range s.Responses {
			strengths, err := encodeList(qr.Strengths)
			if err != nil {
				return "", err
			}
			areas, err := encodeList(qr.AreasToImprove)
			if err != nil {
				return "", err
			}
			ins = ins.Values(uuid.NewString(), qr.QuestionID, i, qr.Question, qr.Answer,
				nullableFloat(qr.Score), nullableString(qr.Feedback), strengths, areas, sessionID)
		}
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return "", fmt.Errorf("insert question responses: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit session: %w", err)
	}
	return sessionID, nil
}

func (r *sqliteRepo) ListSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	b := builder()
	query, args := b.Select("id", "job_role", "total_score", "created_at").
		From(b.Table(sessionsTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("rowid")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.JobRole, &s.TotalScore, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	counts, err := r.responseCounts(ctx, summaries)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].QuestionCount = counts[summaries[i].ID]
	}
	return summaries, nil
}

func (r *sqliteRepo) responseCounts(ctx context.Context, summaries []SessionSummary) (map[string]int, error) {
	ids := make([]any, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}

	b := builder()
	query, args := b.Select("session_id", entsql.As(entsql.Count("*"), "n")).
		From(b.Table(responsesTable)).
		Where(entsql.In("session_id", ids...)).
		GroupBy("session_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(summaries))
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan response count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (r *sqliteRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	b := builder()
	query, args := b.Select("id", "user_id", "job_role", "total_score", "overall", "created_at").
		From(b.Table(sessionsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		s       Session
		overall sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.ID, &s.UserID, &s.JobRole, &s.TotalScore, &overall, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if overall.Valid {
		s.Overall = json.RawMessage(overall.String)
	}

	b = builder()
	query, args = b.Select("id", "question_id", "position", "question", "answer", "score",
		"feedback", "strengths", "areas_to_improve").
		From(b.Table(responsesTable)).
		Where(entsql.EQ("session_id", id)).
		OrderBy("position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qr               QuestionResponse
			score            sql.NullFloat64
			feedback         sql.NullString
			strengths, areas string
		)
		if err := rows.Scan(&qr.ID, &qr.QuestionID, &qr.Position, &qr.Question, &qr.Answer,
			&score, &feedback, &strengths, &areas); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if score.Valid {
			qr.Score = &score.Float64
		}
		if feedback.Valid {
			qr.Feedback = &feedback.String
		}
		if qr.Strengths, err = decodeList(strengths); err != nil {
			return nil, err
		}
		if qr.AreasToImprove, err = decodeList(areas); err != nil {
			return nil, err
		}
		s.Responses = append(s.Responses, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
