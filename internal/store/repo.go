package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/mockprep/internal/identity"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match when set
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// User is a locally stored user, keyed by the external identity id.
type User struct {
	ID         string
	ExternalID string
	Name       string
	Email      string
	CreatedAt  time.Time
}

// NewSession is the input for creating a completed interview session.
type NewSession struct {
	UserID     string
	JobRole    string
	TotalScore float64

	// Overall is the provider's overall summary as JSON; nil when absent.
	Overall json.RawMessage

	// Responses are stored in slice order.
	Responses []NewQuestionResponse
}

// NewQuestionResponse is one answered question within a NewSession.
type NewQuestionResponse struct {
	QuestionID     string
	Question       string
	Answer         string
	Score          *float64
	Feedback       *string
	Strengths      []string
	AreasToImprove []string
}

// Session is a stored interview session with its responses.
type Session struct {
	ID         string             `json:"id"`
	UserID     string             `json:"userId"`
	JobRole    string             `json:"jobRole"`
	TotalScore float64            `json:"totalScore"`
	Overall    json.RawMessage    `json:"overall,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	Responses  []QuestionResponse `json:"questionResponses"`
}

// QuestionResponse is a stored question/answer pair with its feedback.
type QuestionResponse struct {
	ID             string   `json:"id"`
	QuestionID     string   `json:"questionId"`
	Position       int      `json:"position"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Score          *float64 `json:"score"`
	Feedback       *string  `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areasToImprove"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID            string    `json:"id"`
	JobRole       string    `json:"jobRole"`
	TotalScore    float64   `json:"totalScore"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Repository is the persistence boundary for users and interview sessions.
type Repository interface {
	// FindOrCreateUser returns the local user id for the identity, creating
	// the user on first sight. Concurrent calls for the same external id
	// resolve to the same user.
	FindOrCreateUser(ctx context.Context, id identity.Identity) (string, error)

	// CreateSession atomically inserts a session and all of its responses.
	CreateSession(ctx context.Context, s NewSession) (string, error)

	// ListSessions returns the user's sessions, newest first.
	ListSessions(ctx context.Context, userID string) ([]SessionSummary, error)

	// GetSession returns a session with its responses in question order,
	// or ErrNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	LLMRequestEventData
	ID        int
	Timestamp time.Time
}

// LLMUsageStat aggregates LLM usage per purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventQuerier reads back recorded LLM events.
type EventQuerier interface {
	EventRepo
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
