package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	usersTable            = "users"
	sessionsTable         = "interview_sessions"
	responsesTable        = "question_responses"
	llmRequestEventsTable = "llm_request_events"
)

// textSize marks unbounded text columns.
const textSize int64 = 2147483647

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "external_id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       usersTable,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// InterviewSessionsColumns holds the columns for the "interview_sessions" table.
	InterviewSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "job_role", Type: field.TypeString},
		{Name: "total_score", Type: field.TypeFloat64},
		{Name: "overall", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
	}
	// InterviewSessionsTable holds the schema information for the "interview_sessions" table.
	InterviewSessionsTable = &schema.Table{
		Name:       sessionsTable,
		Columns:    InterviewSessionsColumns,
		PrimaryKey: []*schema.Column{InterviewSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "interview_sessions_users_sessions",
				Columns:    []*schema.Column{InterviewSessionsColumns[5]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "interviewsession_user_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{InterviewSessionsColumns[5], InterviewSessionsColumns[4]},
			},
		},
	}

	// QuestionResponsesColumns holds the columns for the "question_responses" table.
	QuestionResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "question", Type: field.TypeString, Size: textSize},
		{Name: "answer", Type: field.TypeString, Size: textSize},
		{Name: "score", Type: field.TypeFloat64, Nullable: true},
		{Name: "feedback", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "strengths", Type: field.TypeJSON},
		{Name: "areas_to_improve", Type: field.TypeJSON},
		{Name: "session_id", Type: field.TypeString},
	}
	// QuestionResponsesTable holds the schema information for the "question_responses" table.
	QuestionResponsesTable = &schema.Table{
		Name:       responsesTable,
		Columns:    QuestionResponsesColumns,
		PrimaryKey: []*schema.Column{QuestionResponsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "question_responses_interview_sessions_responses",
				Columns:    []*schema.Column{QuestionResponsesColumns[9]},
				RefColumns: []*schema.Column{InterviewSessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "questionresponse_session_id_position",
				Unique:  true,
				Columns: []*schema.Column{QuestionResponsesColumns[9], QuestionResponsesColumns[2]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: "", Size: textSize},
		{Name: "request_body", Type: field.TypeString, Default: "", Size: textSize},
		{Name: "response_body", Type: field.TypeString, Default: "", Size: textSize},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       llmRequestEventsTable,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		InterviewSessionsTable,
		QuestionResponsesTable,
		LlmRequestEventsTable,
	}
)

func init() {
	InterviewSessionsTable.ForeignKeys[0].RefTable = UsersTable
	QuestionResponsesTable.ForeignKeys[0].RefTable = InterviewSessionsTable
}
