package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/mockprep/internal/store"
)

func ptr[T any](v T) *T { return &v }

func sampleSession() *store.Session {
	return &store.Session{
		ID:         "sess-1",
		UserID:     "u1",
		JobRole:    "Backend Engineer",
		TotalScore: 7.5,
		Overall:    []byte(`{"averageScore": 7.5, "generalFeedback": "Strong fundamentals.", "keyStrengths": ["clarity"], "developmentAreas": ["metrics"]}`),
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Responses: []store.QuestionResponse{
			{
				QuestionID: "q1", Position: 0, Question: "Design a rate limiter.",
				Answer: "Token bucket <script>alert(1)</script>", Score: ptr(9.0), Feedback: ptr("Well reasoned."),
				Strengths: []string{"trade-offs"}, AreasToImprove: []string{},
			},
			{
				QuestionID: "q2", Position: 1, Question: "Describe a failure.",
				Answer: "I once dropped a table.", Strengths: []string{}, AreasToImprove: []string{},
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(sampleSession()))
	for _, want := range []string{
		"# Mock interview: Backend Engineer",
		"**Overall score: 7.5 / 10** (fair)",
		"Strong fundamentals.",
		"### Key strengths",
		"- clarity",
		"## Question 1",
		"> Design a rate limiter.",
		"**Score:** 9.0 / 10 (good)",
		"- trade-offs",
		"## Question 2",
		"**Score:** not scored",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "### Areas to improve") {
		t.Error("empty lists should be omitted")
	}
}

func TestMarkdown_NoOverall(t *testing.T) {
	s := sampleSession()
	s.Overall = nil
	if Overall(s) != nil {
		t.Error("expected nil overall")
	}
	if md := string(Markdown(s)); strings.Contains(md, "Key strengths") {
		t.Error("unexpected overall section")
	}
}

func TestHTML(t *testing.T) {
	out := string(HTML(sampleSession()))
	for _, want := range []string{"<html", "<title>Mock interview: Backend Engineer</title>", "<h1", "<blockquote>"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("raw html must be skipped")
	}
}

func TestWriteWorkbook(t *testing.T) {
	s := sampleSession()
	summaries := []store.SessionSummary{
		{ID: s.ID, JobRole: s.JobRole, TotalScore: s.TotalScore, QuestionCount: 2, CreatedAt: s.CreatedAt},
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, summaries, []*store.Session{s}); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sessionsSheet)
	if err != nil {
		t.Fatalf("sessions rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][2] != "Backend Engineer" || rows[1][3] != "2" || rows[1][4] != "7.5" || rows[1][5] != "fair" {
		t.Errorf("unexpected session row %v", rows[1])
	}

	rows, err = f.GetRows(responsesSheet)
	if err != nil {
		t.Fatalf("responses rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "1" || rows[1][4] != "9" || rows[1][6] != "trade-offs" {
		t.Errorf("unexpected response row %v", rows[1])
	}
	if len(rows[2]) > 4 && rows[2][4] != "" {
		t.Errorf("unscored response should have an empty score, got %q", rows[2][4])
	}
}
