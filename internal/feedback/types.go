package feedback

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/mockprep/internal/questions"
)

// ScoreEntry is the model's assessment of one answer.
type ScoreEntry struct {
	// Score is on a 0-10 scale. Nil when the model left the answer unscored.
	Score          *float64 `json:"score"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
}

// Overall is the model's summary of the whole interview.
type Overall struct {
	// AverageScore is the model's own aggregate, when it offers one.
	AverageScore     *float64 `json:"averageScore,omitempty"`
	GeneralFeedback  string   `json:"generalFeedback"`
	KeyStrengths     []string `json:"keyStrengths"`
	DevelopmentAreas []string `json:"developmentAreas"`
}

// Scores maps question ids to their entries plus the optional overall
// summary. It serializes as one flat object with the summary under the
// reserved "overall" key.
type Scores struct {
	Questions map[string]ScoreEntry
	Overall   *Overall
}

// Entry returns the entry for a question id.
func (s Scores) Entry(id string) (ScoreEntry, bool) {
	e, ok := s.Questions[id]
	return e, ok
}

// Empty reports whether nothing has been scored.
func (s Scores) Empty() bool {
	return len(s.Questions) == 0 && s.Overall == nil
}

func (s Scores) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Questions)+1)
	for id, e := range s.Questions {
		flat[id] = e
	}
	if s.Overall != nil {
		flat[questions.ReservedID] = s.Overall
	}
	return json.Marshal(flat)
}

func (s *Scores) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	out := Scores{Questions: make(map[string]ScoreEntry, len(flat))}
	for id, raw := range flat {
		if id == questions.ReservedID {
			var o Overall
			if err := json.Unmarshal(raw, &o); err != nil {
				return fmt.Errorf("decode overall: %w", err)
			}
			out.Overall = &o
			continue
		}
		var e ScoreEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("decode score %q: %w", id, err)
		}
		out.Questions[id] = e
	}
	*s = out
	return nil
}

// FeedbackError is returned for any failure to obtain usable feedback.
type FeedbackError struct {
	Err error
}

// Error returns the underlying message unchanged.
func (e *FeedbackError) Error() string {
	return e.Err.Error()
}

func (e *FeedbackError) Unwrap() error { return e.Err }
