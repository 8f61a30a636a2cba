package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/questions"
)

type rawEntry struct {
	ID             json.RawMessage `json:"id"`
	Score          *float64        `json:"score"`
	Feedback       string          `json:"feedback"`
	Strengths      []string        `json:"strengths"`
	AreasToImprove []string        `json:"areas_to_improve"`
}

type rawFeedback struct {
	QuestionFeedback []rawEntry `json:"questionFeedback"`
	Overall          *Overall   `json:"overall"`
}

// ParseFeedback validates an extracted scoring payload and keys its entries
// by question id. See reconcile for how echoed ids are matched.
func ParseFeedback(payload json.RawMessage, qs []questions.Question, logger *slog.Logger) (Scores, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return Scores{}, errors.New("model output is not a feedback object")
	}
	if err := llm.ValidateJSON(FeedbackSchema, payload); err != nil {
		return Scores{}, err
	}

	var raw rawFeedback
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Scores{}, fmt.Errorf("decode feedback: %w", err)
	}

	scores := Scores{
		Questions: reconcile(raw.QuestionFeedback, qs, logger),
		Overall:   raw.Overall,
	}
	if scores.Overall != nil {
		scores.Overall.KeyStrengths = nonNil(scores.Overall.KeyStrengths)
		scores.Overall.DevelopmentAreas = nonNil(scores.Overall.DevelopmentAreas)
	}
	return scores, nil
}

// reconcile keys entries by their echoed id when every id names a distinct
// question. Otherwise, when the entry count equals the question count,
// entries are matched by position. Failing both, entries with a known id
// are kept and the rest dropped.
func reconcile(entries []rawEntry, qs []questions.Question, logger *slog.Logger) map[string]ScoreEntry {
	if logger == nil {
		logger = slog.Default()
	}

	known := make(map[string]bool, len(qs))
	for _, q := range qs {
		known[q.ID] = true
	}

	ids := make([]string, len(entries))
	seen := make(map[string]bool, len(entries))
	exact := true
	for i, e := range entries {
		ids[i] = entryID(e.ID)
		if !known[ids[i]] || seen[ids[i]] {
			exact = false
		}
		seen[ids[i]] = true
	}

	out := make(map[string]ScoreEntry, len(qs))
	switch {
	case exact:
		for i, e := range entries {
			out[ids[i]] = e.entry()
		}

	case len(entries) == len(qs):
		logger.Warn("feedback ids do not match questions, matching by position",
			"echoed", ids, "questions", questions.IDs(qs))
		for i, e := range entries {
			out[qs[i].ID] = e.entry()
		}

	default:
		var dropped []string
		for i, e := range entries {
			if !known[ids[i]] {
				dropped = append(dropped, ids[i])
				continue
			}
			if _, dup := out[ids[i]]; dup {
				dropped = append(dropped, ids[i])
				continue
			}
			out[ids[i]] = e.entry()
		}
		logger.Warn("dropping feedback entries with unknown ids",
			"dropped", dropped, "entries", len(entries), "questions", len(qs))
	}
	return out
}

func (e rawEntry) entry() ScoreEntry {
	return ScoreEntry{
		Score:          e.Score,
		Feedback:       e.Feedback,
		Strengths:      nonNil(e.Strengths),
		AreasToImprove: nonNil(e.AreasToImprove),
	}
}

// entryID renders an echoed id as a string. Numeric ids are stringified.
func entryID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(raw)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
