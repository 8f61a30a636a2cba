package feedback

import (
	"github.com/montanaflynn/stats"

	"github.com/abhisek/mockprep/internal/questions"
)

// TotalScore aggregates a session score. The model's own overall average is
// returned unchanged when present. Otherwise it is the mean of the scored
// questions rounded to one decimal, or 0 when none are scored.
func TotalScore(qs []questions.Question, scores Scores) float64 {
	if scores.Overall != nil && scores.Overall.AverageScore != nil {
		return *scores.Overall.AverageScore
	}

	var data stats.Float64Data
	for _, q := range qs {
		e, ok := scores.Questions[q.ID]
		if !ok || e.Score == nil {
			continue
		}
		data = append(data, *e.Score)
	}
	if len(data) == 0 {
		return 0
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	rounded, err := stats.Round(mean, 1)
	if err != nil {
		return 0
	}
	return rounded
}

// Band classifies a score for display.
type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandWeak Band = "weak"
)

// BandFor returns the display band of a 0-10 score.
func BandFor(score float64) Band {
	switch {
	case score >= 8:
		return BandGood
	case score >= 6:
		return BandFair
	default:
		return BandWeak
	}
}
