package feedback

import (
	"testing"

	"github.com/abhisek/mockprep/internal/questions"
)

func f(v float64) *float64 { return &v }

func qset(ids ...string) []questions.Question {
	qs := make([]questions.Question, len(ids))
	for i, id := range ids {
		qs[i] = questions.Question{ID: id, Text: "question " + id}
	}
	return qs
}

func TestTotalScore(t *testing.T) {
	tests := []struct {
		name   string
		qs     []questions.Question
		scores Scores
		want   float64
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name:   "no entries",
			qs:     qset("q1", "q2"),
			scores: Scores{},
			want:   0,
		},
		{
			name: "no numeric scores",
			qs:   qset("q1"),
			scores: Scores{Questions: map[string]ScoreEntry{
				"q1": {Feedback: "unscored"},
			}},
			want: 0,
		},
		{
			name: "mean of two",
			qs:   qset("q1", "q2"),
			scores: Scores{Questions: map[string]ScoreEntry{
				"q1": {Score: f(8)},
				"q2": {Score: f(6)},
			}},
			want: 7.0,
		},
		{
			name: "rounded to one decimal",
			qs:   qset("q1", "q2", "q3"),
			scores: Scores{Questions: map[string]ScoreEntry{
				"q1": {Score: f(7)},
				"q2": {Score: f(8)},
				"q3": {Score: f(8)},
			}},
			want: 7.7,
		},
		{
			name: "unscored questions ignored",
			qs:   qset("q1", "q2", "q3"),
			scores: Scores{Questions: map[string]ScoreEntry{
				"q1": {Score: f(9)},
				"q3": {Score: f(4)},
			}},
			want: 6.5,
		},
		{
			name: "entries for other ids ignored",
			qs:   qset("q1"),
			scores: Scores{Questions: map[string]ScoreEntry{
				"q1": {Score: f(5)},
				"zz": {Score: f(10)},
			}},
			want: 5,
		},
		{
			name: "overall average wins",
			qs:   qset("q1", "q2"),
			scores: Scores{
				Questions: map[string]ScoreEntry{"q1": {Score: f(2)}, "q2": {Score: f(3)}},
				Overall:   &Overall{AverageScore: f(8.25)},
			},
			want: 8.25,
		},
		{
			name: "overall zero average returned unchanged",
			qs:   qset("q1"),
			scores: Scores{
				Questions: map[string]ScoreEntry{"q1": {Score: f(9)}},
				Overall:   &Overall{AverageScore: f(0)},
			},
			want: 0,
		},
		{
			name: "overall without average falls back to mean",
			qs:   qset("q1", "q2"),
			scores: Scores{
				Questions: map[string]ScoreEntry{"q1": {Score: f(10)}, "q2": {Score: f(9)}},
				Overall:   &Overall{GeneralFeedback: "solid"},
			},
			want: 9.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalScore(tt.qs, tt.scores)
			if got != tt.want {
				t.Errorf("TotalScore() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 10 {
				t.Errorf("TotalScore() = %v out of range", got)
			}
		})
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{10, BandGood},
		{8, BandGood},
		{7.9, BandFair},
		{6, BandFair},
		{5.9, BandWeak},
		{0, BandWeak},
	}
	for _, tt := range tests {
		if got := BandFor(tt.score); got != tt.want {
			t.Errorf("BandFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
