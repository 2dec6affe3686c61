package app

import (
	"testing"

	"edunova-quiz-service/internal/domain"
)

func TestEvaluate(t *testing.T) {
	tf := domain.Question{ID: "q1", Type: domain.QuestionTrueFalse, Points: 2, CorrectAnswer: "Vrai"}
	short := domain.Question{ID: "q2", Type: domain.QuestionShortAnswer, Points: 1.5, CorrectAnswer: "photosynthesis"}
	blank := domain.Question{ID: "q3", Type: domain.QuestionShortAnswer, Points: 1, CorrectAnswer: ""}

	cases := []struct {
		name      string
		q         domain.Question
		submitted string
		correct   bool
		points    float64
	}{
		{"exact", tf, "Vrai", true, 2},
		{"lower case", tf, "vrai", true, 2},
		{"surrounding whitespace", tf, " Vrai ", true, 2},
		{"upper case", tf, "VRAI", true, 2},
		{"wrong", tf, "Faux", false, 0},
		{"blank answer", tf, "", false, 0},
		{"short answer has no fuzzy match", short, "photosynthesys", false, 0},
		{"inner whitespace matters", short, "photo synthesis", false, 0},
		{"fractional points", short, "Photosynthesis\n", true, 1.5},
		{"empty canonical matches blank", blank, "  ", true, 1},
		{"empty canonical rejects text", blank, "anything", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			correct, points := Evaluate(tc.q, tc.submitted)
			if correct != tc.correct || points != tc.points {
				t.Fatalf("Evaluate(%q) = (%v, %v), want (%v, %v)", tc.submitted, correct, points, tc.correct, tc.points)
			}
		})
	}
}

func TestScorePercentage(t *testing.T) {
	cases := []struct {
		score, total, want float64
	}{
		{4, 6, 66.67},
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{9, 10, 90},
	}
	for _, tc := range cases {
		if got := ScorePercentage(tc.score, tc.total); got != tc.want {
			t.Fatalf("ScorePercentage(%v, %v) = %v, want %v", tc.score, tc.total, got, tc.want)
		}
	}
}
