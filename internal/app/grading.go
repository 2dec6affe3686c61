package app

import (
	"math"

	"edunova-quiz-service/internal/domain"
)

// Evaluate compares a submitted answer with the question's canonical answer.
// Every question type uses the same exact match after trimming and
// lower-casing; short answers get no fuzzy matching. There is no partial
// credit: a correct answer earns the question's full points, anything else 0.
func Evaluate(q domain.Question, submitted string) (bool, float64) {
	if domain.Normalize(submitted) != domain.Normalize(q.CorrectAnswer) {
		return false, 0
	}
	return true, q.Points
}

// ScorePercentage turns earned/possible points into a percentage rounded to
// two decimals. A quiz worth 0 points scores 0.
func ScorePercentage(totalScore, totalPoints float64) float64 {
	if totalPoints == 0 {
		return 0
	}
	return math.Round(totalScore/totalPoints*100*100) / 100
}
