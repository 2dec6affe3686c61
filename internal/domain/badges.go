package domain

// DefaultBadgeCatalog is the catalog seeded into fresh stores. The Postgres
// migration inserts the same rows.
func DefaultBadgeCatalog() []Badge {
	return []Badge{
		{ID: "badge-first-quiz", Name: "First Steps", Description: "Completed your first quiz", Icon: "target", CriteriaType: CriteriaQuizCompletion, CriteriaValue: 1},
		{ID: "badge-five-quizzes", Name: "Quiz Enthusiast", Description: "Completed 5 quizzes", Icon: "books", CriteriaType: CriteriaQuizCompletion, CriteriaValue: 5},
		{ID: "badge-ten-quizzes", Name: "Quiz Master", Description: "Completed 10 quizzes", Icon: "trophy", CriteriaType: CriteriaQuizCompletion, CriteriaValue: 10},
		{ID: "badge-high-score", Name: "High Achiever", Description: "Scored 90% or more on a quiz", Icon: "star", CriteriaType: CriteriaQuizScore, CriteriaValue: 90},
		{ID: "badge-perfect-score", Name: "Perfectionist", Description: "Scored 100% on a quiz", Icon: "hundred", CriteriaType: CriteriaQuizScore, CriteriaValue: 100},
	}
}
