package domain

import (
	"strings"
	"time"
)

// QuestionType selects how a submitted answer is compared to the canonical one.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
)

// QuizTypeQuiz is the only assessment type graded by this service.
const QuizTypeQuiz = "quiz"

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

type BadgeCriteria string

const (
	CriteriaQuizCompletion BadgeCriteria = "quiz_completion"
	CriteriaQuizScore      BadgeCriteria = "quiz_score"
)

// Question belongs to exactly one quiz and is ordered by Position.
type Question struct {
	ID            string       `json:"id"`
	QuizID        string       `json:"quizId"`
	Position      int          `json:"position"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Points        float64      `json:"points"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Options       []string     `json:"options,omitempty"`
}

// HasOption reports whether answer matches one of the declared options,
// ignoring case and surrounding whitespace.
func (q Question) HasOption(answer string) bool {
	want := Normalize(answer)
	for _, opt := range q.Options {
		if Normalize(opt) == want {
			return true
		}
	}
	return false
}

// Quiz is a graded assessment owned by a teacher and attached to a course.
type Quiz struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"courseId"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	TotalPoints float64    `json:"totalPoints"`
	Status      QuizStatus `json:"status"`
	Type        string     `json:"type"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// StudentView returns a copy of the quiz with canonical answers removed.
func (q Quiz) StudentView() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		if question.Options != nil {
			question.Options = append([]string(nil), question.Options...)
		}
		out.Questions[i] = question
	}
	return out
}

// Submission is one student's single graded attempt at a quiz.
type Submission struct {
	ID          string           `json:"id"`
	QuizID      string           `json:"quizId"`
	StudentID   string           `json:"studentId"`
	Status      SubmissionStatus `json:"status"`
	Score       float64          `json:"score"`
	SubmittedAt time.Time        `json:"submittedAt"`
	GradedAt    *time.Time       `json:"gradedAt,omitempty"`
	Answers     []Answer         `json:"answers,omitempty"`
}

// Answer is the per-question record inside a submission.
type Answer struct {
	ID            string  `json:"id"`
	SubmissionID  string  `json:"submissionId"`
	QuestionID    string  `json:"questionId"`
	SubmittedText string  `json:"submittedText"`
	IsCorrect     bool    `json:"isCorrect"`
	PointsEarned  float64 `json:"pointsEarned"`
}

// Badge is a catalog entry describing an award rule.
type Badge struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon,omitempty"`
	CriteriaType  BadgeCriteria `json:"criteriaType"`
	CriteriaValue float64       `json:"criteriaValue"`
}

// StudentBadge records that a student earned a badge, optionally through a quiz.
type StudentBadge struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	BadgeID   string    `json:"badgeId"`
	QuizID    *string   `json:"quizId,omitempty"`
	EarnedAt  time.Time `json:"earnedAt"`
}

// EarnedBadge joins a StudentBadge with its catalog entry for display.
type EarnedBadge struct {
	Badge
	QuizID   *string   `json:"quizId,omitempty"`
	EarnedAt time.Time `json:"earnedAt"`
}

// SubmissionResult is returned to the caller after a successful submission.
type SubmissionResult struct {
	SubmissionID string  `json:"submissionId"`
	Score        float64 `json:"score"`
	TotalScore   float64 `json:"totalScore"`
	TotalPoints  float64 `json:"totalPoints"`
	Badges       []Badge `json:"badges"`
}

// Normalize is the comparison form of an answer: trimmed and lower-cased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
