package app

import (
	"context"
	"time"

	"edunova-quiz-service/internal/domain"
)

// QuestionRepository reads the ordered question list of a quiz.
type QuestionRepository interface {
	// GetQuizForSubmission returns the quiz header (status, owner) with
	// domain.ErrQuizNotFound when it does not exist. Questions are not loaded.
	GetQuizForSubmission(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// SubmissionRepository persists submissions. CreateSubmission must report a
// duplicate (quiz, student) pair as domain.ErrAlreadySubmitted.
type SubmissionRepository interface {
	SubmissionExists(ctx context.Context, quizID, studentID string) (bool, error)
	CreateSubmission(ctx context.Context, sub domain.Submission) error
	MarkGraded(ctx context.Context, submissionID string, score float64, gradedAt time.Time) error
	CountGradedSubmissions(ctx context.Context, studentID string) (int, error)
}

// AnswerRepository persists one answer row per question.
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, answer domain.Answer) error
}

// BadgeRepository reads the badge catalog.
type BadgeRepository interface {
	ListBadges(ctx context.Context) ([]domain.Badge, error)
}

type StudentBadgeRepository interface {
	StudentBadgeExists(ctx context.Context, studentID, badgeID string) (bool, error)
	InsertStudentBadge(ctx context.Context, sb domain.StudentBadge) error
}

// Tx is the set of repositories bound to one open transaction.
type Tx interface {
	QuestionRepository
	SubmissionRepository
	AnswerRepository
	BadgeRepository
	StudentBadgeRepository
}

// UnitOfWork runs fn inside a single transaction. A non-nil error from fn,
// or a cancelled ctx, rolls back every write made through the Tx.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// QuizWriter stores a newly authored quiz together with its questions.
type QuizWriter interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SubmissionReader serves read-only views of past submissions and awards.
type SubmissionReader interface {
	GetSubmission(ctx context.Context, quizID, studentID string) (domain.Submission, error)
	ListStudentBadges(ctx context.Context, studentID string) ([]domain.EarnedBadge, error)
}
