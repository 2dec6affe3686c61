package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QuizService contains the quiz authoring and read use cases.
type QuizService struct {
	writer  QuizWriter
	quizzes QuizRepository
	log     *logger.Logger
	now     func() time.Time
}

func NewQuizService(writer QuizWriter, quizzes QuizRepository, log *logger.Logger) *QuizService {
	return &QuizService{
		writer:  writer,
		quizzes: quizzes,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateQuiz validates and stores a quiz with its initial question list.
// Total points are computed from the questions.
func (s *QuizService) CreateQuiz(ctx context.Context, ownerID string, in domain.NewQuiz) (domain.Quiz, error) {
	ctx, span := tracer.Start(ctx, "QuizService.CreateQuiz")
	defer span.End()

	quiz, err := domain.BuildQuiz(ownerID, in, s.now(), uuid.NewString)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.writer.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, &domain.PersistenceError{Op: "create quiz", Err: err}
	}
	span.SetAttributes(attribute.String("quiz.id", quiz.ID), attribute.Int("quiz.questions", len(quiz.Questions)))
	s.log.Info("quiz created", "quiz_id", quiz.ID, "owner_id", ownerID, "questions", len(quiz.Questions), "total_points", quiz.TotalPoints)
	return quiz, nil
}

// GetQuiz returns a quiz for viewerID. The owner sees the full quiz; anyone
// else gets the student view, and drafts are hidden from them.
func (s *QuizService) GetQuiz(ctx context.Context, quizID, viewerID string) (domain.Quiz, error) {
	ctx, span := tracer.Start(ctx, "QuizService.GetQuiz", trace.WithAttributes(attribute.String("quiz.id", quizID)))
	defer span.End()

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	if viewerID != "" && quiz.OwnerID == viewerID {
		return quiz, nil
	}
	if quiz.Status != domain.QuizPublished {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz.StudentView(), nil
}
