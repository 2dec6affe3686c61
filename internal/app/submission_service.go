package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("edunova-quiz-service/internal/app")

// SubmissionService grades quiz submissions.
type SubmissionService struct {
	uow           UnitOfWork
	reader        SubmissionReader
	badges        *BadgeEngine
	log           *logger.Logger
	now           func() time.Time
	newID         func() string
	strictOptions bool
}

// Option customizes a SubmissionService.
type Option func(*SubmissionService)

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SubmissionService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *SubmissionService) { s.newID = newID }
}

// WithStrictOptions makes a multiple choice answer outside the declared
// options fail the whole submission instead of being scored as incorrect.
func WithStrictOptions(strict bool) Option {
	return func(s *SubmissionService) { s.strictOptions = strict }
}

func NewSubmissionService(uow UnitOfWork, reader SubmissionReader, log *logger.Logger, opts ...Option) *SubmissionService {
	s := &SubmissionService{
		uow:    uow,
		reader: reader,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.badges = NewBadgeEngine(s.now, s.newID, log)
	return s
}

// Submit grades a student's answers for a quiz in one transaction: the
// duplicate guard, every answer row, the final score and any badge awards
// commit together or not at all. answers maps question IDs to the submitted
// text; questions without an entry are graded as the empty answer.
//
// It returns domain.ErrAlreadySubmitted when the student already has a
// submission for the quiz, a *domain.ValidationError for rejected input, and
// a *domain.PersistenceError for storage failures. Failures are never retried
// here.
func (s *SubmissionService) Submit(ctx context.Context, quizID, studentID string, answers map[string]string) (domain.SubmissionResult, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.Submit", trace.WithAttributes(
		attribute.String("quiz.id", quizID),
		attribute.String("student.id", studentID),
	))
	defer span.End()

	if strings.TrimSpace(quizID) == "" || strings.TrimSpace(studentID) == "" {
		return domain.SubmissionResult{}, domain.NewValidationError(errors.New("quiz and student are required"))
	}

	var result domain.SubmissionResult
	err := s.uow.InTx(ctx, func(tx Tx) error {
		res, err := s.grade(ctx, tx, quizID, studentID, answers)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		err = classifySubmitError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			s.log.Info("duplicate quiz submission rejected", "quiz_id", quizID, "student_id", studentID)
		} else {
			s.log.Error("quiz submission failed", "quiz_id", quizID, "student_id", studentID, "error", err)
		}
		return domain.SubmissionResult{}, err
	}

	span.SetAttributes(attribute.Float64("submission.score", result.Score), attribute.Int("submission.badges", len(result.Badges)))
	s.log.Info("quiz submitted",
		"quiz_id", quizID,
		"student_id", studentID,
		"submission_id", result.SubmissionID,
		"score", result.Score,
		"badges", len(result.Badges),
	)
	return result, nil
}

func (s *SubmissionService) grade(ctx context.Context, tx Tx, quizID, studentID string, answers map[string]string) (domain.SubmissionResult, error) {
	quiz, err := tx.GetQuizForSubmission(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if quiz.Status != domain.QuizPublished {
		return domain.SubmissionResult{}, domain.ErrQuizNotPublished
	}

	exists, err := tx.SubmissionExists(ctx, quizID, studentID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("check existing submission: %w", err)
	}
	if exists {
		return domain.SubmissionResult{}, domain.ErrAlreadySubmitted
	}

	questions, err := tx.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("list questions: %w", err)
	}
	if s.strictOptions {
		if err := validateOptions(questions, answers); err != nil {
			return domain.SubmissionResult{}, err
		}
	}

	sub := domain.Submission{
		ID:          s.newID(),
		QuizID:      quizID,
		StudentID:   studentID,
		Status:      domain.SubmissionSubmitted,
		SubmittedAt: s.now(),
	}
	if err := tx.CreateSubmission(ctx, sub); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("create submission: %w", err)
	}

	var totalScore, totalPoints float64
	for _, q := range questions {
		text := answers[q.ID]
		correct, points := Evaluate(q, text)
		answer := domain.Answer{
			ID:            s.newID(),
			SubmissionID:  sub.ID,
			QuestionID:    q.ID,
			SubmittedText: text,
			IsCorrect:     correct,
			PointsEarned:  points,
		}
		if err := tx.InsertAnswer(ctx, answer); err != nil {
			return domain.SubmissionResult{}, fmt.Errorf("insert answer for question %s: %w", q.ID, err)
		}
		totalScore += points
		totalPoints += q.Points
	}

	score := ScorePercentage(totalScore, totalPoints)
	if err := tx.MarkGraded(ctx, sub.ID, score, s.now()); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("mark graded: %w", err)
	}

	badges, err := s.badges.AwardEligible(ctx, tx, studentID, quizID, score)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	return domain.SubmissionResult{
		SubmissionID: sub.ID,
		Score:        score,
		TotalScore:   totalScore,
		TotalPoints:  totalPoints,
		Badges:       badges,
	}, nil
}

// validateOptions rejects non-empty multiple choice answers that match none
// of the question's options. Blank answers stay allowed.
func validateOptions(questions []domain.Question, answers map[string]string) error {
	var fields []domain.FieldError
	for _, q := range questions {
		if q.Type != domain.QuestionMultipleChoice {
			continue
		}
		text, ok := answers[q.ID]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if !q.HasOption(text) {
			fields = append(fields, domain.FieldError{
				Field:   "answers." + q.ID,
				Message: "answer must be one of the question options",
			})
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(errors.New("invalid answers"), fields...)
	}
	return nil
}

// classifySubmitError keeps expected outcomes as they are and wraps anything
// else as a persistence failure.
func classifySubmitError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return domain.ErrAlreadySubmitted
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuizNotPublished),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		domain.IsValidation(err):
		return err
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PersistenceError{Op: "submit quiz", Err: err}
}

// GetSubmission returns the student's submission for a quiz with its answers.
func (s *SubmissionService) GetSubmission(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.GetSubmission")
	defer span.End()
	return s.reader.GetSubmission(ctx, quizID, studentID)
}

// ListBadges returns every badge award of the student, newest first.
func (s *SubmissionService) ListBadges(ctx context.Context, studentID string) ([]domain.EarnedBadge, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.ListBadges")
	defer span.End()
	return s.reader.ListStudentBadges(ctx, studentID)
}
