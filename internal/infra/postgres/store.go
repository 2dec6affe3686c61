package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edunova-quiz-service/internal/app"
	"edunova-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// Store is the bun-backed implementation of app.UnitOfWork and the
// write/read repositories around submissions.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

var _ app.UnitOfWork = (*Store)(nil)
var _ app.QuizWriter = (*Store)(nil)
var _ app.SubmissionReader = (*Store)(nil)

// InTx runs fn in a read-committed transaction. The unique constraint on
// submissions(quiz_id, student_id) settles concurrent submissions.
func (s *Store) InTx(ctx context.Context, fn func(tx app.Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, btx bun.Tx) error {
		return fn(&tx{db: btx})
	})
}

// CreateQuiz inserts the quiz and its questions in one transaction.
func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, btx bun.Tx) error {
		row := newQuizRow(quiz)
		if _, err := btx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(quiz.Questions) == 0 {
			return nil
		}
		rows := make([]questionRow, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			rows = append(rows, newQuestionRow(q))
		}
		if _, err := btx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func (s *Store) GetSubmission(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	var row submissionRow
	err := s.db.NewSelect().
		Model(&row).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("select submission: %w", err)
	}

	var answers []answerRow
	err = s.db.NewSelect().
		Model(&answers).
		Join("JOIN questions AS qn ON qn.id = ans.question_id").
		Where("ans.submission_id = ?", row.ID).
		OrderExpr("qn.order_index ASC").
		Scan(ctx)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("select answers: %w", err)
	}

	sub := row.toDomain()
	sub.Answers = make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		sub.Answers = append(sub.Answers, a.toDomain())
	}
	return sub, nil
}

func (s *Store) ListStudentBadges(ctx context.Context, studentID string) ([]domain.EarnedBadge, error) {
	var awards []studentBadgeRow
	err := s.db.NewSelect().
		Model(&awards).
		Where("student_id = ?", studentID).
		OrderExpr("earned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select student badges: %w", err)
	}
	if len(awards) == 0 {
		return []domain.EarnedBadge{}, nil
	}

	var catalog []badgeRow
	if err := s.db.NewSelect().Model(&catalog).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select badges: %w", err)
	}
	byID := make(map[string]domain.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b.toDomain()
	}

	out := make([]domain.EarnedBadge, 0, len(awards))
	for _, a := range awards {
		out = append(out, domain.EarnedBadge{Badge: byID[a.BadgeID], QuizID: a.QuizID, EarnedAt: a.EarnedAt})
	}
	return out, nil
}

// tx implements app.Tx on an open bun transaction.
type tx struct {
	db bun.Tx
}

func (t *tx) GetQuizForSubmission(ctx context.Context, quizID string) (domain.Quiz, error) {
	var row quizRow
	err := t.db.NewSelect().Model(&row).Where("id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (t *tx) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := t.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		OrderExpr("order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (t *tx) SubmissionExists(ctx context.Context, quizID, studentID string) (bool, error) {
	return t.db.NewSelect().
		Model((*submissionRow)(nil)).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Exists(ctx)
}

func (t *tx) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	row := submissionRow{
		ID:          sub.ID,
		QuizID:      sub.QuizID,
		StudentID:   sub.StudentID,
		Status:      string(sub.Status),
		Score:       sub.Score,
		SubmittedAt: sub.SubmittedAt,
		GradedAt:    sub.GradedAt,
	}
	if _, err := t.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err, submissionUniqueConstraint) {
			return domain.ErrAlreadySubmitted
		}
		return err
	}
	return nil
}

func (t *tx) MarkGraded(ctx context.Context, submissionID string, score float64, gradedAt time.Time) error {
	res, err := t.db.NewUpdate().
		Table("submissions").
		Set("status = ?", string(domain.SubmissionGraded)).
		Set("score = ?", score).
		Set("graded_at = ?", gradedAt).
		Where("id = ?", submissionID).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (t *tx) CountGradedSubmissions(ctx context.Context, studentID string) (int, error) {
	return t.db.NewSelect().
		Model((*submissionRow)(nil)).
		Where("student_id = ?", studentID).
		Where("status = ?", string(domain.SubmissionGraded)).
		Count(ctx)
}

func (t *tx) InsertAnswer(ctx context.Context, answer domain.Answer) error {
	row := answerRow{
		ID:            answer.ID,
		SubmissionID:  answer.SubmissionID,
		QuestionID:    answer.QuestionID,
		SubmittedText: answer.SubmittedText,
		IsCorrect:     answer.IsCorrect,
		PointsEarned:  answer.PointsEarned,
	}
	_, err := t.db.NewInsert().Model(&row).Exec(ctx)
	return err
}

func (t *tx) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	var rows []badgeRow
	if err := t.db.NewSelect().Model(&rows).OrderExpr("criteria_value ASC, name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Badge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (t *tx) StudentBadgeExists(ctx context.Context, studentID, badgeID string) (bool, error) {
	return t.db.NewSelect().
		Model((*studentBadgeRow)(nil)).
		Where("student_id = ?", studentID).
		Where("badge_id = ?", badgeID).
		Exists(ctx)
}

func (t *tx) InsertStudentBadge(ctx context.Context, sb domain.StudentBadge) error {
	row := studentBadgeRow{
		ID:        sb.ID,
		StudentID: sb.StudentID,
		BadgeID:   sb.BadgeID,
		QuizID:    sb.QuizID,
		EarnedAt:  sb.EarnedAt,
	}
	_, err := t.db.NewInsert().Model(&row).Exec(ctx)
	return err
}
