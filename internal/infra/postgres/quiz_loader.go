package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"edunova-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads a quiz and its ordered questions from Postgres for the
// cached read path.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz   domain.Quiz
		status string
	)
	err := l.pool.QueryRow(ctx, `
		SELECT id, course_id, owner_id, title, description, due_date, total_points, status, type, created_at
		FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.CourseID, &quiz.OwnerID, &quiz.Title, &quiz.Description,
			&quiz.DueDate, &quiz.TotalPoints, &status, &quiz.Type, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Status = domain.QuizStatus(status)

	rows, err := l.pool.Query(ctx, `
		SELECT id, order_index, text, type, points, correct_answer, options
		FROM questions WHERE quiz_id=$1 ORDER BY order_index`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = make([]domain.Question, 0)
	for rows.Next() {
		var (
			q          domain.Question
			qType      string
			rawOptions []byte
		)
		if err := rows.Scan(&q.ID, &q.Position, &q.Text, &qType, &q.Points, &q.CorrectAnswer, &rawOptions); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.QuizID = quizID
		q.Type = domain.QuestionType(qType)
		if len(rawOptions) > 0 {
			if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
				return domain.Quiz{}, fmt.Errorf("unmarshal options: %w", err)
			}
			if len(q.Options) == 0 {
				q.Options = nil
			}
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
