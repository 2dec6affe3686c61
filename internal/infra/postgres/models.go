package postgres

import (
	"time"

	"edunova-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          string     `bun:"id,pk"`
	CourseID    string     `bun:"course_id,notnull"`
	OwnerID     string     `bun:"owner_id,notnull"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description,notnull"`
	DueDate     *time.Time `bun:"due_date"`
	TotalPoints float64    `bun:"total_points,notnull"`
	Status      string     `bun:"status,notnull"`
	Type        string     `bun:"type,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID            string   `bun:"id,pk"`
	QuizID        string   `bun:"quiz_id,notnull"`
	OrderIndex    int      `bun:"order_index,notnull"`
	Text          string   `bun:"text,notnull"`
	Type          string   `bun:"type,notnull"`
	Points        float64  `bun:"points,notnull"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
	Options       []string `bun:"options,type:jsonb,notnull"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:sub"`

	ID          string     `bun:"id,pk"`
	QuizID      string     `bun:"quiz_id,notnull"`
	StudentID   string     `bun:"student_id,notnull"`
	Status      string     `bun:"status,notnull"`
	Score       float64    `bun:"score,notnull"`
	SubmittedAt time.Time  `bun:"submitted_at,notnull"`
	GradedAt    *time.Time `bun:"graded_at"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers,alias:ans"`

	ID            string  `bun:"id,pk"`
	SubmissionID  string  `bun:"submission_id,notnull"`
	QuestionID    string  `bun:"question_id,notnull"`
	SubmittedText string  `bun:"submitted_text,notnull"`
	IsCorrect     bool    `bun:"is_correct,notnull"`
	PointsEarned  float64 `bun:"points_earned,notnull"`
}

type badgeRow struct {
	bun.BaseModel `bun:"table:badges,alias:bdg"`

	ID            string  `bun:"id,pk"`
	Name          string  `bun:"name,notnull"`
	Description   string  `bun:"description,notnull"`
	Icon          string  `bun:"icon,notnull"`
	CriteriaType  string  `bun:"criteria_type,notnull"`
	CriteriaValue float64 `bun:"criteria_value,notnull"`
}

type studentBadgeRow struct {
	bun.BaseModel `bun:"table:student_badges,alias:sb"`

	ID        string    `bun:"id,pk"`
	StudentID string    `bun:"student_id,notnull"`
	BadgeID   string    `bun:"badge_id,notnull"`
	QuizID    *string   `bun:"quiz_id"`
	EarnedAt  time.Time `bun:"earned_at,notnull"`
}

func newQuizRow(q domain.Quiz) quizRow {
	return quizRow{
		ID:          q.ID,
		CourseID:    q.CourseID,
		OwnerID:     q.OwnerID,
		Title:       q.Title,
		Description: q.Description,
		DueDate:     q.DueDate,
		TotalPoints: q.TotalPoints,
		Status:      string(q.Status),
		Type:        q.Type,
		CreatedAt:   q.CreatedAt,
	}
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:          r.ID,
		CourseID:    r.CourseID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		TotalPoints: r.TotalPoints,
		Status:      domain.QuizStatus(r.Status),
		Type:        r.Type,
		CreatedAt:   r.CreatedAt,
	}
}

func newQuestionRow(q domain.Question) questionRow {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return questionRow{
		ID:            q.ID,
		QuizID:        q.QuizID,
		OrderIndex:    q.Position,
		Text:          q.Text,
		Type:          string(q.Type),
		Points:        q.Points,
		CorrectAnswer: q.CorrectAnswer,
		Options:       options,
	}
}

func (r questionRow) toDomain() domain.Question {
	q := domain.Question{
		ID:            r.ID,
		QuizID:        r.QuizID,
		Position:      r.OrderIndex,
		Text:          r.Text,
		Type:          domain.QuestionType(r.Type),
		Points:        r.Points,
		CorrectAnswer: r.CorrectAnswer,
	}
	if len(r.Options) > 0 {
		q.Options = r.Options
	}
	return q
}

func (r submissionRow) toDomain() domain.Submission {
	return domain.Submission{
		ID:          r.ID,
		QuizID:      r.QuizID,
		StudentID:   r.StudentID,
		Status:      domain.SubmissionStatus(r.Status),
		Score:       r.Score,
		SubmittedAt: r.SubmittedAt,
		GradedAt:    r.GradedAt,
	}
}

func (r answerRow) toDomain() domain.Answer {
	return domain.Answer{
		ID:            r.ID,
		SubmissionID:  r.SubmissionID,
		QuestionID:    r.QuestionID,
		SubmittedText: r.SubmittedText,
		IsCorrect:     r.IsCorrect,
		PointsEarned:  r.PointsEarned,
	}
}

func (r badgeRow) toDomain() domain.Badge {
	return domain.Badge{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Icon:          r.Icon,
		CriteriaType:  domain.BadgeCriteria(r.CriteriaType),
		CriteriaValue: r.CriteriaValue,
	}
}
