package app

import (
	"context"
	"fmt"
	"time"

	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/logger"
)

// BadgeEngine evaluates the badge catalog against a student's quiz history.
type BadgeEngine struct {
	now   func() time.Time
	newID func() string
	log   *logger.Logger
}

func NewBadgeEngine(now func() time.Time, newID func() string, log *logger.Logger) *BadgeEngine {
	return &BadgeEngine{now: now, newID: newID, log: log}
}

// AwardEligible awards every badge the student qualifies for after a graded
// submission and returns the badges awarded by this call. It must run inside
// the submission's transaction, after the score has been stored, so the
// graded count includes the current submission.
//
// Completion badges are awarded at most once per student. Score badges are
// awarded on every qualifying submission, so a student can hold the same
// score badge several times.
func (e *BadgeEngine) AwardEligible(ctx context.Context, tx Tx, studentID, quizID string, score float64) ([]domain.Badge, error) {
	completed, err := tx.CountGradedSubmissions(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("count graded submissions: %w", err)
	}
	catalog, err := tx.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	awarded := make([]domain.Badge, 0)
	for _, badge := range catalog {
		switch badge.CriteriaType {
		case domain.CriteriaQuizCompletion:
			if float64(completed) < badge.CriteriaValue {
				continue
			}
			has, err := tx.StudentBadgeExists(ctx, studentID, badge.ID)
			if err != nil {
				return nil, fmt.Errorf("check badge %s: %w", badge.ID, err)
			}
			if has {
				continue
			}
		case domain.CriteriaQuizScore:
			if score < badge.CriteriaValue {
				continue
			}
		default:
			e.log.Warn("skipping badge with unknown criteria", "badge_id", badge.ID, "criteria_type", badge.CriteriaType)
			continue
		}
		awarded = append(awarded, badge)
	}

	now := e.now()
	for _, badge := range awarded {
		qid := quizID
		sb := domain.StudentBadge{
			ID:        e.newID(),
			StudentID: studentID,
			BadgeID:   badge.ID,
			QuizID:    &qid,
			EarnedAt:  now,
		}
		if err := tx.InsertStudentBadge(ctx, sb); err != nil {
			return nil, fmt.Errorf("award badge %s: %w", badge.ID, err)
		}
	}
	return awarded, nil
}
