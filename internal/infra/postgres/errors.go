package postgres

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	sqlStateUniqueViolation = "23505"

	submissionUniqueConstraint = "submissions_quiz_student_key"
)

// isUniqueViolation reports whether err is a unique_violation raised by the
// named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Field('C') == sqlStateUniqueViolation && pgErr.Field('n') == constraint
}
