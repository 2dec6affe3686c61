package domain

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

func validatorInstance() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate = validator.New()
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// Report JSON field names instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate, translator
}

// ValidateStruct runs tag validation on v and converts failures into a ValidationError.
func ValidateStruct(v any) error {
	vd, tr := validatorInstance()
	err := vd.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   trimRootNamespace(fe.Namespace()),
			Message: fe.Translate(tr),
		})
	}
	return NewValidationError(errors.New("invalid input"), fields...)
}

func trimRootNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// NewQuestion is the authoring input for one question.
type NewQuestion struct {
	Text          string       `json:"text" validate:"required,max=2000"`
	Type          QuestionType `json:"type" validate:"required,oneof=multiple_choice true_false short_answer"`
	Points        float64      `json:"points" validate:"gt=0"`
	CorrectAnswer string       `json:"correctAnswer" validate:"max=1000"`
	Options       []string     `json:"options" validate:"omitempty,dive,required,max=500"`
}

// NewQuiz is the authoring input for a quiz and its initial question list.
type NewQuiz struct {
	CourseID    string        `json:"courseId" validate:"required,max=64"`
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description" validate:"max=5000"`
	DueDate     *time.Time    `json:"dueDate"`
	Status      QuizStatus    `json:"status" validate:"omitempty,oneof=draft published"`
	Questions   []NewQuestion `json:"questions" validate:"dive"`
}

// BuildQuiz validates the input and produces a Quiz whose total points are
// the sum of its question points. newID is called once for the quiz and once
// per question.
func BuildQuiz(ownerID string, in NewQuiz, now time.Time, newID func() string) (Quiz, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Quiz{}, NewValidationError(errors.New("invalid input"), FieldError{Field: "ownerId", Message: "ownerId is a required field"})
	}
	if err := ValidateStruct(in); err != nil {
		return Quiz{}, err
	}

	quiz := Quiz{
		ID:          newID(),
		CourseID:    in.CourseID,
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		Type:        QuizTypeQuiz,
		Questions:   make([]Question, 0, len(in.Questions)),
		CreatedAt:   now,
	}
	if quiz.Status == "" {
		quiz.Status = QuizPublished
	}

	for i, nq := range in.Questions {
		q, err := buildQuestion(quiz.ID, i, nq, newID)
		if err != nil {
			return Quiz{}, err
		}
		quiz.TotalPoints += q.Points
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

func buildQuestion(quizID string, position int, in NewQuestion, newID func() string) (Question, error) {
	q := Question{
		ID:            newID(),
		QuizID:        quizID,
		Position:      position,
		Text:          strings.TrimSpace(in.Text),
		Type:          in.Type,
		Points:        in.Points,
		CorrectAnswer: in.CorrectAnswer,
	}
	if !q.Type.Valid() {
		return Question{}, questionError(position, "type", "unsupported question type")
	}
	if q.Type != QuestionMultipleChoice {
		return q, nil
	}
	q.Options = append([]string(nil), in.Options...)
	if len(q.Options) < 2 {
		return Question{}, questionError(position, "options", "multiple choice questions need at least two options")
	}
	if !q.HasOption(q.CorrectAnswer) {
		return Question{}, questionError(position, "correctAnswer", "correct answer must be one of the options")
	}
	return q, nil
}

func questionError(position int, field, msg string) error {
	return NewValidationError(errors.New("invalid input"), FieldError{
		Field:   "questions[" + strconv.Itoa(position) + "]." + field,
		Message: msg,
	})
}
