package http

import (
	"context"
	"errors"
	"net/http"

	"edunova-quiz-service/internal/app"
	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/logger"
	"github.com/gin-gonic/gin"
)

// QuizUseCases is the quiz authoring and read side used by the handler.
type QuizUseCases interface {
	CreateQuiz(ctx context.Context, ownerID string, in domain.NewQuiz) (domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID, viewerID string) (domain.Quiz, error)
}

// SubmissionUseCases is the grading side used by the handler.
type SubmissionUseCases interface {
	Submit(ctx context.Context, quizID, studentID string, answers map[string]string) (domain.SubmissionResult, error)
	GetSubmission(ctx context.Context, quizID, studentID string) (domain.Submission, error)
	ListBadges(ctx context.Context, studentID string) ([]domain.EarnedBadge, error)
}

var (
	_ QuizUseCases       = (*app.QuizService)(nil)
	_ SubmissionUseCases = (*app.SubmissionService)(nil)
)

type Handler struct {
	quizzes     QuizUseCases
	submissions SubmissionUseCases
	log         *logger.Logger
}

func NewHandler(quizzes QuizUseCases, submissions SubmissionUseCases, log *logger.Logger) *Handler {
	return &Handler{quizzes: quizzes, submissions: submissions, log: log}
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

type submitResponse struct {
	domain.SubmissionResult
	Message string `json:"message"`
}

func (h *Handler) CreateQuiz(c *gin.Context) {
	var req domain.NewQuiz
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), identityFrom(c).UserID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create quiz")
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *Handler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizzes.GetQuiz(c.Request.Context(), c.Param("quizID"), identityFrom(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to load quiz")
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// Submit grades the caller's answers. The request either fully succeeds or
// leaves nothing behind.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Answers == nil {
		req.Answers = map[string]string{}
	}

	result, err := h.submissions.Submit(c.Request.Context(), c.Param("quizID"), identityFrom(c).UserID, req.Answers)
	if err != nil {
		h.respondError(c, err, "Failed to submit quiz")
		return
	}
	c.JSON(http.StatusOK, submitResponse{SubmissionResult: result, Message: "Quiz submitted successfully"})
}

func (h *Handler) GetSubmission(c *gin.Context) {
	sub, err := h.submissions.GetSubmission(c.Request.Context(), c.Param("quizID"), identityFrom(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to load submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) ListBadges(c *gin.Context) {
	badges, err := h.submissions.ListBadges(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to load badges")
		return
	}
	c.JSON(http.StatusOK, badges)
}

// respondError maps domain errors to status codes. Anything unrecognised is
// reported with the generic message and logged.
func (h *Handler) respondError(c *gin.Context, err error, generic string) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "You have already submitted this quiz"})
	case errors.As(err, &ve):
		msg := "validation failed"
		if ve.Err != nil {
			msg = ve.Err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Fields: ve.Fields})
	case errors.Is(err, domain.ErrQuizNotPublished):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Quiz is not open for submissions"})
	case errors.Is(err, domain.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Quiz not found"})
	case errors.Is(err, domain.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Submission not found"})
	default:
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: generic})
	}
}
