package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edunova-quiz-service/internal/app"
	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/infra/memory"
	"edunova-quiz-service/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSubmitFlow(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(router, http.MethodPost, "/api/quizzes/quiz-1/submit", `{"answers":{"q1":" 4 ","q2":"true"}}`, studentHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		SubmissionID string         `json:"submissionId"`
		Score        float64        `json:"score"`
		TotalScore   float64        `json:"totalScore"`
		TotalPoints  float64        `json:"totalPoints"`
		Badges       []domain.Badge `json:"badges"`
		Message      string         `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SubmissionID == "" || body.Score != 50 || body.TotalScore != 1 || body.TotalPoints != 2 || body.Message == "" {
		t.Fatalf("unexpected response %+v", body)
	}
	if len(body.Badges) != 1 || body.Badges[0].ID != "badge-first-quiz" {
		t.Fatalf("expected first quiz badge, got %+v", body.Badges)
	}

	rec = doJSON(router, http.MethodPost, "/api/quizzes/quiz-1/submit", `{"answers":{"q1":"4"}}`, studentHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on resubmission, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "You have already submitted this quiz" {
		t.Fatalf("unexpected error message %q", got)
	}

	rec = doJSON(router, http.MethodGet, "/api/quizzes/quiz-1/submission", "", studentHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sub domain.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if len(sub.Answers) != 2 || sub.Status != domain.SubmissionGraded {
		t.Fatalf("unexpected submission %+v", sub)
	}

	rec = doJSON(router, http.MethodGet, "/api/students/me/badges", "", studentHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var earned []domain.EarnedBadge
	if err := json.Unmarshal(rec.Body.Bytes(), &earned); err != nil {
		t.Fatalf("decode badges: %v", err)
	}
	if len(earned) != 1 {
		t.Fatalf("expected one earned badge, got %+v", earned)
	}
}

func TestSubmitErrorMapping(t *testing.T) {
	router := newTestRouter(t, "")

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown quiz", "/api/quizzes/missing/submit", `{"answers":{}}`, http.StatusNotFound},
		{"draft quiz", "/api/quizzes/draft-1/submit", `{"answers":{}}`, http.StatusBadRequest},
		{"malformed body", "/api/quizzes/quiz-1/submit", `{"answers":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodPost, tc.path, tc.body, studentHeaders())
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := doJSON(router, http.MethodGet, "/api/quizzes/quiz-1/submission", "", studentHeaders())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without submission, got %d", rec.Code)
	}
}

func TestSubmitStorageFailureIsGeneric(t *testing.T) {
	h := NewHandler(nil, failingSubmissions{err: &domain.PersistenceError{Op: "submit quiz", Err: errors.New("connection reset")}}, logger.Nop())
	router := NewRouter(h, RouterConfig{ServiceName: "test"})

	rec := doJSON(router, http.MethodPost, "/api/quizzes/quiz-1/submit", `{"answers":{}}`, studentHeaders())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Failed to submit quiz" {
		t.Fatalf("storage details must not leak, got %q", got)
	}
}

func TestCreateQuizRequiresTeacher(t *testing.T) {
	router := newTestRouter(t, "")
	body := `{"courseId":"course-1","title":"Fractions","questions":[
		{"text":"1/2 + 1/2?","type":"short_answer","points":2,"correctAnswer":"1"},
		{"text":"Pick the larger","type":"multiple_choice","points":1,"correctAnswer":"3/4","options":["1/4","3/4"]}
	]}`

	rec := doJSON(router, http.MethodPost, "/api/quizzes", body, studentHeaders())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/api/quizzes", body, map[string]string{"X-User-ID": "teacher-1", "X-User-Role": RoleTeacher})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quiz); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if quiz.TotalPoints != 3 || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	rec = doJSON(router, http.MethodGet, "/api/quizzes/"+quiz.ID, "", studentHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view domain.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	for _, q := range view.Questions {
		if q.CorrectAnswer != "" {
			t.Fatalf("student view leaked answer for %s", q.ID)
		}
	}

	rec = doJSON(router, http.MethodPost, "/api/quizzes", `{"courseId":"course-1","title":""}`, map[string]string{"X-User-ID": "teacher-1", "X-User-Role": RoleTeacher})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid quiz, got %d", rec.Code)
	}
	var errBody ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(errBody.Fields) == 0 || errBody.Fields[0].Field != "title" {
		t.Fatalf("expected title field error, got %+v", errBody)
	}
}

func TestJWTAuthentication(t *testing.T) {
	const secret = "test-secret"
	router := newTestRouter(t, secret)

	rec := doJSON(router, http.MethodGet, "/api/students/me/badges", "", studentHeaders())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("headers must not authenticate when a secret is set, got %d", rec.Code)
	}

	token := signToken(t, secret, jwt.MapClaims{"sub": "student-1", "role": RoleStudent, "exp": time.Now().Add(time.Hour).Unix()})
	rec = doJSON(router, http.MethodPost, "/api/quizzes/quiz-1/submit", `{"answers":{"q1":"4","q2":"true"}}`, map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	expired := signToken(t, secret, jwt.MapClaims{"sub": "student-2", "exp": time.Now().Add(-time.Hour).Unix()})
	rec = doJSON(router, http.MethodGet, "/api/students/me/badges", "", map[string]string{"Authorization": "Bearer " + expired})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}

	forged := signToken(t, "other-secret", jwt.MapClaims{"sub": "student-3"})
	rec = doJSON(router, http.MethodGet, "/api/students/me/badges", "", map[string]string{"Authorization": "Bearer " + forged})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signature, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

type failingSubmissions struct {
	err error
}

func (f failingSubmissions) Submit(context.Context, string, string, map[string]string) (domain.SubmissionResult, error) {
	return domain.SubmissionResult{}, f.err
}

func (f failingSubmissions) GetSubmission(context.Context, string, string) (domain.Submission, error) {
	return domain.Submission{}, f.err
}

func (f failingSubmissions) ListBadges(context.Context, string) ([]domain.EarnedBadge, error) {
	return nil, f.err
}

func newTestRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	store := memory.NewStore(domain.DefaultBadgeCatalog())
	for _, quiz := range sampleQuizzes() {
		if err := store.CreateQuiz(context.Background(), quiz); err != nil {
			t.Fatalf("seed quiz: %v", err)
		}
	}
	quizzes := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute), logger.Nop())
	submissions := app.NewSubmissionService(store, store, logger.Nop())
	return NewRouter(NewHandler(quizzes, submissions, logger.Nop()), RouterConfig{ServiceName: "test", JWTSecret: secret})
}

func sampleQuizzes() []domain.Quiz {
	questions := []domain.Question{
		{ID: "q1", QuizID: "quiz-1", Position: 0, Text: "2 + 2?", Type: domain.QuestionShortAnswer, Points: 1, CorrectAnswer: "4"},
		{ID: "q2", QuizID: "quiz-1", Position: 1, Text: "The sky is green.", Type: domain.QuestionTrueFalse, Points: 1, CorrectAnswer: "false"},
	}
	return []domain.Quiz{
		{ID: "quiz-1", CourseID: "course-1", OwnerID: "teacher-1", Title: "Warm-up", Status: domain.QuizPublished, Type: domain.QuizTypeQuiz, TotalPoints: 2, Questions: questions},
		{ID: "draft-1", CourseID: "course-1", OwnerID: "teacher-1", Title: "Later", Status: domain.QuizDraft, Type: domain.QuizTypeQuiz},
	}
}

func studentHeaders() map[string]string {
	return map[string]string{"X-User-ID": "student-1", "X-User-Role": RoleStudent}
}

func doJSON(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
