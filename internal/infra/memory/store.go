package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"edunova-quiz-service/internal/app"
	"edunova-quiz-service/internal/domain"
)

// Op names a write that can be made to fail in tests.
type Op string

const (
	OpCreateSubmission   Op = "create_submission"
	OpInsertAnswer       Op = "insert_answer"
	OpMarkGraded         Op = "mark_graded"
	OpInsertStudentBadge Op = "insert_student_badge"
)

// Store is an in-memory implementation of app.UnitOfWork and the read-side
// repositories. Transactions are serialized and work on a copy of the data
// that replaces the committed state only when the transaction succeeds.
type Store struct {
	mu    sync.Mutex
	state *state

	faultMu sync.Mutex
	faults  map[Op]*fault
}

type fault struct {
	remaining int
	err       error
}

type submissionKey struct {
	quizID    string
	studentID string
}

type state struct {
	quizzes       map[string]domain.Quiz
	submissions   map[string]domain.Submission
	submissionIdx map[submissionKey]string
	answers       map[string][]domain.Answer
	badges        []domain.Badge
	studentBadges []domain.StudentBadge
}

// NewStore returns an empty store with the given badge catalog.
func NewStore(catalog []domain.Badge) *Store {
	badges := append([]domain.Badge(nil), catalog...)
	sort.SliceStable(badges, func(i, j int) bool {
		if badges[i].CriteriaValue != badges[j].CriteriaValue {
			return badges[i].CriteriaValue < badges[j].CriteriaValue
		}
		return badges[i].Name < badges[j].Name
	})
	return &Store{
		state: &state{
			quizzes:       make(map[string]domain.Quiz),
			submissions:   make(map[string]domain.Submission),
			submissionIdx: make(map[submissionKey]string),
			answers:       make(map[string][]domain.Answer),
			badges:        badges,
		},
		faults: make(map[Op]*fault),
	}
}

var _ app.UnitOfWork = (*Store)(nil)
var _ app.QuizWriter = (*Store)(nil)
var _ app.SubmissionReader = (*Store)(nil)

// FailOn makes the nth upcoming call of op fail with err. It fires once.
func (s *Store) FailOn(op Op, nth int, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = &fault{remaining: nth, err: err}
}

func (s *Store) injected(op Op) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.remaining--
	if f.remaining > 0 {
		return nil
	}
	delete(s.faults, op)
	return f.err
}

// InTx runs fn against a private copy of the data and commits it only if fn
// succeeds and ctx is still live.
func (s *Store) InTx(ctx context.Context, fn func(tx app.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{store: s, st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (st *state) clone() *state {
	out := &state{
		quizzes:       make(map[string]domain.Quiz, len(st.quizzes)),
		submissions:   make(map[string]domain.Submission, len(st.submissions)),
		submissionIdx: make(map[submissionKey]string, len(st.submissionIdx)),
		answers:       make(map[string][]domain.Answer, len(st.answers)),
		badges:        st.badges,
		studentBadges: append([]domain.StudentBadge(nil), st.studentBadges...),
	}
	for k, v := range st.quizzes {
		out.quizzes[k] = v
	}
	for k, v := range st.submissions {
		out.submissions[k] = v
	}
	for k, v := range st.submissionIdx {
		out.submissionIdx[k] = v
	}
	for k, v := range st.answers {
		out.answers[k] = append([]domain.Answer(nil), v...)
	}
	return out
}

// Stats counts stored rows; tests use it to check rollbacks.
type Stats struct {
	Submissions   int
	Answers       int
	StudentBadges int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := 0
	for _, list := range s.state.answers {
		answers += len(list)
	}
	return Stats{
		Submissions:   len(s.state.submissions),
		Answers:       answers,
		StudentBadges: len(s.state.studentBadges),
	}
}

// CreateQuiz stores a quiz and its questions.
func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.quizzes[quiz.ID]; ok {
		return fmt.Errorf("quiz %s already exists", quiz.ID)
	}
	quiz.Questions = append([]domain.Question(nil), quiz.Questions...)
	s.state.quizzes[quiz.ID] = quiz
	return nil
}

// LoadQuiz implements QuizLoader.
func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.state.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = sortedQuestions(quiz.Questions)
	return quiz, nil
}

func (s *Store) GetSubmission(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return domain.Submission{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.submissionIdx[submissionKey{quizID: quizID, studentID: studentID}]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	sub := s.state.submissions[id]
	sub.Answers = append([]domain.Answer(nil), s.state.answers[id]...)
	return sub, nil
}

func (s *Store) ListStudentBadges(ctx context.Context, studentID string) ([]domain.EarnedBadge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	catalog := make(map[string]domain.Badge, len(s.state.badges))
	for _, b := range s.state.badges {
		catalog[b.ID] = b
	}
	out := make([]domain.EarnedBadge, 0)
	for _, sb := range s.state.studentBadges {
		if sb.StudentID != studentID {
			continue
		}
		out = append(out, domain.EarnedBadge{Badge: catalog[sb.BadgeID], QuizID: sb.QuizID, EarnedAt: sb.EarnedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

func sortedQuestions(in []domain.Question) []domain.Question {
	out := append([]domain.Question(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// tx implements app.Tx over a working copy of the store state.
type tx struct {
	store *Store
	st    *state
}

func (t *tx) GetQuizForSubmission(ctx context.Context, quizID string) (domain.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, err
	}
	quiz, ok := t.st.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = nil
	return quiz, nil
}

func (t *tx) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sortedQuestions(t.st.quizzes[quizID].Questions), nil
}

func (t *tx) SubmissionExists(ctx context.Context, quizID, studentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := t.st.submissionIdx[submissionKey{quizID: quizID, studentID: studentID}]
	return ok, nil
}

func (t *tx) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.store.injected(OpCreateSubmission); err != nil {
		return err
	}
	key := submissionKey{quizID: sub.QuizID, studentID: sub.StudentID}
	if _, ok := t.st.submissionIdx[key]; ok {
		return domain.ErrAlreadySubmitted
	}
	t.st.submissions[sub.ID] = sub
	t.st.submissionIdx[key] = sub.ID
	return nil
}

func (t *tx) MarkGraded(ctx context.Context, submissionID string, score float64, gradedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.store.injected(OpMarkGraded); err != nil {
		return err
	}
	sub, ok := t.st.submissions[submissionID]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.Status = domain.SubmissionGraded
	sub.Score = score
	sub.GradedAt = &gradedAt
	t.st.submissions[submissionID] = sub
	return nil
}

func (t *tx) CountGradedSubmissions(ctx context.Context, studentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, sub := range t.st.submissions {
		if sub.StudentID == studentID && sub.Status == domain.SubmissionGraded {
			n++
		}
	}
	return n, nil
}

func (t *tx) InsertAnswer(ctx context.Context, answer domain.Answer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.store.injected(OpInsertAnswer); err != nil {
		return err
	}
	if _, ok := t.st.submissions[answer.SubmissionID]; !ok {
		return errors.New("answer references unknown submission")
	}
	t.st.answers[answer.SubmissionID] = append(t.st.answers[answer.SubmissionID], answer)
	return nil
}

func (t *tx) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Badge(nil), t.st.badges...), nil
}

func (t *tx) StudentBadgeExists(ctx context.Context, studentID, badgeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for _, sb := range t.st.studentBadges {
		if sb.StudentID == studentID && sb.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertStudentBadge(ctx context.Context, sb domain.StudentBadge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.store.injected(OpInsertStudentBadge); err != nil {
		return err
	}
	t.st.studentBadges = append(t.st.studentBadges, sb)
	return nil
}
