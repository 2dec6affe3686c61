package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/infra/memory"
	"edunova-quiz-service/internal/logger"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuizLoader: seededStore(t)}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, logger.Nop())

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz cached under quiz:quiz-1")
	}
	if ttl := mr.TTL("quiz:quiz-1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with at most 10%% jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if cached.Title != quiz.Title || len(cached.Questions) != 1 || cached.Questions[0].CorrectAnswer != "4" {
		t.Fatalf("cached quiz does not round-trip: %+v", cached)
	}
}

func TestQuizRepositoryPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewQuizRepository(newClient(mr), seededStore(t), time.Minute, logger.Nop())
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:missing") {
		t.Fatalf("misses must not be cached")
	}
}

func TestQuizRepositoryRecoversFromCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("quiz:quiz-1", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	loader := &countingLoader{QuizLoader: seededStore(t)}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, logger.Nop())

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.ID != "quiz-1" || loader.count() != 1 {
		t.Fatalf("expected reload from store, quiz=%+v calls=%d", quiz, loader.count())
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(domain.DefaultBadgeCatalog())
	if err := store.CreateQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return store
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		CourseID:    "course-1",
		OwnerID:     "teacher-1",
		Title:       "Arithmetic",
		Status:      domain.QuizPublished,
		Type:        domain.QuizTypeQuiz,
		TotalPoints: 1,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Questions: []domain.Question{
			{
				ID:            "q1",
				QuizID:        "quiz-1",
				Text:          "What is 2 + 2?",
				Type:          domain.QuestionMultipleChoice,
				Points:        1,
				CorrectAnswer: "4",
				Options:       []string{"3", "4"},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
