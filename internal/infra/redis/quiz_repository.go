package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches quizzes in Redis as JSON documents and falls back to
// a loader on cache miss. Entries are stored as:
//
//	SET quiz:{quizID} {json} EX ttl
//
// Redis failures degrade to loading from the backing store.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	log    *logger.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, log *logger.Logger) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := r.client.Set(ctx, r.key(quizID), data, r.ttlWithJitter()).Err(); err != nil {
			r.log.Warn("quiz cache write failed", "quiz_id", quizID, "error", err)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("quiz cache read failed", "quiz_id", quizID, "error", err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		r.log.Warn("dropping undecodable cached quiz", "quiz_id", quizID, "error", err)
		_ = r.client.Del(ctx, r.key(quizID)).Err()
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
