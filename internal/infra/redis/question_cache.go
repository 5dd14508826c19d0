package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CategoryLoader fetches a category's full question set from a backing store.
type CategoryLoader interface {
	LoadCategory(ctx context.Context, category string) ([]domain.Question, error)
}

// QuestionCache keeps each category's question set in Redis as a JSON value
// under preguntas:{categoria} and falls back to the loader on cache miss.
// Sessions draw random selections from the cached set.
type QuestionCache struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader CategoryLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch returns up to count random questions for the category; each call gets
// a private copy.
func (c *QuestionCache) Fetch(ctx context.Context, category string, count int) ([]domain.Question, error) {
	set, err := c.categorySet(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, len(set))
	c.mu.Lock()
	perm := c.rnd.Perm(len(set))
	c.mu.Unlock()
	for i, idx := range perm {
		out[i] = set[idx]
	}
	if count < len(out) {
		out = out[:count]
	}
	return out, nil
}

func (c *QuestionCache) categorySet(ctx context.Context, category string) ([]domain.Question, error) {
	key := c.key(category)

	if set, ok := c.cached(ctx, key); ok {
		return set, nil
	}

	result, err, _ := c.sf.Do(category, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		if set, ok := c.cached(ctx, key); ok {
			return set, nil
		}

		set, err := c.loader.LoadCategory(ctx, category)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(set)
		if err != nil {
			return nil, fmt.Errorf("marshal %s questions: %w", category, err)
		}
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var set []domain.Question
	if err := json.Unmarshal(data, &set); err != nil || len(set) == 0 {
		return nil, false
	}
	return set, true
}

func (c *QuestionCache) key(category string) string {
	return "preguntas:" + category
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
