package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/questions"
	"golang.org/x/sync/singleflight"
)

// CategoryLoader fetches a category's full question set from a backing store.
type CategoryLoader interface {
	LoadCategory(ctx context.Context, category string) ([]domain.Question, error)
}

// QuestionCache caches category question sets with TTL to avoid repeated
// loads, and serves random selections from the cached set.
type QuestionCache struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.Mutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader CategoryLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

// Fetch returns up to count random questions for the category. Each call gets
// a private copy so concurrent sessions never share question state.
func (c *QuestionCache) Fetch(ctx context.Context, category string, count int) ([]domain.Question, error) {
	set, err := c.categorySet(ctx, category)
	if err != nil {
		return nil, err
	}
	return c.pick(set, count), nil
}

func (c *QuestionCache) categorySet(ctx context.Context, category string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.Lock()
	if entry, ok := c.cache[category]; ok && entry.expiresAt.After(now) {
		c.mu.Unlock()
		return entry.questions, nil
	}
	c.mu.Unlock()

	result, err, _ := c.sf.Do(category, func() (interface{}, error) {
		now := c.clock()
		c.mu.Lock()
		if entry, ok := c.cache[category]; ok && entry.expiresAt.After(now) {
			c.mu.Unlock()
			return entry.questions, nil
		}
		c.mu.Unlock()

		set, err := c.loader.LoadCategory(ctx, category)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[category] = cachedSet{questions: set, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) pick(set []domain.Question, count int) []domain.Question {
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
	return out
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations; callers hold c.mu
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticLoader serves categories from an in-memory bank (tests/demos).
type StaticLoader struct {
	bank map[string][]domain.Question
}

func NewStaticLoader(bank map[string][]domain.Question) *StaticLoader {
	return &StaticLoader{bank: bank}
}

func (l *StaticLoader) LoadCategory(_ context.Context, category string) ([]domain.Question, error) {
	if set, ok := l.bank[category]; ok {
		return set, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// NewBundledLoader serves the question files shipped with the server.
func NewBundledLoader() (*StaticLoader, error) {
	bank, err := questions.LoadAll()
	if err != nil {
		return nil, err
	}
	return NewStaticLoader(bank), nil
}
