package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingLoader{
		CategoryLoader: NewStaticLoader(map[string][]domain.Question{
			"musica": sampleSet(6),
		}),
	}
	cache := NewQuestionCache(loader, time.Minute)

	qs, err := cache.Fetch(context.Background(), "musica", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(qs))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.Fetch(context.Background(), "musica", 4); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheShortSet(t *testing.T) {
	loader := NewStaticLoader(map[string][]domain.Question{
		"musica": sampleSet(3),
	})
	cache := NewQuestionCache(loader, time.Minute)

	qs, err := cache.Fetch(context.Background(), "musica", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("a short set is served whole, got %d", len(qs))
	}
}

func TestQuestionCacheUnknownCategory(t *testing.T) {
	cache := NewQuestionCache(NewStaticLoader(nil), time.Minute)
	if _, err := cache.Fetch(context.Background(), "nada", 10); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestBundledLoaderServesEveryCategory(t *testing.T) {
	loader, err := NewBundledLoader()
	if err != nil {
		t.Fatalf("bundled loader: %v", err)
	}
	for _, category := range []string{"conocimiento-general", "musica", "geografia", "deportes"} {
		set, err := loader.LoadCategory(context.Background(), category)
		if err != nil {
			t.Fatalf("load %s: %v", category, err)
		}
		if len(set) < 10 {
			t.Fatalf("category %s too small for a full game: %d", category, len(set))
		}
		for _, q := range set {
			if q.Correct < 0 || q.Correct > 3 {
				t.Fatalf("question %d in %s has correct index %d", q.ID, category, q.Correct)
			}
		}
	}
}

type countingLoader struct {
	CategoryLoader
	calls int
}

func (l *countingLoader) LoadCategory(ctx context.Context, category string) ([]domain.Question, error) {
	l.calls++
	return l.CategoryLoader.LoadCategory(ctx, category)
}

func sampleSet(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{
			ID:       int64(i + 1),
			Text:     "pregunta",
			Options:  [4]string{"a", "b", "c", "d"},
			Correct:  i % 4,
			Category: "musica",
		}
	}
	return out
}
