package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/anacarcan/prueba/internal/domain"
)

func TestStorePlayerLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.EnsureExists(ctx, "ana"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Idempotent.
	if err := store.EnsureExists(ctx, "ana"); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}

	_ = store.AddScore(ctx, "ana", 5)
	_ = store.IncrementPlayed(ctx, "ana")
	_ = store.IncrementWon(ctx, "ana")

	stats, err := store.Stats(ctx, "ana")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalScore != 5 || stats.GamesPlayed != 1 || stats.GamesWon != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.WinRate() != 100 {
		t.Fatalf("win rate %v", stats.WinRate())
	}

	total, err := store.TotalScore(ctx, "ana")
	if err != nil || total != 5 {
		t.Fatalf("total score %d, %v", total, err)
	}

	if _, err := store.Stats(ctx, "nadie"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if err := store.AddScore(ctx, "nadie", 1); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestStoreGameRecords(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	id, err := store.CreateGame(ctx, domain.GameRecord{Category: "musica", Type: domain.GameMultiplayer, Questions: 10, Completed: true})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := store.RecordResult(ctx, id, domain.PlayerGameResult{Name: "ana", Correct: 8, Points: 3, Winner: true}); err != nil {
		t.Fatalf("record result: %v", err)
	}
	if err := store.RecordResult(ctx, id+1, domain.PlayerGameResult{Name: "luis"}); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}

	results := store.Results(id)
	if len(results) != 1 || !results[0].Winner || results[0].Points != 3 {
		t.Fatalf("unexpected results %+v", results)
	}
}
