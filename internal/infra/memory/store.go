package memory

import (
	"context"
	"sync"

	"github.com/anacarcan/prueba/internal/domain"
)

// Store keeps player stats and game records in process memory. It backs tests
// and demo runs; real deployments use the sqlite or postgres store.
type Store struct {
	mu      sync.RWMutex
	players map[string]*domain.PlayerStats
	games   map[int64]domain.GameRecord
	results map[int64][]domain.PlayerGameResult
	nextID  int64
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*domain.PlayerStats),
		games:   make(map[int64]domain.GameRecord),
		results: make(map[int64][]domain.PlayerGameResult),
	}
}

func (s *Store) EnsureExists(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[name]; !ok {
		s.players[name] = &domain.PlayerStats{Name: name}
	}
	return nil
}

func (s *Store) Stats(_ context.Context, name string) (domain.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[name]
	if !ok {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	}
	return *p, nil
}

func (s *Store) TotalScore(ctx context.Context, name string) (int, error) {
	stats, err := s.Stats(ctx, name)
	if err != nil {
		return 0, err
	}
	return stats.TotalScore, nil
}

func (s *Store) AddScore(_ context.Context, name string, delta int) error {
	return s.update(name, func(p *domain.PlayerStats) { p.TotalScore += delta })
}

func (s *Store) IncrementPlayed(_ context.Context, name string) error {
	return s.update(name, func(p *domain.PlayerStats) { p.GamesPlayed++ })
}

func (s *Store) IncrementWon(_ context.Context, name string) error {
	return s.update(name, func(p *domain.PlayerStats) { p.GamesWon++ })
}

func (s *Store) update(name string, fn func(*domain.PlayerStats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	fn(p)
	return nil
}

func (s *Store) CreateGame(_ context.Context, record domain.GameRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.games[s.nextID] = record
	return s.nextID, nil
}

func (s *Store) RecordResult(_ context.Context, gameID int64, result domain.PlayerGameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return domain.ErrGameNotFound
	}
	s.results[gameID] = append(s.results[gameID], result)
	return nil
}

// Game returns a stored record, for tests.
func (s *Store) Game(gameID int64) (domain.GameRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	return g, ok
}

// Games reports how many games have been recorded.
func (s *Store) Games() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Results returns the per-player outcomes of a recorded game.
func (s *Store) Results(gameID int64) []domain.PlayerGameResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PlayerGameResult(nil), s.results[gameID]...)
}
