package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/questions"
)

// PendingPlayer is a connected player who finished the handshake and waits to
// be matched. The matchmaking queue owns it until the scheduler claims it for
// a session or a concurrent cancel listener marks it cancelled.
type PendingPlayer struct {
	Conn       Conn
	Name       string
	Category   string
	Mode       domain.Mode
	EnqueuedAt time.Time

	cancelled atomic.Bool
	claimed   chan struct{}
}

// NewPendingPlayer wraps a handshaken connection for queueing.
func NewPendingPlayer(conn Conn, name, category string, mode domain.Mode) *PendingPlayer {
	if category == "" {
		category = questions.DefaultCategory
	}
	return &PendingPlayer{
		Conn:       conn,
		Name:       name,
		Category:   category,
		Mode:       mode,
		EnqueuedAt: time.Now(),
		claimed:    make(chan struct{}),
	}
}

// Cancel marks the player so the next scheduling pass purges them.
func (p *PendingPlayer) Cancel() { p.cancelled.Store(true) }

// Cancelled reports whether the player disconnected or cancelled while queued.
func (p *PendingPlayer) Cancelled() bool { return p.cancelled.Load() }

// Waiting returns how long the player has been queued.
func (p *PendingPlayer) Waiting(now time.Time) time.Duration { return now.Sub(p.EnqueuedAt) }

// claim hands the player's line channel over from the queue watcher to the
// session about to consume it.
func (p *PendingPlayer) claim() { close(p.claimed) }

// MatchIntent is the scheduler's decision: one player (solo) or a pair with a
// resolved shared category. It is consumed immediately by a new session.
type MatchIntent struct {
	Players  []*PendingPlayer
	Category string
}

// Solo reports whether the intent is a single-player match.
func (m *MatchIntent) Solo() bool { return len(m.Players) == 1 }

// Queue is the thread-safe multiset of pending players. Producers are
// handshake completions; the only consumer is the scheduler tick. One coarse
// lock covers enqueue, purge and commit so a player can never be booked into
// two matches.
type Queue struct {
	mu      sync.Mutex
	pending []*PendingPlayer
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add appends a player in arrival order.
func (q *Queue) Add(p *PendingPlayer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, p)
}

// Remove drops a player by identity, if still queued.
func (q *Queue) Remove(p *PendingPlayer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(p)
}

// Len reports the number of queued players, cancelled entries included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// NextIntent runs one scheduling pass: purge invalid entries, decide the next
// match over a snapshot, and atomically remove the committed players.
func (q *Queue) NextIntent(now time.Time, waitThreshold time.Duration) *MatchIntent {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.purgeLocked()
	intent := NextMatch(q.pending, now, waitThreshold)
	if intent != nil {
		for _, p := range intent.Players {
			q.removeLocked(p)
		}
	}
	return intent
}

func (q *Queue) purgeLocked() {
	kept := q.pending[:0]
	for _, p := range q.pending {
		if !p.Cancelled() {
			kept = append(kept, p)
		}
	}
	q.pending = kept
}

func (q *Queue) removeLocked(target *PendingPlayer) {
	for i, p := range q.pending {
		if p == target {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// NextMatch computes the next match purely over an ordered snapshot of
// pending players (arrival order). Solo requests have absolute priority over
// pairing. Waiting pairs are matched by category first, scanning in arrival
// order; failing that, the first pair where at least one member has waited
// past the threshold is matched using the longer waiter's category.
func NextMatch(pending []*PendingPlayer, now time.Time, waitThreshold time.Duration) *MatchIntent {
	for _, p := range pending {
		if p.Mode == domain.ModeSolo && !p.Cancelled() {
			return &MatchIntent{Players: []*PendingPlayer{p}, Category: p.Category}
		}
	}

	var waiting []*PendingPlayer
	for _, p := range pending {
		if p.Mode == domain.ModeWait && !p.Cancelled() {
			waiting = append(waiting, p)
		}
	}
	if len(waiting) < 2 {
		return nil
	}

	for i := 0; i < len(waiting); i++ {
		for j := i + 1; j < len(waiting); j++ {
			if waiting[i].Category == waiting[j].Category {
				return &MatchIntent{
					Players:  []*PendingPlayer{waiting[i], waiting[j]},
					Category: waiting[i].Category,
				}
			}
		}
	}

	for i := 0; i < len(waiting); i++ {
		for j := i + 1; j < len(waiting); j++ {
			a, b := waiting[i], waiting[j]
			if a.Waiting(now) >= waitThreshold || b.Waiting(now) >= waitThreshold {
				category := a.Category
				if b.Waiting(now) > a.Waiting(now) {
					category = b.Category
				}
				return &MatchIntent{Players: []*PendingPlayer{a, b}, Category: category}
			}
		}
	}

	return nil
}
