package game

import (
	"context"
	"log"
	"time"

	"github.com/anacarcan/prueba/internal/protocol"
)

// Service owns the matchmaking queue, the periodic scheduler and the capacity
// semaphore that keeps at most one session in flight system-wide.
type Service struct {
	cfg       Config
	players   PlayerStore
	games     GameRecorder
	questions QuestionSource
	queue     *Queue

	// sem has capacity 1. The scheduler takes the slot when it commits a
	// match; it is released only when the spawned session fully terminates.
	sem chan struct{}
}

func NewService(cfg Config, players PlayerStore, games GameRecorder, source QuestionSource) *Service {
	return &Service{
		cfg:       cfg,
		players:   players,
		games:     games,
		questions: source,
		queue:     NewQueue(),
		sem:       make(chan struct{}, 1),
	}
}

// MatchInFlight reports whether a session currently holds the capacity slot.
func (s *Service) MatchInFlight() bool { return len(s.sem) > 0 }

// QueueLen is exposed for observability and tests.
func (s *Service) QueueLen() int { return s.queue.Len() }

// Run drives the scheduler until the context is cancelled. Each tick only
// does work while no match is in flight.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	// The scheduler goroutine is the only acquirer, so checking before
	// committing an intent cannot race with another acquire. The slot is
	// taken only when a session will actually run, keeping the busy signal
	// truthful for handshake rejections.
	if s.MatchInFlight() {
		return
	}

	intent := s.queue.NextIntent(time.Now(), s.cfg.WaitThreshold)
	if intent == nil {
		return
	}
	s.sem <- struct{}{}

	for _, p := range intent.Players {
		p.claim()
	}
	s.announceMatch(intent)

	go func() {
		defer func() { <-s.sem }()
		// Let the clients process the match notice before the first message.
		time.Sleep(s.cfg.MatchFoundPause)
		newSession(s.cfg, s.players, s.games, s.questions, intent).Run(ctx)
	}()
}

func (s *Service) announceMatch(intent *MatchIntent) {
	if intent.Solo() {
		p := intent.Players[0]
		log.Printf("starting solo game: %s (%s)", p.Name, intent.Category)
		_ = p.Conn.WriteLine(protocol.SoloMatchFound(intent.Category))
		return
	}
	p1, p2 := intent.Players[0], intent.Players[1]
	log.Printf("starting multiplayer game: %s vs %s (%s)", p1.Name, p2.Name, intent.Category)
	_ = p1.Conn.WriteLine(protocol.MultiplayerMatchFound(p2.Name, intent.Category))
	_ = p2.Conn.WriteLine(protocol.MultiplayerMatchFound(p1.Name, intent.Category))
}

// watchPending listens for a cancel keyword or disconnect while the player
// sits in the queue, and steps aside the moment the scheduler claims them.
// Other lines received while queued are discarded; the queue has no use for
// them and the session has not started yet.
func (s *Service) watchPending(p *PendingPlayer) {
	for {
		select {
		case <-p.claimed:
			return
		case line, ok := <-p.Conn.Lines():
			if !ok || protocol.IsCancel(line) {
				log.Printf("%s left the queue", p.Name)
				p.Cancel()
				s.queue.Remove(p)
				if ok {
					_ = p.Conn.WriteLine(protocol.ConnectionCancelled())
				}
				_ = p.Conn.Close()
				return
			}
		}
	}
}
