package game

import (
	"context"
	"log"
	"strings"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/protocol"
)

// HandleConn runs the handshake on a freshly accepted connection and, on
// success, enqueues the player for matchmaking. The connection stays open
// until the player's session ends or they cancel; on handshake failure it is
// closed here.
func (s *Service) HandleConn(ctx context.Context, conn Conn) {
	name, ok := s.requestName(ctx, conn)
	if !ok {
		_ = conn.WriteLine(protocol.ConnectionCancelled())
		_ = conn.Close()
		return
	}

	if err := s.players.EnsureExists(ctx, name); err != nil {
		log.Printf("ensure player %s: %v", name, err)
	}

	category, mode, ok := s.requestSelection(ctx, conn, name)
	if !ok {
		_ = conn.WriteLine(protocol.ConnectionCancelled())
		_ = conn.Close()
		return
	}

	// Wait-mode capacity limit: a single multiplayer match may be in flight
	// system-wide, and a busy rejection is terminal for this attempt.
	if mode == domain.ModeWait && s.MatchInFlight() {
		log.Printf("%s rejected, match in flight", name)
		_ = conn.WriteLine(protocol.Busy())
		_ = conn.Close()
		return
	}

	p := NewPendingPlayer(conn, name, category, mode)
	s.queue.Add(p)
	log.Printf("%s queued (%s, %s)", name, mode, category)
	go s.watchPending(p)
}

func (s *Service) requestName(ctx context.Context, conn Conn) (string, bool) {
	if err := conn.WriteLine(protocol.NameRequest()); err != nil {
		return "", false
	}
	line, ok := readLine(ctx, conn)
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(line)
	if name == "" || protocol.IsCancel(name) {
		return "", false
	}
	return name, true
}

// requestSelection advertises the categories and loops until the player sends
// a valid "<categoria>:<modo>" pair. Side-channel commands are answered
// inline without leaving the loop; malformed selections get a specific
// rejection and another prompt.
func (s *Service) requestSelection(ctx context.Context, conn Conn, name string) (string, domain.Mode, bool) {
	for {
		if err := conn.WriteLine(protocol.Categories(s.cfg.Categories)); err != nil {
			return "", "", false
		}
		line, ok := readLine(ctx, conn)
		if !ok {
			return "", "", false
		}

		switch msg := protocol.Parse(line).(type) {
		case protocol.Cancel:
			return "", "", false
		case protocol.StatsCommand:
			stats, err := s.players.Stats(ctx, name)
			if err != nil {
				stats = domain.PlayerStats{Name: name}
			}
			_ = conn.WriteLine(protocol.Stats(stats))
		case protocol.ScoreCommand:
			points, err := s.players.TotalScore(ctx, name)
			if err != nil {
				points = 0
			}
			_ = conn.WriteLine(protocol.TotalScore(points))
		case protocol.Selection:
			if !s.knownCategory(msg.Category) {
				_ = conn.WriteLine(protocol.InvalidCategory(msg.Category))
				continue
			}
			mode := domain.Mode(msg.Mode)
			if mode != domain.ModeSolo && mode != domain.ModeWait {
				_ = conn.WriteLine(protocol.InvalidMode(msg.Mode))
				continue
			}
			log.Printf("%s selected %s (%s)", name, msg.Category, mode)
			return msg.Category, mode, true
		default:
			_ = conn.WriteLine(protocol.InvalidSelection())
		}
	}
}

func (s *Service) knownCategory(category string) bool {
	for _, c := range s.cfg.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// readLine blocks on the player's line channel. A closed channel means the
// reader saw a disconnect.
func readLine(ctx context.Context, conn Conn) (string, bool) {
	select {
	case line, ok := <-conn.Lines():
		if !ok {
			return "", false
		}
		return line, true
	case <-ctx.Done():
		return "", false
	}
}
