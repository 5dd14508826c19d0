package game

import (
	"context"
	"strings"
	"testing"

	"github.com/anacarcan/prueba/internal/infra/memory"
)

func newTestService(questions int) (*Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(testConfig(questions), store, store, stubSource{qs: questionBank(questions)}), store
}

func TestHandshakeQueuesPlayer(t *testing.T) {
	s, _ := newTestService(10)
	conn := newFakeConn("Ana", "musica:solo")

	s.HandleConn(context.Background(), conn)

	if s.QueueLen() != 1 {
		t.Fatalf("expected one queued player, got %d", s.QueueLen())
	}
	sent := conn.sentLines()
	if len(sent) < 2 || sent[0] != "SOLICITUD_NOMBRE" {
		t.Fatalf("expected name request first, got %v", sent)
	}
	if !strings.HasPrefix(sent[1], "CATEGORIAS_DISPONIBLES;") {
		t.Fatalf("expected category list, got %q", sent[1])
	}
	if conn.wasClosed() {
		t.Fatalf("queued connection must stay open")
	}
}

func TestHandshakeRejectsInvalidInput(t *testing.T) {
	s, _ := newTestService(10)
	conn := newFakeConn("Ana", "sin-dos-puntos", "desconocida:solo", "musica:volar", "musica:esperar")

	s.HandleConn(context.Background(), conn)

	var rejections []string
	for _, line := range conn.sentLines() {
		switch {
		case strings.HasPrefix(line, "SELECCION_INVALIDA"),
			strings.HasPrefix(line, "CATEGORIA_INVALIDA"),
			strings.HasPrefix(line, "MODO_INVALIDO"):
			rejections = append(rejections, line)
		}
	}
	want := []string{
		"SELECCION_INVALIDA;FORMATO:categoria:modo",
		"CATEGORIA_INVALIDA;desconocida",
		"MODO_INVALIDO;volar",
	}
	if len(rejections) != len(want) {
		t.Fatalf("expected %v, got %v", want, rejections)
	}
	for i := range want {
		if rejections[i] != want[i] {
			t.Fatalf("rejection %d: got %q, want %q", i, rejections[i], want[i])
		}
	}
	if s.QueueLen() != 1 {
		t.Fatalf("valid retry must queue the player, got %d", s.QueueLen())
	}
}

func TestHandshakeStatsAndScoreCommands(t *testing.T) {
	s, store := newTestService(10)
	_ = store.EnsureExists(context.Background(), "Ana")
	_ = store.AddScore(context.Background(), "Ana", 7)
	_ = store.IncrementPlayed(context.Background(), "Ana")
	_ = store.IncrementWon(context.Background(), "Ana")

	conn := newFakeConn("Ana", "estadisticas", "puntuacion", "musica:solo")
	s.HandleConn(context.Background(), conn)

	sent := conn.sentLines()
	var stats, score string
	for _, line := range sent {
		if strings.HasPrefix(line, "ESTADISTICAS;") {
			stats = line
		}
		if strings.HasPrefix(line, "PUNTUACION_TOTAL;") {
			score = line
		}
	}
	if stats != "ESTADISTICAS;Estadisticas de Ana|Puntos totales: 7|Partidas jugadas: 1|Partidas ganadas: 1|Porcentaje de victorias: 100.0%" {
		t.Fatalf("stats line %q", stats)
	}
	if score != "PUNTUACION_TOTAL;7" {
		t.Fatalf("score line %q", score)
	}
}

func TestHandshakeCancelDuringName(t *testing.T) {
	s, _ := newTestService(10)
	conn := newFakeConn("cancelar")

	s.HandleConn(context.Background(), conn)

	if s.QueueLen() != 0 {
		t.Fatalf("cancelled player must not be queued")
	}
	if got := conn.lastLine(); got != "CONEXION_CANCELADA" {
		t.Fatalf("expected cancel notice, got %q", got)
	}
	if !conn.wasClosed() {
		t.Fatalf("connection must be closed")
	}
}

func TestHandshakeBusyRejectsWaitMode(t *testing.T) {
	s, _ := newTestService(10)
	s.sem <- struct{}{} // a match is in flight

	conn := newFakeConn("Ana", "musica:esperar")
	s.HandleConn(context.Background(), conn)

	if got := conn.lastLine(); !strings.HasPrefix(got, "PARTIDA_EN_CURSO;") {
		t.Fatalf("expected busy rejection, got %q", got)
	}
	if !conn.wasClosed() || s.QueueLen() != 0 {
		t.Fatalf("busy rejection is terminal")
	}
}

func TestHandshakeBusyStillAllowsSolo(t *testing.T) {
	s, _ := newTestService(10)
	s.sem <- struct{}{}

	conn := newFakeConn("Ana", "musica:solo")
	s.HandleConn(context.Background(), conn)

	if s.QueueLen() != 1 {
		t.Fatalf("solo mode must queue even while a match is in flight")
	}
}
