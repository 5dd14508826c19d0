package tcpserv

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/game"
	"github.com/anacarcan/prueba/internal/infra/memory"
	"golang.org/x/sync/errgroup"
)

func startTestServer(t *testing.T, questions int) string {
	t.Helper()

	cfg := game.Config{
		Categories:       []string{"musica", "deportes"},
		QuestionsPerGame: questions,
		AnswerTimeout:    2 * time.Second,
		RoundPause:       time.Millisecond,
		AnnouncePause:    time.Millisecond,
		MatchFoundPause:  time.Millisecond,
		TickInterval:     time.Millisecond,
		WaitThreshold:    10 * time.Second,
	}

	bank := make([]domain.Question, questions)
	for i := range bank {
		bank[i] = domain.Question{
			ID:       int64(i + 1),
			Text:     fmt.Sprintf("pregunta %d", i+1),
			Options:  [4]string{"uno", "dos", "tres", "cuatro"},
			Correct:  0,
			Category: "musica",
		}
	}
	loader := memory.NewStaticLoader(map[string][]domain.Question{"musica": bank})
	source := memory.NewQuestionCache(loader, time.Minute)

	store := memory.NewStore()
	service := game.NewService(cfg, store, store, source)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go service.Run(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = NewServer(service).Serve(ctx, ln) }()
	return ln.Addr().String()
}

// playClient drives one scripted player: answer every question with the given
// letter and return the final game-over line.
func playClient(addr, name, selection, answer string) (string, error) {
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer raw.Close()
	_ = raw.SetDeadline(time.Now().Add(10 * time.Second))

	scanner := bufio.NewScanner(raw)
	send := func(line string) error {
		_, err := raw.Write([]byte(line + "\n"))
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "SOLICITUD_NOMBRE":
			if err := send(name); err != nil {
				return "", err
			}
		case strings.HasPrefix(line, "CATEGORIAS_DISPONIBLES;"):
			if err := send(selection); err != nil {
				return "", err
			}
		case line == "SOLICITAR_RESPUESTA":
			if err := send(answer); err != nil {
				return "", err
			}
		case strings.HasPrefix(line, "FIN_PARTIDA;"):
			return line, nil
		case strings.HasPrefix(line, "ERROR;"), strings.HasPrefix(line, "PARTIDA_CANCELADA"):
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("connection closed before game over")
}

func TestSoloGameOverTCP(t *testing.T) {
	addr := startTestServer(t, 2)

	got, err := playClient(addr, "ana", "musica:solo", "a")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if got != "FIN_PARTIDA;PUNTOS:2;TOTAL_PREGUNTAS:2;PUNTOS_GANADOS:5" {
		t.Fatalf("final message %q", got)
	}
}

func TestMultiplayerGameOverTCP(t *testing.T) {
	addr := startTestServer(t, 2)

	var g errgroup.Group
	results := make([]string, 2)
	for i, name := range []string{"ana", "luis"} {
		i, name := i, name
		g.Go(func() error {
			line, err := playClient(addr, name, "musica:esperar", "a")
			results[i] = line
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("play: %v", err)
	}

	want := "FIN_PARTIDA;RESULTADO:EMPATE;PUNTOS:2;PUNTOS_GANADOS:2"
	for i, got := range results {
		if got != want {
			t.Fatalf("player %d final message %q, want %q", i, got, want)
		}
	}
}

func TestCancelWhileQueuedOverTCP(t *testing.T) {
	addr := startTestServer(t, 2)

	raw, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()
	_ = raw.SetDeadline(time.Now().Add(10 * time.Second))

	scanner := bufio.NewScanner(raw)
	send := func(line string) {
		if _, err := raw.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "SOLICITUD_NOMBRE":
			send("ana")
		case strings.HasPrefix(line, "CATEGORIAS_DISPONIBLES;"):
			send("musica:esperar")
			send("cancelar")
		case line == "CONEXION_CANCELADA":
			return
		}
	}
	t.Fatalf("expected cancel notice, scanner err: %v", scanner.Err())
}
