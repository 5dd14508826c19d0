package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/protocol"
)

// participant is one player inside a running session.
type participant struct {
	conn    Conn
	name    string
	correct int
}

// Session owns one match, one or two players, and drives it through question
// delivery, timed answer collection, scoring and final reporting. Its mutable
// state is touched only by the session's own goroutine; the per-player line
// channels are the sole cross-goroutine input.
type Session struct {
	cfg       Config
	players   PlayerStore
	games     GameRecorder
	source    QuestionSource
	category  string
	questions []domain.Question
	index     int
	member    []*participant
	startedAt time.Time
	finished  bool
}

func newSession(cfg Config, players PlayerStore, games GameRecorder, source QuestionSource, intent *MatchIntent) *Session {
	member := make([]*participant, 0, len(intent.Players))
	for _, p := range intent.Players {
		member = append(member, &participant{conn: p.Conn, name: p.Name})
	}
	return &Session{
		cfg:      cfg,
		players:  players,
		games:    games,
		source:   source,
		category: intent.Category,
		member:   member,
	}
}

func (g *Session) solo() bool { return len(g.member) == 1 }

// Run executes the full state machine. Any panic is treated exactly like an
// explicit cancellation so connections never end up in an ambiguous state.
func (g *Session) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session panic: %v", r)
			g.cancel()
		}
	}()

	g.startedAt = time.Now()

	qs, err := g.source.Fetch(ctx, g.category, g.cfg.QuestionsPerGame)
	if err != nil || len(qs) == 0 {
		if err != nil {
			log.Printf("fetch questions for %s: %v", g.category, err)
		}
		g.fail("No hay preguntas disponibles para esta categoría")
		return
	}
	g.questions = qs

	g.announce()
	time.Sleep(g.cfg.AnnouncePause)

	for g.index < len(g.questions) {
		if !g.playRound(ctx) {
			return
		}
		g.index++
		if g.index < len(g.questions) {
			time.Sleep(g.cfg.RoundPause)
		}
	}

	g.finalize(ctx)
}

func (g *Session) announce() {
	if g.solo() {
		g.send(g.member[0], protocol.SoloGameStarted(g.category))
		return
	}
	g.send(g.member[0], protocol.GameStarted(g.member[1].name, g.category))
	g.send(g.member[1], protocol.GameStarted(g.member[0].name, g.category))
}

// playRound broadcasts one question, collects answers under the timeout and
// scores them. It returns false when the session was cancelled; no scoring or
// result message is sent for that round.
func (g *Session) playRound(ctx context.Context) bool {
	question := g.questions[g.index]
	g.broadcast(protocol.QuestionMessage(g.index+1, g.cfg.QuestionsPerGame, question))
	g.broadcast(protocol.AnswerRequest())

	answers := g.collectAnswers(ctx)

	for _, answer := range answers {
		if answer != nil && protocol.IsCancel(*answer) {
			g.cancel()
			return false
		}
	}

	for i, p := range g.member {
		if g.scoreAnswer(p, answers[i], question) {
			p.correct++
		}
	}

	second := (*int)(nil)
	if !g.solo() {
		second = &g.member[1].correct
	}
	g.broadcast(protocol.RoundResult(question.CorrectLetter(), g.member[0].correct, second))
	return true
}

// collectAnswers polls every member's line channel with independent timeouts.
// A nil entry means no answer arrived in time; a disconnect surfaces as the
// cancel sentinel.
func (g *Session) collectAnswers(ctx context.Context) []*string {
	answers := make([]*string, len(g.member))
	var wg sync.WaitGroup
	for i, p := range g.member {
		wg.Add(1)
		go func(slot int, p *participant) {
			defer wg.Done()
			answers[slot] = g.awaitAnswer(ctx, p)
		}(i, p)
	}
	wg.Wait()
	return answers
}

func (g *Session) awaitAnswer(ctx context.Context, p *participant) *string {
	timer := time.NewTimer(g.cfg.AnswerTimeout)
	defer timer.Stop()
	select {
	case line, ok := <-p.conn.Lines():
		if !ok {
			sentinel := protocol.CancelKeyword
			return &sentinel
		}
		return &line
	case <-timer.C:
		return nil
	case <-ctx.Done():
		sentinel := protocol.CancelKeyword
		return &sentinel
	}
}

// scoreAnswer sends the individual correctness notice and reports whether the
// player's correct-count should grow. Timeouts score as incorrect, not as an
// error.
func (g *Session) scoreAnswer(p *participant, answer *string, question domain.Question) bool {
	if answer == nil {
		g.send(p, protocol.AnswerTimeout())
		return false
	}
	if msg, ok := protocol.Parse(*answer).(protocol.Answer); ok && question.IsCorrect(msg.Letter) {
		g.send(p, protocol.AnswerCorrect())
		return true
	}
	g.send(p, protocol.AnswerIncorrect())
	return false
}

func (g *Session) finalize(ctx context.Context) {
	duration := time.Since(g.startedAt)
	gameType := domain.GameSolo
	if !g.solo() {
		gameType = domain.GameMultiplayer
	}

	gameID, err := g.games.CreateGame(ctx, domain.GameRecord{
		Category:   g.category,
		Type:       gameType,
		Duration:   duration,
		Questions:  g.cfg.QuestionsPerGame,
		Completed:  true,
		FinishedAt: time.Now(),
	})
	if err != nil {
		log.Printf("record game: %v", err)
	}

	if g.solo() {
		g.finalizeSolo(ctx, gameID)
	} else {
		g.finalizeMultiplayer(ctx, gameID)
	}

	g.close()
	g.finished = true
	log.Printf("game finished (%s, %s)", g.category, duration.Round(time.Second))
}

func (g *Session) finalizeSolo(ctx context.Context, gameID int64) {
	p := g.member[0]
	points := Tier(p.correct, g.cfg.QuestionsPerGame)

	g.settle(ctx, gameID, p, points, false)
	g.send(p, protocol.SoloGameOver(p.correct, g.cfg.QuestionsPerGame, points))
}

func (g *Session) finalizeMultiplayer(ctx context.Context, gameID int64) {
	j1, j2 := g.member[0], g.member[1]
	switch {
	case j1.correct > j2.correct:
		g.settleVictory(ctx, gameID, j1, j2)
	case j2.correct > j1.correct:
		g.settleVictory(ctx, gameID, j2, j1)
	default:
		g.settleTie(ctx, gameID)
	}
}

func (g *Session) settleVictory(ctx context.Context, gameID int64, winner, loser *participant) {
	winnerPoints := Tier(winner.correct, g.cfg.QuestionsPerGame)
	// Flat consolation point for a respectable losing score.
	loserPoints := 0
	if loser.correct >= 3 {
		loserPoints = 1
	}

	g.settle(ctx, gameID, winner, winnerPoints, true)
	g.settle(ctx, gameID, loser, loserPoints, false)
	if err := g.players.IncrementWon(ctx, winner.name); err != nil {
		log.Printf("increment wins for %s: %v", winner.name, err)
	}

	g.send(winner, protocol.MultiplayerGameOver(protocol.OutcomeWinner, winner.correct, loser.correct, winnerPoints))
	g.send(loser, protocol.MultiplayerGameOver(protocol.OutcomeLoser, loser.correct, winner.correct, loserPoints))
}

func (g *Session) settleTie(ctx context.Context, gameID int64) {
	j1, j2 := g.member[0], g.member[1]
	// Half the tier award, floored at one point. Both counts are equal here,
	// and the award is computed from player 1's.
	points := Tier(j1.correct, g.cfg.QuestionsPerGame) / 2
	if points < 1 {
		points = 1
	}

	g.settle(ctx, gameID, j1, points, false)
	g.settle(ctx, gameID, j2, points, false)

	g.send(j1, protocol.MultiplayerGameOver(protocol.OutcomeTie, j1.correct, j2.correct, points))
	g.send(j2, protocol.MultiplayerGameOver(protocol.OutcomeTie, j2.correct, j1.correct, points))
}

// settle applies one player's outcome to the record store.
func (g *Session) settle(ctx context.Context, gameID int64, p *participant, points int, winner bool) {
	if err := g.players.IncrementPlayed(ctx, p.name); err != nil {
		log.Printf("increment played for %s: %v", p.name, err)
	}
	if err := g.players.AddScore(ctx, p.name, points); err != nil {
		log.Printf("add score for %s: %v", p.name, err)
	}
	if err := g.games.RecordResult(ctx, gameID, domain.PlayerGameResult{
		Name:    p.name,
		Correct: p.correct,
		Points:  points,
		Winner:  winner,
	}); err != nil {
		log.Printf("record result for %s: %v", p.name, err)
	}
}

// cancel ends the session without scoring or persistence and notifies any
// still-open connection.
func (g *Session) cancel() {
	if g.finished {
		return
	}
	g.finished = true
	log.Printf("game cancelled (%s)", g.category)
	g.broadcast(protocol.GameCancelled())
	g.close()
}

// fail reports an unstartable session; no game record is written.
func (g *Session) fail(msg string) {
	g.broadcast(protocol.ErrorMessage(msg))
	g.close()
	g.finished = true
}

func (g *Session) send(p *participant, line string) {
	if err := p.conn.WriteLine(line); err != nil {
		log.Printf("write to %s: %v", p.name, err)
	}
}

func (g *Session) broadcast(line string) {
	for _, p := range g.member {
		g.send(p, line)
	}
}

func (g *Session) close() {
	for _, p := range g.member {
		_ = p.conn.Close()
	}
}
