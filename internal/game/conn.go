package game

import (
	"context"
	"time"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/questions"
)

// Conn is one connected player's transport, independent of whether the bytes
// travel over raw TCP or the websocket bridge.
type Conn interface {
	WriteLine(line string) error
	// Lines yields received lines in receipt order. Exactly one reader
	// goroutine feeds the channel for the lifetime of the connection; on read
	// failure it injects a final cancel sentinel and closes the channel.
	Lines() <-chan string
	Close() error
}

// PlayerStore tracks per-player cumulative stats.
type PlayerStore interface {
	EnsureExists(ctx context.Context, name string) error
	Stats(ctx context.Context, name string) (domain.PlayerStats, error)
	TotalScore(ctx context.Context, name string) (int, error)
	AddScore(ctx context.Context, name string, delta int) error
	IncrementPlayed(ctx context.Context, name string) error
	IncrementWon(ctx context.Context, name string) error
}

// GameRecorder persists finished games and per-player results.
type GameRecorder interface {
	CreateGame(ctx context.Context, record domain.GameRecord) (int64, error)
	RecordResult(ctx context.Context, gameID int64, result domain.PlayerGameResult) error
}

// QuestionSource returns up to count questions for a category. It may lazily
// populate its backing store on first access per category.
type QuestionSource interface {
	Fetch(ctx context.Context, category string, count int) ([]domain.Question, error)
}

// Config carries the pacing and sizing knobs of the game core. The pauses are
// deliberate UX pacing so clients can render between messages; tests shrink
// them.
type Config struct {
	Categories       []string
	QuestionsPerGame int
	AnswerTimeout    time.Duration
	RoundPause       time.Duration
	AnnouncePause    time.Duration
	MatchFoundPause  time.Duration
	TickInterval     time.Duration
	WaitThreshold    time.Duration
}

// DefaultConfig returns the production values.
func DefaultConfig() Config {
	return Config{
		Categories:       questions.Available,
		QuestionsPerGame: 10,
		AnswerTimeout:    20 * time.Second,
		RoundPause:       3 * time.Second,
		AnnouncePause:    time.Second,
		MatchFoundPause:  500 * time.Millisecond,
		TickInterval:     200 * time.Millisecond,
		WaitThreshold:    10 * time.Second,
	}
}
