package domain

import "time"

// Mode is a pending player's preference for solo play or waiting for an opponent.
// The wire values are the ones clients send in the "categoria:modo" selection.
type Mode string

const (
	ModeSolo Mode = "solo"
	ModeWait Mode = "esperar"
)

// GameType is the persisted kind of a finished game.
type GameType string

const (
	GameSolo        GameType = "SOLO"
	GameMultiplayer GameType = "MULTIJUGADOR"
)

// Question models an MCQ question with four options and exactly one correct index.
type Question struct {
	ID       int64     `json:"id"`
	Text     string    `json:"texto"`
	Options  [4]string `json:"opciones"`
	Correct  int       `json:"respuestaCorrecta"` // 0=A .. 3=D
	Category string    `json:"categoria"`
}

// CorrectLetter returns the answer letter (A-D) for the question.
func (q Question) CorrectLetter() string {
	return string(rune('A' + q.Correct))
}

// IsCorrect reports whether a single-letter answer matches, case-insensitively.
func (q Question) IsCorrect(answer string) bool {
	if len(answer) != 1 {
		return false
	}
	letter := answer[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return int(letter-'A') == q.Correct
}

// PlayerStats is the cumulative record kept per display name.
type PlayerStats struct {
	Name        string
	TotalScore  int
	GamesPlayed int
	GamesWon    int
}

// WinRate returns the percentage of games won.
func (p PlayerStats) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed) * 100
}

// GameRecord describes one finished game.
type GameRecord struct {
	Category   string
	Type       GameType
	Duration   time.Duration
	Questions  int
	Completed  bool
	FinishedAt time.Time
}

// PlayerGameResult is one player's outcome within a recorded game.
type PlayerGameResult struct {
	Name    string
	Correct int
	Points  int
	Winner  bool
}
