package domain

import "testing"

func TestQuestionCorrectLetter(t *testing.T) {
	for i, want := range []string{"A", "B", "C", "D"} {
		q := Question{Correct: i}
		if got := q.CorrectLetter(); got != want {
			t.Fatalf("Correct=%d letter %q, want %q", i, got, want)
		}
	}
}

func TestQuestionIsCorrect(t *testing.T) {
	q := Question{Correct: 1}
	for _, answer := range []string{"b", "B"} {
		if !q.IsCorrect(answer) {
			t.Fatalf("expected %q to match", answer)
		}
	}
	for _, answer := range []string{"a", "", "bb", "E"} {
		if q.IsCorrect(answer) {
			t.Fatalf("expected %q not to match", answer)
		}
	}
}

func TestWinRate(t *testing.T) {
	if got := (PlayerStats{}).WinRate(); got != 0 {
		t.Fatalf("zero games win rate %v", got)
	}
	stats := PlayerStats{GamesPlayed: 4, GamesWon: 3}
	if got := stats.WinRate(); got != 75 {
		t.Fatalf("win rate %v", got)
	}
}
