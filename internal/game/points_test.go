package game

import "testing"

func TestTier(t *testing.T) {
	cases := []struct {
		correct int
		want    int
	}{
		{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0},
		{5, 1}, {6, 1},
		{7, 3}, {8, 3},
		{9, 5}, {10, 5},
	}
	for _, c := range cases {
		if got := Tier(c.correct, 10); got != c.want {
			t.Fatalf("Tier(%d, 10) = %d, want %d", c.correct, got, c.want)
		}
	}
}

func TestTierShortGame(t *testing.T) {
	if got := Tier(3, 5); got != 1 {
		t.Fatalf("Tier(3, 5) = %d, want 1", got)
	}
	if got := Tier(5, 5); got != 5 {
		t.Fatalf("Tier(5, 5) = %d, want 5", got)
	}
}
