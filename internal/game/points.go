package game

// Tier maps a correct-answer count to awarded points by fraction of the
// total: 90%+ earns 5, 70%+ earns 3, 50%+ earns 1, anything less 0.
func Tier(correct, total int) int {
	ratio := float64(correct) / float64(total)
	switch {
	case ratio >= 0.9:
		return 5
	case ratio >= 0.7:
		return 3
	case ratio >= 0.5:
		return 1
	default:
		return 0
	}
}
