package leaderboard

import (
	"fmt"
	"time"
)

const (
	maxPrizeRunes       = 30
	truncatedPrizeRunes = 27
)

// TruncatePrize shortens long prize names to fit a board row
func TruncatePrize(prize string) string {
	runes := []rune(prize)
	if len(runes) <= maxPrizeRunes {
		return prize
	}
	return string(runes[:truncatedPrizeRunes]) + "..."
}

// RelativeTime labels t relative to now the way the board shows it
func RelativeTime(now, t time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return t.Format("2006-01-02")
	}
}
