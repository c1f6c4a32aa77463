// Package scoring computes points for correct answers and end-of-session bonuses.
package scoring

import (
	"math"

	"github.com/loqalabs/loqa-speak/internal/catalog"
)

const (
	BasePoints    = 10
	StreakStep    = 2
	StreakCap     = 5
	PerfectBonus  = 50
	LifeBonusUnit = 5
)

// Award returns the points for a correct answer. streakBefore is the streak
// before this answer is counted.
func Award(streakBefore int, lvl catalog.Level) int {
	if streakBefore < 0 {
		streakBefore = 0
	}
	streakBonus := min(streakBefore, StreakCap) * StreakStep
	levelBonus := int(math.Round(BasePoints * (lvl.Multiplier - 1)))
	if levelBonus < 0 {
		levelBonus = 0
	}
	return BasePoints + streakBonus + levelBonus
}

// LivesBonus rewards the lives left at the end of a completed classic session.
func LivesBonus(lives int, lvl catalog.Level) int {
	if lives <= 0 {
		return 0
	}
	return lives * lvl.Ordinal * LifeBonusUnit
}

// Completion is the end-of-session bonus breakdown.
type Completion struct {
	Perfect int `json:"perfect"`
	Lives   int `json:"lives"`
}

// Total sums the bonus components.
func (c Completion) Total() int { return c.Perfect + c.Lives }

// CompletionBonus computes the bonuses for a completed classic session.
func CompletionBonus(perfect bool, lives int, lvl catalog.Level) Completion {
	var c Completion
	if perfect {
		c.Perfect = PerfectBonus
	}
	c.Lives = LivesBonus(lives, lvl)
	return c
}
