package gamify

// XP awarded by bracket events.
const (
	XPJoinTournament    = 25
	XPMatchWin          = 50
	XPTournamentWin     = 200
	XPCorrectPrediction = 10
)

// Cumulative XP required to reach each level, level 1 first.
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000}

func MaxLevel() int {
	return len(levelThresholds)
}

// LevelForXP returns the 1-based level for an XP total. Monotonic in xp
// and clamped to MaxLevel.
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// ProgressToNext returns how far into the current level an XP total is
// and how much the next level requires, both relative to the current
// threshold. At max level both are zero.
func ProgressToNext(xp int) (into, needed int) {
	level := LevelForXP(xp)
	if level >= MaxLevel() {
		return 0, 0
	}
	current := levelThresholds[level-1]
	next := levelThresholds[level]
	return xp - current, next - current
}
