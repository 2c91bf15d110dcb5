package services

import "math"

// XP weights for the various award sources (tunable via config/env later)
const (
	ExpPerMinute          int64 = 10  // session playtime
	CompletionBonusExp    int64 = 50  // flat bonus for finishing a game
	FriendBonusExp        int64 = 25  // each side of an accepted friend request
	GuildCreationBonusExp int64 = 100 // founding a guild
)

// costForLevel returns the XP needed to advance from level-1 to level.
// There is no cost to be *at* level 1, so cost(1) = 0. The curve is
// strictly increasing and super-linear: early levels are cheap, later
// levels disproportionately expensive.
//
// cost(L) = floor(L * 100 * 1.5^(L-1))
func costForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(float64(level) * 100 * math.Pow(1.5, float64(level-1))))
}

// LevelProgress describes where a cumulative XP total sits on the curve.
type LevelProgress struct {
	Level           int     `json:"level"`
	CurrentLevelExp int64   `json:"current_level_exp"` // XP earned within the current level
	NextLevelExp    int64   `json:"next_level_exp"`    // XP required to advance one more level
	Progress        float64 `json:"progress"`          // percentage toward the next level
}

// LevelFromExp derives the level for a cumulative XP total: the largest L ≥ 1
// such that the summed cost of levels 2..L is covered by totalExp. Negative
// input is clamped to zero. Monotonically non-decreasing in totalExp.
func LevelFromExp(totalExp int64) LevelProgress {
	if totalExp < 0 {
		totalExp = 0
	}

	level := 1
	var cumulative int64
	for {
		next := costForLevel(level + 1)
		// next <= 0 means the curve overflowed int64; treat as uncapped top level
		if next <= 0 || totalExp-cumulative < next {
			break
		}
		cumulative += next
		level++
	}

	current := totalExp - cumulative
	next := costForLevel(level + 1)
	progress := 0.0
	if next > 0 {
		progress = float64(current) / float64(next) * 100
	}

	return LevelProgress{
		Level:           level,
		CurrentLevelExp: current,
		NextLevelExp:    next,
		Progress:        progress,
	}
}

// ExpFromMinutes converts played minutes to XP: 10 XP per whole minute.
// Fractional minutes are truncated, negative input yields 0.
func ExpFromMinutes(minutes float64) int64 {
	if minutes < 0 {
		return 0
	}
	return int64(math.Floor(minutes)) * ExpPerMinute
}
