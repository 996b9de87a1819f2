package gamification

import "math"

// xpPerLevelUnit scales the quadratic level curve: level L starts at (L-1)^2 * 100 XP
const xpPerLevelUnit = 100

// LevelForXP returns floor(sqrt(total/100)) + 1. Negative totals are level 1.
func LevelForXP(total int) int {
	if total <= 0 {
		return 1
	}
	units := total / xpPerLevelUnit
	root := int(math.Sqrt(float64(units)))
	// correct any floating point drift so root is the exact integer square root
	for root*root > units {
		root--
	}
	for (root+1)*(root+1) <= units {
		root++
	}
	return root + 1
}

// LevelStartXP returns the total XP at which level begins
func LevelStartXP(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * xpPerLevelUnit
}

// LevelProgress describes how far a user is into their current level
type LevelProgress struct {
	Level       int `json:"level"`
	TotalXP     int `json:"total_xp"`
	LevelStart  int `json:"level_start_xp"`
	LevelEnd    int `json:"level_end_xp"`
	XPIntoLevel int `json:"xp_into_level"`
	XPToNext    int `json:"xp_to_next_level"`
	Percent     int `json:"percent"`
}

// LevelProgressFor returns the level progress for total XP
func LevelProgressFor(total int) LevelProgress {
	if total < 0 {
		total = 0
	}
	level := LevelForXP(total)
	start := LevelStartXP(level)
	end := LevelStartXP(level + 1)
	span := end - start

	return LevelProgress{
		Level:       level,
		TotalXP:     total,
		LevelStart:  start,
		LevelEnd:    end,
		XPIntoLevel: total - start,
		XPToNext:    end - total,
		Percent:     (total - start) * 100 / span,
	}
}
