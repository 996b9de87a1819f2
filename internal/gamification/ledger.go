package gamification

import (
	"time"

	"github.com/pkg/errors"

	"vocabclash/internal/models"
)

// ErrNegativeXP is returned when a caller tries to take XP away
var ErrNegativeXP = errors.New("xp amount must not be negative")

// AddXP credits amount to the user's total and reports whether the derived
// level went up.
func AddXP(state *models.ProgressionState, amount int) (leveledUp bool, newLevel int, err error) {
	if amount < 0 {
		return false, LevelForXP(state.TotalXP), ErrNegativeXP
	}
	before := LevelForXP(state.TotalXP)
	state.TotalXP += amount
	after := LevelForXP(state.TotalXP)
	return after > before, after, nil
}

// Today returns the UTC calendar day of now in streak layout
func Today(now time.Time) string {
	return now.UTC().Format(models.DateLayout)
}

// UpdateStreak records a study visit on day today (YYYY-MM-DD) and returns the
// resulting streak. A second visit on the same day leaves it unchanged, a visit
// on the day after the last one extends it and anything else restarts it at 1.
//
// A last visit date in the future (clock skew) counts as a visit today.
func UpdateStreak(state *models.ProgressionState, today string) int {
	defer func() { state.LastVisitDate = today }()

	if state.LastVisitDate == "" {
		state.DailyStreak = 1
		return state.DailyStreak
	}

	days, ok := daysBetween(state.LastVisitDate, today)
	switch {
	case !ok:
		state.DailyStreak = 1
	case days <= 0:
		if state.DailyStreak < 1 {
			state.DailyStreak = 1
		}
	case days == 1:
		state.DailyStreak++
	default:
		state.DailyStreak = 1
	}
	return state.DailyStreak
}

// EffectiveStreak returns the streak to display on day today without changing
// state. A streak whose last visit is older than yesterday has lapsed.
func EffectiveStreak(state *models.ProgressionState, today string) int {
	if state.LastVisitDate == "" {
		return 0
	}
	days, ok := daysBetween(state.LastVisitDate, today)
	if !ok || days > 1 {
		return 0
	}
	return state.DailyStreak
}

// StreakAtRisk reports whether the user studied yesterday but not yet today
func StreakAtRisk(state *models.ProgressionState, today string) bool {
	if state.DailyStreak < 1 || state.LastVisitDate == "" {
		return false
	}
	days, ok := daysBetween(state.LastVisitDate, today)
	return ok && days == 1
}

// RecordPerfectSession bumps the perfect session counter
func RecordPerfectSession(state *models.ProgressionState) {
	state.PerfectSessionCount++
}

// daysBetween returns the number of calendar days from one day to another.
// ok is false if either day cannot be parsed.
func daysBetween(from, to string) (int, bool) {
	a, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}
