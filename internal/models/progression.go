package models

import "time"

// DateLayout is the calendar-day layout used for streak bookkeeping
const DateLayout = "2006-01-02"

// ProgressionState is a user's cumulative gamification state.
// Level is not stored; it is always derived from TotalXP.
type ProgressionState struct {
	UserID              int64     `db:"user_id" json:"user_id"`
	TotalXP             int       `db:"total_xp" json:"total_xp"`
	DailyStreak         int       `db:"daily_streak" json:"daily_streak"`
	LastVisitDate       string    `db:"last_visit_date" json:"last_visit_date,omitempty"`
	PerfectSessionCount int       `db:"perfect_session_count" json:"perfect_session_count"`
	CreatedAt           time.Time `db:"created_at" json:"-"`
	UpdatedAt           time.Time `db:"updated_at" json:"-"`

	// UnlockedAchievements lives in its own table and is loaded separately.
	UnlockedAchievements map[string]bool `db:"-" json:"-"`
	persisted            bool
}

// NewProgressionState returns the zero progression of a user who has not studied yet
func NewProgressionState(userID int64, now time.Time) *ProgressionState {
	return &ProgressionState{
		UserID:               userID,
		CreatedAt:            now,
		UpdatedAt:            now,
		UnlockedAchievements: make(map[string]bool),
	}
}

// IsNew reports whether the state has not been persisted yet
func (p *ProgressionState) IsNew() bool {
	return !p.persisted
}

// MarkPersisted flags the state as loaded from or written to storage
func (p *ProgressionState) MarkPersisted() {
	p.persisted = true
}

// AchievementIDs returns the unlocked achievement ids in no particular order
func (p *ProgressionState) AchievementIDs() []string {
	ids := make([]string, 0, len(p.UnlockedAchievements))
	for id := range p.UnlockedAchievements {
		ids = append(ids, id)
	}
	return ids
}

// UnlockedAchievement is one row of the append-only achievement set
type UnlockedAchievement struct {
	UserID        int64     `db:"user_id" json:"user_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	XPReward      int       `db:"xp_reward" json:"xp_reward"`
	UnlockedAt    time.Time `db:"unlocked_at" json:"unlocked_at"`
}
