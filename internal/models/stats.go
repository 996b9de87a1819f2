package models

import "time"

// WordStats aggregates a user's review states
type WordStats struct {
	WordsLearned   int `db:"words_learned" json:"words_learned"`
	WordsStarted   int `db:"words_started" json:"words_started"`
	TotalReviews   int `db:"total_reviews" json:"total_reviews"`
	TotalCorrect   int `db:"total_correct" json:"total_correct"`
	TotalIncorrect int `db:"total_incorrect" json:"total_incorrect"`
}

// Accuracy returns the share of correct answers as a percentage rounded down
func (s WordStats) Accuracy() int {
	total := s.TotalCorrect + s.TotalIncorrect
	if total == 0 {
		return 0
	}
	return s.TotalCorrect * 100 / total
}

// SessionSummary is a finished session as shown in activity listings
type SessionSummary struct {
	StartedAt time.Time     `json:"started_at"`
	Mode      StudyMode     `json:"mode"`
	XPEarned  int           `json:"xp_earned"`
	Duration  time.Duration `json:"duration"`
}

// UserStats is the study overview of a user
type UserStats struct {
	Level          int              `json:"level"`
	TotalXP        int              `json:"total_xp"`
	DailyStreak    int              `json:"daily_streak"`
	Achievements   []string         `json:"achievements"`
	TotalWords     int              `json:"total_words"`
	Words          WordStats        `json:"words"`
	Accuracy       int              `json:"accuracy"`
	TotalSessions  int              `json:"total_sessions"`
	StudyMinutes   int              `json:"study_minutes"`
	AvgSessionMins int              `json:"avg_session_minutes"`
	LastStudy      *time.Time       `json:"last_study,omitempty"`
	RecentSessions []SessionSummary `json:"recent_sessions"`
}
