package models

import "time"

// StudyMode is the kind of exercise a study session runs
type StudyMode string

const (
	ModePractice StudyMode = "practice"
	ModeQuiz     StudyMode = "quiz"
	ModeTyping   StudyMode = "typing"
)

// IsValid reports whether m is one of the known study modes
func (m StudyMode) IsValid() bool {
	switch m {
	case ModePractice, ModeQuiz, ModeTyping:
		return true
	}
	return false
}

// StudySession represents a single study sitting of a user
type StudySession struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Mode           StudyMode  `db:"mode" json:"mode"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	EndedAt        *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CardsReviewed  int        `db:"cards_reviewed" json:"cards_reviewed"`
	CorrectAnswers int        `db:"correct_answers" json:"correct_answers"`
	XPEarned       int        `db:"xp_earned" json:"xp_earned"`
	// Perfect is set only when the session ended normally with a perfect
	// tally of answers the server recorded.
	Perfect bool `db:"perfect" json:"perfect"`
	// UpdatedAt is the last-interaction watermark used for staleness detection.
	// Only answers move it.
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the session has not been ended yet
func (s *StudySession) IsActive() bool {
	return s.EndedAt == nil
}

// Accuracy returns the share of correct answers as a percentage
func (s *StudySession) Accuracy() float64 {
	if s.CardsReviewed == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.CardsReviewed) * 100
}

// Duration returns how long the session lasted, or zero while it is active
func (s *StudySession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// SessionTotals are the final counters a client reports when ending a session
type SessionTotals struct {
	CardsReviewed  int `json:"cards_reviewed"`
	CorrectAnswers int `json:"correct_answers"`
	XPEarned       int `json:"xp_earned"`
}
