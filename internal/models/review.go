package models

import "time"

// Default spaced-repetition parameters for a word that has never been answered
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// ReviewState is the spaced-repetition state of one word for one user
type ReviewState struct {
	ID             int64      `db:"id" json:"-"`
	UserID         int64      `db:"user_id" json:"user_id"`
	VocabID        int64      `db:"vocab_id" json:"vocab_id"`
	EaseFactor     float64    `db:"ease_factor" json:"ease_factor"`
	ReviewInterval int        `db:"review_interval" json:"review_interval"`
	NextReviewDate time.Time  `db:"next_review_date" json:"next_review_date"`
	ReviewCount    int        `db:"review_count" json:"review_count"`
	CorrectCount   int        `db:"correct_count" json:"correct_count"`
	IncorrectCount int        `db:"incorrect_count" json:"incorrect_count"`
	IsKnown        bool       `db:"is_known" json:"is_known"`
	LastReviewed   *time.Time `db:"last_reviewed" json:"last_reviewed,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"-"`
	UpdatedAt      time.Time  `db:"updated_at" json:"-"`
}

// NewReviewState returns the initial state of a word that is due immediately
func NewReviewState(userID, vocabID int64, now time.Time) *ReviewState {
	return &ReviewState{
		UserID:         userID,
		VocabID:        vocabID,
		EaseFactor:     DefaultEaseFactor,
		NextReviewDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsNew reports whether the state has not been persisted yet
func (r *ReviewState) IsNew() bool {
	return r.ID == 0
}

// Accuracy returns the share of correct answers for the word as a percentage
func (r *ReviewState) Accuracy() float64 {
	total := r.CorrectCount + r.IncorrectCount
	if total == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(total) * 100
}
