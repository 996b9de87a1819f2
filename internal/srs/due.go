package srs

import (
	"sort"
	"time"

	"vocabclash/internal/models"
)

// DueWord is a word waiting for review together with its scheduling state
type DueWord struct {
	models.Word
	NextReviewDate time.Time `db:"next_review_date" json:"next_review_date"`
	ReviewCount    int       `db:"review_count" json:"review_count"`
	EaseFactor     float64   `db:"ease_factor" json:"ease_factor"`
	ReviewInterval int       `db:"review_interval" json:"review_interval"`
	// IsNew is set for words the user has never answered.
	IsNew bool `db:"is_new" json:"is_new"`
}

// IsOverdue reports whether the word was due strictly before now
func (d DueWord) IsOverdue(now time.Time) bool {
	return d.NextReviewDate.Before(now)
}

// SortDue orders words for study: overdue words first, then by ascending next
// review date, then by ascending review count. Ties keep a stable id order.
func SortDue(words []DueWord, now time.Time) {
	sort.SliceStable(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if oa, ob := a.IsOverdue(now), b.IsOverdue(now); oa != ob {
			return oa
		}
		if !a.NextReviewDate.Equal(b.NextReviewDate) {
			return a.NextReviewDate.Before(b.NextReviewDate)
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount < b.ReviewCount
		}
		return a.ID < b.ID
	})
}
