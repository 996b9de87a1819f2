// Package srs schedules vocabulary reviews with a modified SM-2 algorithm.
//
// Everything here is pure: callers pass the prior state of a word and the
// current time and get the next state back.
package srs

import (
	"math"
	"time"

	"vocabclash/internal/models"
	"vocabclash/internal/validation"
)

// Quality rates how well a word was recalled, from 0 (blackout) to 5 (perfect)
type Quality int

const (
	QualityBlackout  Quality = 0
	QualityIncorrect Quality = 1
	QualityFamiliar  Quality = 2
	QualityDifficult Quality = 3
	QualityHesitant  Quality = 4
	QualityPerfect   Quality = 5
)

// PassThreshold is the lowest quality that counts as a successful recall
const PassThreshold = QualityDifficult

// ErrInvalidQuality is returned for a quality outside [0, 5]
var ErrInvalidQuality = validation.ValidationError{Field: "quality", Message: "must be between 0 and 5"}

// Schedule is the outcome of one review
type Schedule struct {
	Ease     float64
	Interval int
	NextDate time.Time
}

// NextReview computes the ease factor, interval in days and due date of a word
// after an answer of quality q.
func NextReview(q Quality, priorEase float64, priorInterval, priorReviewCount int, now time.Time) (Schedule, error) {
	if q < QualityBlackout || q > QualityPerfect {
		return Schedule{}, ErrInvalidQuality
	}

	miss := float64(QualityPerfect - q)
	ease := priorEase + (0.1 - miss*(0.08+miss*0.02))
	if ease < models.MinEaseFactor {
		ease = models.MinEaseFactor
	}

	var interval int
	switch {
	case q < PassThreshold:
		interval = 0
	case priorReviewCount == 0:
		interval = 1
	case priorReviewCount == 1:
		interval = 6
	default:
		interval = int(math.Round(float64(priorInterval) * ease))
	}

	return Schedule{
		Ease:     math.Round(ease*100) / 100,
		Interval: interval,
		NextDate: now.AddDate(0, 0, interval),
	}, nil
}

// QualityFromAnswer maps binary correctness onto the quality scale
func QualityFromAnswer(correct bool) Quality {
	if !correct {
		return QualityIncorrect
	}
	return QualityHesitant
}

// QualityFromResponse grades a correct answer by how quickly it was given.
// Fast answers earn a higher quality, slow ones a lower but still passing one.
func QualityFromResponse(correct bool, responseTime time.Duration) Quality {
	if !correct {
		return QualityIncorrect
	}
	switch {
	case responseTime < 3*time.Second:
		return QualityPerfect
	case responseTime < 5*time.Second:
		return QualityHesitant
	default:
		return QualityDifficult
	}
}

// IsDue reports whether a word scheduled for next is due at now
func IsDue(next, now time.Time) bool {
	return !now.Before(next)
}
