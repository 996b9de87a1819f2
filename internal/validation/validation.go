package validation

import (
	"fmt"

	"vocabclash/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateWordID checks that a vocabulary id was supplied
func ValidateWordID(id int64) error {
	if id <= 0 {
		return ValidationError{Field: "vocabId", Message: "word id is required"}
	}
	return nil
}

// ValidateCorrect checks that the correctness flag was supplied
func ValidateCorrect(correct *bool) error {
	if correct == nil {
		return ValidationError{Field: "correct", Message: "correct must be a boolean"}
	}
	return nil
}

// ValidateMode checks that mode is a known study mode
func ValidateMode(mode models.StudyMode) error {
	if mode == "" {
		return ValidationError{Field: "mode", Message: "mode is required"}
	}
	if !mode.IsValid() {
		return ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	return nil
}

// ValidateNonNegative checks that an integer input is not negative
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}

// ValidateSessionTotals checks the counters a client reports at the end of a session
func ValidateSessionTotals(totals models.SessionTotals) error {
	if err := ValidateNonNegative("cards_reviewed", totals.CardsReviewed); err != nil {
		return err
	}
	if err := ValidateNonNegative("correct_answers", totals.CorrectAnswers); err != nil {
		return err
	}
	if err := ValidateNonNegative("xp_earned", totals.XPEarned); err != nil {
		return err
	}
	if totals.CorrectAnswers > totals.CardsReviewed {
		return ValidationError{Field: "correct_answers", Message: "cannot exceed cards_reviewed"}
	}
	return nil
}
