package validation

import (
	"errors"
	"testing"

	"vocabclash/internal/models"
)

func TestValidateWordID(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantErr bool
	}{
		{name: "valid id", id: 12, wantErr: false},
		{name: "zero", id: 0, wantErr: true},
		{name: "negative", id: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWordID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWordID(%d) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCorrect(t *testing.T) {
	yes := true
	no := false

	tests := []struct {
		name    string
		correct *bool
		wantErr bool
	}{
		{name: "true", correct: &yes, wantErr: false},
		{name: "false", correct: &no, wantErr: false},
		{name: "missing", correct: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCorrect(tt.correct)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCorrect() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    models.StudyMode
		wantErr bool
	}{
		{name: "practice", mode: models.ModePractice, wantErr: false},
		{name: "quiz", mode: models.ModeQuiz, wantErr: false},
		{name: "typing", mode: models.ModeTyping, wantErr: false},
		{name: "empty", mode: "", wantErr: true},
		{name: "unknown", mode: "speed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionTotals(t *testing.T) {
	tests := []struct {
		name      string
		totals    models.SessionTotals
		wantField string
	}{
		{name: "valid totals", totals: models.SessionTotals{CardsReviewed: 10, CorrectAnswers: 8, XPEarned: 120}},
		{name: "all zero", totals: models.SessionTotals{}},
		{name: "negative cards", totals: models.SessionTotals{CardsReviewed: -1}, wantField: "cards_reviewed"},
		{name: "negative xp", totals: models.SessionTotals{XPEarned: -5}, wantField: "xp_earned"},
		{name: "more correct than cards", totals: models.SessionTotals{CardsReviewed: 3, CorrectAnswers: 4}, wantField: "correct_answers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionTotals(tt.totals)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateSessionTotals() unexpected error = %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateSessionTotals() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
