package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vocabclash/internal/models"
)

func TestBaseXP(t *testing.T) {
	assert.Equal(t, 10, BaseXP(models.ModePractice))
	assert.Equal(t, 15, BaseXP(models.ModeQuiz))
	assert.Equal(t, 20, BaseXP(models.ModeTyping))
	assert.Equal(t, 10, BaseXP("unknown"))
}

func TestXPForAnswer(t *testing.T) {
	tests := []struct {
		name           string
		mode           models.StudyMode
		priorCorrect   int
		priorIncorrect int
		ease           float64
		interval       int
		clientXP       int
		want           int
	}{
		{name: "first quiz answer", mode: models.ModeQuiz, ease: 2.5, want: 15},
		{name: "first practice answer", mode: models.ModePractice, ease: 2.5, want: 10},
		{name: "single prior attempt has no multiplier", mode: models.ModePractice, priorIncorrect: 1, ease: 2.5, want: 10},
		{name: "struggling typing word", mode: models.ModeTyping, priorCorrect: 1, priorIncorrect: 3, ease: 1.8, interval: 10, want: 38},
		{name: "error rate only", mode: models.ModePractice, priorCorrect: 1, priorIncorrect: 1, ease: 2.5, want: 13},
		{name: "hard word bonus", mode: models.ModeQuiz, ease: 1.9, want: 18},
		{name: "retention bonus", mode: models.ModeTyping, priorCorrect: 5, ease: 2.6, interval: 7, want: 23},
		{name: "interval below a week", mode: models.ModeTyping, priorCorrect: 5, ease: 2.6, interval: 6, want: 20},
		{name: "client hint raises result", mode: models.ModeQuiz, ease: 2.5, clientXP: 40, want: 40},
		{name: "lower client hint ignored", mode: models.ModeQuiz, ease: 2.5, clientXP: 5, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := XPForAnswer(tt.mode, tt.priorCorrect, tt.priorIncorrect, tt.ease, tt.interval, tt.clientXP)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXPForAnswerNeverBelowHint(t *testing.T) {
	modes := []models.StudyMode{models.ModePractice, models.ModeQuiz, models.ModeTyping}
	for _, mode := range modes {
		for hint := 0; hint <= 100; hint += 7 {
			for incorrect := 0; incorrect < 5; incorrect++ {
				got := XPForAnswer(mode, 2, incorrect, 1.5, 12, hint)
				assert.GreaterOrEqual(t, got, hint)
			}
		}
	}
}
