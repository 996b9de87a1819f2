// Package gamification turns study events into XP, levels, streaks and
// achievements, and aggregates answers into study sessions.
//
// The functions here are deterministic and never touch storage. Callers own
// persistence and must serialize updates for the same user.
package gamification

import (
	"math"

	"vocabclash/internal/models"
)

// Base XP per study mode
const (
	PracticeXP = 10
	QuizXP     = 15
	TypingXP   = 20
)

const (
	difficultEaseThreshold = 2.0
	difficultEaseBonus     = 1.2
	retentionInterval      = 7
	retentionBonus         = 1.15
)

// BaseXP returns the XP a correct answer is worth in mode before bonuses
func BaseXP(mode models.StudyMode) int {
	switch mode {
	case models.ModeQuiz:
		return QuizXP
	case models.ModeTyping:
		return TypingXP
	default:
		return PracticeXP
	}
}

// XPForAnswer calculates the XP for a correct answer.
//
// Words with a history of mistakes pay more (1 + errorRate*0.5 once the word
// has more than one prior attempt), hard words (ease below 2.0) pay 20% more
// and well retained words (interval of a week or more) pay 15% more. The
// product is rounded once. The client's own estimate acts as a floor.
//
// All counters must be the values from before the current answer.
func XPForAnswer(mode models.StudyMode, priorCorrect, priorIncorrect int, ease float64, interval, clientSuggestedXP int) int {
	xp := float64(BaseXP(mode))

	attempts := priorCorrect + priorIncorrect
	if attempts > 1 {
		errorRate := float64(priorIncorrect) / float64(attempts)
		xp *= 1 + errorRate*0.5
	}
	if ease < difficultEaseThreshold {
		xp *= difficultEaseBonus
	}
	if interval >= retentionInterval {
		xp *= retentionBonus
	}

	earned := int(math.Round(xp))
	if clientSuggestedXP > earned {
		return clientSuggestedXP
	}
	return earned
}
