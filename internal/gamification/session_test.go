package gamification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabclash/internal/models"
	"vocabclash/internal/validation"
)

var sessionStart = time.Date(2024, 4, 2, 17, 0, 0, 0, time.UTC)

func TestNewSession(t *testing.T) {
	s := NewSession(3, models.ModeQuiz, sessionStart)

	assert.Equal(t, int64(3), s.UserID)
	assert.Equal(t, models.ModeQuiz, s.Mode)
	assert.Equal(t, sessionStart, s.StartedAt)
	assert.Equal(t, sessionStart, s.UpdatedAt)
	assert.True(t, s.IsActive())
	assert.Zero(t, s.CardsReviewed)
}

func TestRecordAnswer(t *testing.T) {
	s := NewSession(1, models.ModePractice, sessionStart)

	require.NoError(t, RecordAnswer(s, true, 10, sessionStart.Add(time.Minute)))
	require.NoError(t, RecordAnswer(s, false, 0, sessionStart.Add(2*time.Minute)))
	require.NoError(t, RecordAnswer(s, true, 13, sessionStart.Add(3*time.Minute)))

	assert.Equal(t, 3, s.CardsReviewed)
	assert.Equal(t, 2, s.CorrectAnswers)
	assert.Equal(t, 23, s.XPEarned)
	assert.Equal(t, sessionStart.Add(3*time.Minute), s.UpdatedAt)
}

func TestRecordAnswerOnEndedSession(t *testing.T) {
	s := NewSession(1, models.ModePractice, sessionStart)
	require.NoError(t, EndSession(s, models.SessionTotals{}, sessionStart.Add(time.Minute)))

	err := RecordAnswer(s, true, 10, sessionStart.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrSessionNotActive)
	assert.Zero(t, s.CardsReviewed)
}

func TestEndSessionPrefersServerAggregate(t *testing.T) {
	s := NewSession(1, models.ModeTyping, sessionStart)
	require.NoError(t, RecordAnswer(s, true, 20, sessionStart.Add(time.Minute)))
	require.NoError(t, RecordAnswer(s, true, 20, sessionStart.Add(2*time.Minute)))

	end := sessionStart.Add(5 * time.Minute)
	require.NoError(t, EndSession(s, models.SessionTotals{CardsReviewed: 50, CorrectAnswers: 50, XPEarned: 9000}, end))

	assert.Equal(t, 2, s.CardsReviewed)
	assert.Equal(t, 2, s.CorrectAnswers)
	assert.Equal(t, 40, s.XPEarned)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, end, *s.EndedAt)
	assert.Equal(t, sessionStart.Add(2*time.Minute), s.UpdatedAt)
}

func TestEndSessionUsesClientTotalsWithoutAnswers(t *testing.T) {
	s := NewSession(1, models.ModeQuiz, sessionStart)

	require.NoError(t, EndSession(s, models.SessionTotals{CardsReviewed: 10, CorrectAnswers: 10, XPEarned: 150}, sessionStart.Add(time.Minute)))

	assert.Equal(t, 10, s.CardsReviewed)
	assert.Equal(t, 10, s.CorrectAnswers)
	assert.Equal(t, 150, s.XPEarned)
	assert.False(t, s.Perfect)
}

func TestEndSessionPerfectFromRecordedAnswers(t *testing.T) {
	tests := []struct {
		name    string
		correct []bool
		perfect bool
	}{
		{"ten of ten", []bool{true, true, true, true, true, true, true, true, true, true}, true},
		{"nine of nine", []bool{true, true, true, true, true, true, true, true, true}, false},
		{"ten with a miss", []bool{true, true, true, true, false, true, true, true, true, true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(1, models.ModeQuiz, sessionStart)
			for i, c := range tt.correct {
				require.NoError(t, RecordAnswer(s, c, 15, sessionStart.Add(time.Duration(i)*time.Minute)))
			}

			require.NoError(t, EndSession(s, models.SessionTotals{CardsReviewed: 10, CorrectAnswers: 10}, sessionStart.Add(time.Hour)))
			assert.Equal(t, tt.perfect, s.Perfect)
			assert.Equal(t, len(tt.correct), s.CardsReviewed)
		})
	}
}

func TestEndSessionRejectsInvalidTotals(t *testing.T) {
	s := NewSession(1, models.ModeQuiz, sessionStart)

	err := EndSession(s, models.SessionTotals{CardsReviewed: 2, CorrectAnswers: 5}, sessionStart.Add(time.Minute))

	var verr validation.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, s.IsActive())
}

func TestEndSessionTwice(t *testing.T) {
	s := NewSession(1, models.ModeQuiz, sessionStart)
	require.NoError(t, EndSession(s, models.SessionTotals{}, sessionStart.Add(time.Minute)))

	err := EndSession(s, models.SessionTotals{CardsReviewed: 1}, sessionStart.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionNotActive)
	assert.Equal(t, sessionStart.Add(time.Minute), *s.EndedAt)
}

func TestCheckStaleness(t *testing.T) {
	tests := []struct {
		name     string
		idle     time.Duration
		wantSt   bool
		wantAuth bool
	}{
		{name: "fresh", idle: 5 * time.Minute},
		{name: "just below idle limit", idle: 29*time.Minute + 59*time.Second},
		{name: "at idle limit", idle: 30 * time.Minute, wantSt: true},
		{name: "idle but signed in", idle: 45 * time.Minute, wantSt: true},
		{name: "auth timed out", idle: 60 * time.Minute, wantSt: true, wantAuth: true},
		{name: "long gone", idle: 26 * time.Hour, wantSt: true, wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(1, models.ModePractice, sessionStart)
			lastAnswer := sessionStart.Add(10 * time.Minute)
			require.NoError(t, RecordAnswer(s, true, 10, lastAnswer))

			got := CheckStaleness(s, lastAnswer.Add(tt.idle), DefaultSessionIdleTimeout, DefaultAuthIdleTimeout)
			assert.Equal(t, tt.wantSt, got.Stale)
			assert.Equal(t, tt.wantAuth, got.AuthTimedOut)
			if tt.wantSt {
				assert.Equal(t, lastAnswer, got.EndedAt)
			}
		})
	}
}

func TestCheckStalenessIgnoresEndedSession(t *testing.T) {
	s := NewSession(1, models.ModePractice, sessionStart)
	require.NoError(t, EndSession(s, models.SessionTotals{}, sessionStart.Add(time.Minute)))

	assert.Equal(t, Staleness{}, CheckStaleness(s, sessionStart.Add(48*time.Hour), DefaultSessionIdleTimeout, DefaultAuthIdleTimeout))
}

func TestForceEnd(t *testing.T) {
	s := NewSession(1, models.ModePractice, sessionStart)
	for i := 0; i < 10; i++ {
		require.NoError(t, RecordAnswer(s, true, 10, sessionStart.Add(time.Duration(i)*time.Minute)))
	}

	st := CheckStaleness(s, sessionStart.Add(2*time.Hour), DefaultSessionIdleTimeout, DefaultAuthIdleTimeout)
	ForceEnd(s, st)

	require.NotNil(t, s.EndedAt)
	assert.Equal(t, sessionStart.Add(9*time.Minute), *s.EndedAt)
	assert.Equal(t, 10, s.CardsReviewed)
	assert.False(t, s.Perfect)

	ForceEnd(s, Staleness{Stale: true, EndedAt: sessionStart.Add(5 * time.Hour)})
	assert.Equal(t, sessionStart.Add(9*time.Minute), *s.EndedAt)
}

func TestPerfectSessionCounting(t *testing.T) {
	state := models.NewProgressionState(1, sessionStart)

	tenOfTen := NewSession(1, models.ModeQuiz, sessionStart)
	for i := 0; i < 10; i++ {
		require.NoError(t, RecordAnswer(tenOfTen, true, 15, sessionStart))
	}
	require.NoError(t, EndSession(tenOfTen, models.SessionTotals{}, sessionStart.Add(time.Minute)))
	if IsPerfect(tenOfTen.CardsReviewed, tenOfTen.CorrectAnswers) {
		RecordPerfectSession(state)
	}
	assert.Equal(t, 1, state.PerfectSessionCount)

	nineOfNine := NewSession(1, models.ModeQuiz, sessionStart)
	for i := 0; i < 9; i++ {
		require.NoError(t, RecordAnswer(nineOfNine, true, 15, sessionStart))
	}
	require.NoError(t, EndSession(nineOfNine, models.SessionTotals{}, sessionStart.Add(time.Minute)))
	if IsPerfect(nineOfNine.CardsReviewed, nineOfNine.CorrectAnswers) {
		RecordPerfectSession(state)
	}
	assert.Equal(t, 1, state.PerfectSessionCount)
}
