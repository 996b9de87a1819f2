package gamification

import (
	"time"

	"github.com/pkg/errors"

	"vocabclash/internal/models"
	"vocabclash/internal/validation"
)

// Idle limits for study sessions
const (
	DefaultSessionIdleTimeout = 30 * time.Minute
	DefaultAuthIdleTimeout    = 60 * time.Minute
)

// ErrSessionNotActive is returned when a finished session receives an update
var ErrSessionNotActive = errors.New("session is not active")

// NewSession starts a session with zeroed counters
func NewSession(userID int64, mode models.StudyMode, now time.Time) *models.StudySession {
	return &models.StudySession{
		UserID:    userID,
		Mode:      mode,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// RecordAnswer adds one answered card to an active session and moves its
// last-interaction watermark.
func RecordAnswer(s *models.StudySession, correct bool, xp int, now time.Time) error {
	if !s.IsActive() {
		return ErrSessionNotActive
	}
	s.CardsReviewed++
	if correct {
		s.CorrectAnswers++
	}
	if xp > 0 {
		s.XPEarned += xp
	}
	s.UpdatedAt = now
	return nil
}

// EndSession closes an active session. Counters aggregated from recorded
// answers take precedence; the client's totals are only used when the server
// saw no answers for the session. Only a server-recorded tally can mark the
// session perfect.
func EndSession(s *models.StudySession, totals models.SessionTotals, now time.Time) error {
	if !s.IsActive() {
		return ErrSessionNotActive
	}
	serverRecorded := s.CardsReviewed > 0
	if !serverRecorded {
		if err := validation.ValidateSessionTotals(totals); err != nil {
			return err
		}
		s.CardsReviewed = totals.CardsReviewed
		s.CorrectAnswers = totals.CorrectAnswers
		s.XPEarned = totals.XPEarned
	}
	s.Perfect = serverRecorded && IsPerfect(s.CardsReviewed, s.CorrectAnswers)
	ended := now
	s.EndedAt = &ended
	return nil
}

// Staleness is the outcome of an idle check
type Staleness struct {
	Stale        bool
	EndedAt      time.Time
	AuthTimedOut bool
}

// CheckStaleness reports whether an active session has been idle for at least
// idle. A stale session should be ended at its last interaction. Idling for
// authIdle also signals that the user's authentication has timed out.
func CheckStaleness(s *models.StudySession, now time.Time, idle, authIdle time.Duration) Staleness {
	if !s.IsActive() {
		return Staleness{}
	}
	elapsed := now.Sub(s.UpdatedAt)
	if elapsed < idle {
		return Staleness{}
	}
	return Staleness{
		Stale:        true,
		EndedAt:      s.UpdatedAt,
		AuthTimedOut: elapsed >= authIdle,
	}
}

// ForceEnd closes a stale session at its last interaction without merging
// any client totals.
func ForceEnd(s *models.StudySession, st Staleness) {
	if !st.Stale || !s.IsActive() {
		return
	}
	ended := st.EndedAt
	s.EndedAt = &ended
}
