package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
	"vocabclash/internal/validation"
)

// EndResult summarizes a finished session
type EndResult struct {
	Session           *models.StudySession `json:"session"`
	XPEarned          int                  `json:"xp_earned"`
	LeveledUp         bool                 `json:"leveled_up"`
	NewLevel          int                  `json:"new_level"`
	NewAchievementIDs []string             `json:"new_achievements"`
	Perfect           bool                 `json:"perfect"`
	AlreadyEnded      bool                 `json:"already_ended"`
}

// ActiveSessionResult is the user's open session, if any
type ActiveSessionResult struct {
	Session      *models.StudySession `json:"session"`
	AuthTimedOut bool                 `json:"-"`
}

// SessionService manages the lifecycle of study sessions
type SessionService struct {
	db          *database.DB
	catalog     *gamification.Catalog
	locks       *UserLocks
	idleTimeout time.Duration
	authTimeout time.Duration
	now         Clock
}

// NewSessionService creates a new session service
func NewSessionService(db *database.DB, catalog *gamification.Catalog, locks *UserLocks) *SessionService {
	return &SessionService{
		db:          db,
		catalog:     catalog,
		locks:       locks,
		idleTimeout: gamification.DefaultSessionIdleTimeout,
		authTimeout: gamification.DefaultAuthIdleTimeout,
		now:         UTCClock,
	}
}

// SetIdleTimeouts overrides the session idle limits
func (s *SessionService) SetIdleTimeouts(idle, auth time.Duration) {
	s.idleTimeout = idle
	s.authTimeout = auth
}

// StartSession opens a session in mode. If the user already has an active
// session that is still fresh it is returned unchanged; a stale one is closed
// first.
func (s *SessionService) StartSession(ctx context.Context, userID int64, mode models.StudyMode) (*models.StudySession, error) {
	if err := validation.ValidateMode(mode); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	var session *models.StudySession
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := repository.NewSessionRepository(tx)

		active, _, err := s.activeSession(ctx, sessions, userID, now)
		if err != nil {
			return err
		}
		if active != nil {
			session = active
			return nil
		}

		session = gamification.NewSession(userID, mode, now)
		return sessions.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	zap.S().Infow("Study session started", "user_id", userID, "session_id", session.ID, "mode", session.Mode)
	return session, nil
}

// EndSession closes the user's session, merging the client's totals when the
// server recorded no answers. A perfect tally of recorded answers counts
// towards the perfectionist achievements; client totals never do. Ending a
// session twice returns its stored summary without side effects.
func (s *SessionService) EndSession(ctx context.Context, userID, sessionID int64, totals models.SessionTotals) (*EndResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	var result *EndResult
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := repository.NewSessionRepository(tx)
		progression := repository.NewProgressionRepository(tx)

		session, err := sessions.GetSessionByID(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && session.UserID != userID) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		if !session.IsActive() {
			result = &EndResult{
				Session:           session,
				XPEarned:          session.XPEarned,
				Perfect:           session.Perfect,
				AlreadyEnded:      true,
				NewAchievementIDs: []string{},
			}
			return nil
		}

		if err := gamification.EndSession(session, totals, now); err != nil {
			return err
		}
		if err := sessions.UpdateSession(ctx, session); err != nil {
			return err
		}

		result = &EndResult{
			Session:           session,
			XPEarned:          session.XPEarned,
			Perfect:           session.Perfect,
			NewAchievementIDs: []string{},
		}
		if !result.Perfect {
			return nil
		}

		state, err := loadProgression(ctx, progression, userID, now)
		if err != nil {
			return err
		}
		levelBefore := gamification.LevelForXP(state.TotalXP)
		gamification.RecordPerfectSession(state)

		applied, _, err := evaluateAchievements(ctx, tx, s.catalog, state, now)
		if err != nil {
			return err
		}
		state.UpdatedAt = now
		if err := progression.SaveProgression(ctx, state); err != nil {
			return err
		}

		result.NewLevel = gamification.LevelForXP(state.TotalXP)
		result.LeveledUp = result.NewLevel > levelBefore
		result.NewAchievementIDs = unlockIDs(applied)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyEnded {
		zap.S().Infow("Study session ended",
			"user_id", userID,
			"session_id", sessionID,
			"cards", result.Session.CardsReviewed,
			"correct", result.Session.CorrectAnswers,
			"perfect", result.Perfect)
	}
	return result, nil
}

// GetActiveSession returns the user's open session. A session found stale is
// closed at its last interaction and reported as absent; AuthTimedOut is set
// when it idled past the authentication limit.
func (s *SessionService) GetActiveSession(ctx context.Context, userID int64) (*ActiveSessionResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	result := &ActiveSessionResult{}
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		active, st, err := s.activeSession(ctx, repository.NewSessionRepository(tx), userID, now)
		if err != nil {
			return err
		}
		result.Session = active
		result.AuthTimedOut = st.AuthTimedOut
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SweepStaleSessions closes every active session that has been idle past the
// limit and returns how many were closed.
func (s *SessionService) SweepStaleSessions(ctx context.Context) (int, error) {
	now := s.now()
	idle, err := repository.NewSessionRepository(s.db).ListIdleSessions(ctx, now.Add(-s.idleTimeout))
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, candidate := range idle {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		ok, err := s.closeIfStale(ctx, candidate.UserID, candidate.ID, now)
		if err != nil {
			zap.S().Errorw("Failed to close stale session",
				"session_id", candidate.ID,
				"user_id", candidate.UserID,
				"error", err)
			continue
		}
		if ok {
			closed++
		}
	}

	if closed > 0 {
		zap.S().Infow("Closed stale sessions", "count", closed)
	}
	return closed, nil
}

func (s *SessionService) closeIfStale(ctx context.Context, userID, sessionID int64, now time.Time) (bool, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	closed := false
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := repository.NewSessionRepository(tx)
		session, err := sessions.GetSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		st := gamification.CheckStaleness(session, now, s.idleTimeout, s.authTimeout)
		if !st.Stale {
			return nil
		}
		gamification.ForceEnd(session, st)
		closed = true
		return sessions.UpdateSession(ctx, session)
	})
	return closed, err
}

// activeSession loads the user's open session and closes it when stale. The
// returned session is nil if there is none or it was just closed.
func (s *SessionService) activeSession(ctx context.Context, sessions *repository.SessionRepository, userID int64, now time.Time) (*models.StudySession, gamification.Staleness, error) {
	active, err := sessions.GetActiveSession(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, gamification.Staleness{}, nil
	}
	if err != nil {
		return nil, gamification.Staleness{}, err
	}

	st := gamification.CheckStaleness(active, now, s.idleTimeout, s.authTimeout)
	if !st.Stale {
		return active, st, nil
	}

	gamification.ForceEnd(active, st)
	if err := sessions.UpdateSession(ctx, active); err != nil {
		return nil, st, err
	}
	zap.S().Infow("Closed stale session",
		"user_id", userID,
		"session_id", active.ID,
		"ended_at", st.EndedAt,
		"auth_timed_out", st.AuthTimedOut)
	return nil, st, nil
}
