package service

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
	"vocabclash/internal/srs"
	"vocabclash/internal/validation"
)

// AnswerInput is one answered flashcard
type AnswerInput struct {
	WordID         int64            `json:"vocabId"`
	Correct        *bool            `json:"correct"`
	Mode           models.StudyMode `json:"mode"`
	ClientXP       int              `json:"xpEarned"`
	ResponseTimeMs *int             `json:"responseTime,omitempty"`
}

func (in AnswerInput) validate() error {
	if err := validation.ValidateWordID(in.WordID); err != nil {
		return err
	}
	if err := validation.ValidateCorrect(in.Correct); err != nil {
		return err
	}
	if err := validation.ValidateMode(in.Mode); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("xpEarned", in.ClientXP); err != nil {
		return err
	}
	if in.ResponseTimeMs != nil {
		return validation.ValidateNonNegative("responseTime", *in.ResponseTimeMs)
	}
	return nil
}

// AnswerResult is the outcome of a submitted answer
type AnswerResult struct {
	XPEarned          int       `json:"xp_earned"`
	AchievementXP     int       `json:"achievement_xp"`
	TotalXP           int       `json:"total_xp"`
	LeveledUp         bool      `json:"leveled_up"`
	NewLevel          int       `json:"new_level"`
	NewAchievementIDs []string  `json:"new_achievements"`
	CurrentStreak     int       `json:"current_streak"`
	NextReviewDate    time.Time `json:"next_review_date"`
	Interval          int       `json:"interval"`
	EaseFactor        float64   `json:"ease_factor"`
}

// ProgressService records answers and serves due words
type ProgressService struct {
	db          *database.DB
	catalog     *gamification.Catalog
	locks       *UserLocks
	idleTimeout time.Duration
	authTimeout time.Duration
	now         Clock
}

// NewProgressService creates a new progress service
func NewProgressService(db *database.DB, catalog *gamification.Catalog, locks *UserLocks) *ProgressService {
	return &ProgressService{
		db:          db,
		catalog:     catalog,
		locks:       locks,
		idleTimeout: gamification.DefaultSessionIdleTimeout,
		authTimeout: gamification.DefaultAuthIdleTimeout,
		now:         UTCClock,
	}
}

// SetIdleTimeouts overrides the session idle limits
func (s *ProgressService) SetIdleTimeouts(idle, auth time.Duration) {
	s.idleTimeout = idle
	s.authTimeout = auth
}

// SubmitAnswer schedules the word's next review, credits XP, updates the
// streak, evaluates achievements and counts the answer in the user's active
// session. Either all of it is stored or nothing is.
func (s *ProgressService) SubmitAnswer(ctx context.Context, userID int64, in AnswerInput) (*AnswerResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	correct := *in.Correct

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	var result *AnswerResult
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		words := repository.NewWordRepository(tx)
		reviews := repository.NewReviewRepository(tx)
		progression := repository.NewProgressionRepository(tx)
		sessions := repository.NewSessionRepository(tx)

		if _, err := words.GetWordByID(ctx, in.WordID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWordNotFound
			}
			return err
		}

		review, err := reviews.GetReviewState(ctx, userID, in.WordID)
		if errors.Is(err, repository.ErrNotFound) {
			review = models.NewReviewState(userID, in.WordID, now)
		} else if err != nil {
			return err
		}

		quality := srs.QualityFromAnswer(correct)
		if in.ResponseTimeMs != nil {
			quality = srs.QualityFromResponse(correct, time.Duration(*in.ResponseTimeMs)*time.Millisecond)
		}
		schedule, err := srs.NextReview(quality, review.EaseFactor, review.ReviewInterval, review.ReviewCount, now)
		if err != nil {
			return err
		}

		xp := 0
		if correct {
			xp = gamification.XPForAnswer(in.Mode, review.CorrectCount, review.IncorrectCount,
				review.EaseFactor, review.ReviewInterval, in.ClientXP)
		}

		applyReview(review, correct, schedule, now)
		if err := reviews.SaveReviewState(ctx, review); err != nil {
			return err
		}

		state, err := loadProgression(ctx, progression, userID, now)
		if err != nil {
			return err
		}
		levelBefore := gamification.LevelForXP(state.TotalXP)
		streak := gamification.UpdateStreak(state, gamification.Today(now))
		if _, _, err := gamification.AddXP(state, xp); err != nil {
			return err
		}

		applied, rewardXP, err := evaluateAchievements(ctx, tx, s.catalog, state, now)
		if err != nil {
			return err
		}

		state.UpdatedAt = now
		if err := progression.SaveProgression(ctx, state); err != nil {
			return err
		}

		if err := s.recordInSession(ctx, sessions, userID, correct, xp, now); err != nil {
			return err
		}

		levelAfter := gamification.LevelForXP(state.TotalXP)
		result = &AnswerResult{
			XPEarned:          xp,
			AchievementXP:     rewardXP,
			TotalXP:           state.TotalXP,
			LeveledUp:         levelAfter > levelBefore,
			NewLevel:          levelAfter,
			NewAchievementIDs: unlockIDs(applied),
			CurrentStreak:     streak,
			NextReviewDate:    schedule.NextDate,
			Interval:          schedule.Interval,
			EaseFactor:        schedule.Ease,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.S().Debugw("Answer recorded",
		"user_id", userID,
		"vocab_id", in.WordID,
		"correct", correct,
		"xp", result.XPEarned,
		"interval", result.Interval)
	if result.LeveledUp {
		zap.S().Infow("User leveled up", "user_id", userID, "level", result.NewLevel)
	}
	return result, nil
}

// recordInSession counts the answer in the user's active session, if any. A
// session that went stale before this answer is closed instead.
func (s *ProgressService) recordInSession(ctx context.Context, sessions *repository.SessionRepository, userID int64, correct bool, xp int, now time.Time) error {
	active, err := sessions.GetActiveSession(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if st := gamification.CheckStaleness(active, now, s.idleTimeout, s.authTimeout); st.Stale {
		gamification.ForceEnd(active, st)
		return sessions.UpdateSession(ctx, active)
	}
	if err := gamification.RecordAnswer(active, correct, xp, now); err != nil {
		return err
	}
	return sessions.UpdateSession(ctx, active)
}

// GetDueWords returns up to limit words the user should study now
func (s *ProgressService) GetDueWords(ctx context.Context, userID int64, limit int) ([]srs.DueWord, error) {
	if limit <= 0 {
		return nil, validation.ValidationError{Field: "limit", Message: "must be positive"}
	}
	return repository.NewWordRepository(s.db).GetDueWords(ctx, userID, s.now(), limit)
}

// applyReview writes an answer and its schedule onto the review state
func applyReview(review *models.ReviewState, correct bool, schedule srs.Schedule, now time.Time) {
	review.ReviewCount++
	if correct {
		review.CorrectCount++
	} else {
		review.IncorrectCount++
	}
	review.IsKnown = correct
	review.EaseFactor = schedule.Ease
	review.ReviewInterval = schedule.Interval
	review.NextReviewDate = schedule.NextDate
	reviewed := now
	review.LastReviewed = &reviewed
	review.UpdatedAt = now
}

// loadProgression returns the user's stored progression or a fresh one
func loadProgression(ctx context.Context, repo *repository.ProgressionRepository, userID int64, now time.Time) (*models.ProgressionState, error) {
	state, err := repo.GetProgression(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewProgressionState(userID, now), nil
	}
	return state, err
}

// evaluateAchievements checks the catalog once and records every new unlock.
// Reward XP is added to state but not evaluated again until the next event.
func evaluateAchievements(ctx context.Context, tx database.DBTX, catalog *gamification.Catalog, state *models.ProgressionState, now time.Time) ([]gamification.Unlock, int, error) {
	stats, err := repository.NewReviewRepository(tx).GetWordStats(ctx, state.UserID)
	if err != nil {
		return nil, 0, err
	}

	snapshot := gamification.SnapshotOf(state, stats.TotalCorrect, stats.WordsLearned)
	unlocks := catalog.CheckNewAchievements(snapshot, state.UnlockedAchievements)
	applied, rewardXP, err := gamification.ApplyUnlocks(state, unlocks)
	if err != nil {
		return nil, 0, err
	}

	progression := repository.NewProgressionRepository(tx)
	for _, u := range applied {
		err := progression.AddAchievement(ctx, models.UnlockedAchievement{
			UserID:        state.UserID,
			AchievementID: u.ID,
			XPReward:      u.XPReward,
			UnlockedAt:    now,
		})
		if err != nil {
			return nil, 0, err
		}
		zap.S().Infow("Achievement unlocked",
			"user_id", state.UserID,
			"achievement", u.ID,
			"xp_reward", u.XPReward)
	}
	return applied, rewardXP, nil
}

func unlockIDs(unlocks []gamification.Unlock) []string {
	ids := make([]string, 0, len(unlocks))
	for _, u := range unlocks {
		ids = append(ids, u.ID)
	}
	return ids
}

func sortedAchievementIDs(state *models.ProgressionState) []string {
	ids := state.AchievementIDs()
	sort.Strings(ids)
	return ids
}
