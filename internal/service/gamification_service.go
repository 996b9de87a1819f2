package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
	"vocabclash/internal/validation"
)

const recentSessionCount = 5

// Summary is the progression header shown to a user
type Summary struct {
	gamification.LevelProgress
	DailyStreak     int      `json:"daily_streak"`
	StreakAtRisk    bool     `json:"streak_at_risk"`
	PerfectSessions int      `json:"perfect_sessions"`
	Achievements    []string `json:"achievements"`
}

// GamificationService serves read-only views of a user's progress
type GamificationService struct {
	db      *database.DB
	catalog *gamification.Catalog
	now     Clock
}

// NewGamificationService creates a new gamification service
func NewGamificationService(db *database.DB, catalog *gamification.Catalog) *GamificationService {
	return &GamificationService{db: db, catalog: catalog, now: UTCClock}
}

func (s *GamificationService) progression(ctx context.Context, userID int64) (*models.ProgressionState, error) {
	return loadProgression(ctx, repository.NewProgressionRepository(s.db), userID, s.now())
}

// GetSummary returns level progress, the streak as of today and unlocked
// achievement ids. Reading never changes the stored streak.
func (s *GamificationService) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	state, err := s.progression(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := gamification.Today(s.now())
	return &Summary{
		LevelProgress:   gamification.LevelProgressFor(state.TotalXP),
		DailyStreak:     gamification.EffectiveStreak(state, today),
		StreakAtRisk:    gamification.StreakAtRisk(state, today),
		PerfectSessions: state.PerfectSessionCount,
		Achievements:    sortedAchievementIDs(state),
	}, nil
}

// GetAchievements lists every catalog entry with the user's progress on it
func (s *GamificationService) GetAchievements(ctx context.Context, userID int64) ([]gamification.AchievementStatus, error) {
	var (
		state *models.ProgressionState
		stats models.WordStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		state, err = s.progression(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats, err = repository.NewReviewRepository(s.db).GetWordStats(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := gamification.Today(s.now())
	snapshot := gamification.SnapshotOf(state, stats.TotalCorrect, stats.WordsLearned)
	snapshot.DailyStreak = gamification.EffectiveStreak(state, today)
	return s.catalog.AchievementStatuses(state.UnlockedAchievements, snapshot), nil
}

// GetStats returns the study overview of a user
func (s *GamificationService) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var (
		state      *models.ProgressionState
		words      models.WordStats
		totalWords int
		sessions   []models.StudySession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		state, err = s.progression(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		words, err = repository.NewReviewRepository(s.db).GetWordStats(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		totalWords, err = repository.NewWordRepository(s.db).CountWords(gctx)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = repository.NewSessionRepository(s.db).ListEndedSessions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		Level:          gamification.LevelForXP(state.TotalXP),
		TotalXP:        state.TotalXP,
		DailyStreak:    gamification.EffectiveStreak(state, gamification.Today(s.now())),
		Achievements:   sortedAchievementIDs(state),
		TotalWords:     totalWords,
		Words:          words,
		Accuracy:       words.Accuracy(),
		TotalSessions:  len(sessions),
		RecentSessions: []models.SessionSummary{},
	}

	var studied int
	for i, session := range sessions {
		studied += int(session.Duration().Minutes())
		if i < recentSessionCount {
			stats.RecentSessions = append(stats.RecentSessions, models.SessionSummary{
				StartedAt: session.StartedAt,
				Mode:      session.Mode,
				XPEarned:  session.XPEarned,
				Duration:  session.Duration(),
			})
		}
	}
	stats.StudyMinutes = studied
	if len(sessions) > 0 {
		stats.AvgSessionMins = studied / len(sessions)
		last := sessions[0].StartedAt
		stats.LastStudy = &last
	}
	return stats, nil
}

// GetDifficultWords returns the user's most missed words
func (s *GamificationService) GetDifficultWords(ctx context.Context, userID int64, limit int) ([]models.DifficultWord, error) {
	if limit <= 0 {
		return nil, validation.ValidationError{Field: "limit", Message: "must be positive"}
	}
	return repository.NewWordRepository(s.db).GetDifficultWords(ctx, userID, limit)
}
