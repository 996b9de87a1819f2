package repository

import (
	"context"

	"github.com/pkg/errors"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

const progressionColumns = "user_id, total_xp, daily_streak, last_visit_date, perfect_session_count, created_at, updated_at"

// ProgressionRepository handles XP, streaks and unlocked achievements
type ProgressionRepository struct {
	db database.DBTX
}

// NewProgressionRepository creates a new progression repository
func NewProgressionRepository(db database.DBTX) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ProgressionRepository) WithTx(tx database.DBTX) *ProgressionRepository {
	return &ProgressionRepository{db: tx}
}

// GetProgression loads a user's progression including unlocked achievements
func (r *ProgressionRepository) GetProgression(ctx context.Context, userID int64) (*models.ProgressionState, error) {
	var state models.ProgressionState
	err := r.db.GetContext(ctx, &state,
		"SELECT "+progressionColumns+" FROM user_progression WHERE user_id = ?", userID)
	if err != nil {
		return nil, notFound(err, "get progression")
	}
	state.MarkPersisted()

	unlocked, err := r.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.UnlockedAchievements = make(map[string]bool, len(unlocked))
	for _, a := range unlocked {
		state.UnlockedAchievements[a.AchievementID] = true
	}
	return &state, nil
}

// SaveProgression inserts or updates the progression row. Achievements are
// stored separately with AddAchievement.
func (r *ProgressionRepository) SaveProgression(ctx context.Context, s *models.ProgressionState) error {
	if s.IsNew() {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO user_progression (user_id, total_xp, daily_streak, last_visit_date, perfect_session_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, s.UserID, s.TotalXP, s.DailyStreak, s.LastVisitDate, s.PerfectSessionCount, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return errors.Wrapf(err, "insert progression (user_id: %d)", s.UserID)
		}
		s.MarkPersisted()
		return nil
	}

	query, args, err := builder.Update("user_progression").
		Set("total_xp", s.TotalXP).
		Set("daily_streak", s.DailyStreak).
		Set("last_visit_date", s.LastVisitDate).
		Set("perfect_session_count", s.PerfectSessionCount).
		Set("updated_at", s.UpdatedAt).
		Where("user_id = ?", s.UserID).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build progression update")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "update progression (user_id: %d)", s.UserID)
	}
	return nil
}

// ImportProgression writes a progression row, skipping users that already have one
func (r *ProgressionRepository) ImportProgression(ctx context.Context, s models.ProgressionState) error {
	query := r.db.GetDialect().InsertIgnore("user_progression",
		"user_id", "total_xp", "daily_streak", "last_visit_date", "perfect_session_count", "created_at", "updated_at")
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.TotalXP, s.DailyStreak, s.LastVisitDate, s.PerfectSessionCount, s.CreatedAt, s.UpdatedAt)
	return errors.Wrapf(err, "import progression (user_id: %d)", s.UserID)
}

// ListProgressions returns every stored progression ordered by user
func (r *ProgressionRepository) ListProgressions(ctx context.Context) ([]models.ProgressionState, error) {
	var states []models.ProgressionState
	if err := r.db.SelectContext(ctx, &states,
		"SELECT "+progressionColumns+" FROM user_progression ORDER BY user_id"); err != nil {
		return nil, errors.Wrap(err, "list progressions")
	}
	return states, nil
}

// AddAchievement records an unlocked achievement. Adding an id twice is a no-op.
func (r *ProgressionRepository) AddAchievement(ctx context.Context, a models.UnlockedAchievement) error {
	query := r.db.GetDialect().InsertIgnore("user_achievements", "user_id", "achievement_id", "xp_reward", "unlocked_at")
	if _, err := r.db.ExecContext(ctx, query, a.UserID, a.AchievementID, a.XPReward, a.UnlockedAt); err != nil {
		return errors.Wrapf(err, "add achievement %s (user_id: %d)", a.AchievementID, a.UserID)
	}
	return nil
}

// ListAchievements returns achievements in unlock order. A zero userID lists
// them for every user.
func (r *ProgressionRepository) ListAchievements(ctx context.Context, userID int64) ([]models.UnlockedAchievement, error) {
	q := builder.Select("user_id", "achievement_id", "xp_reward", "unlocked_at").
		From("user_achievements").
		OrderBy("user_id", "unlocked_at", "achievement_id")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build achievements query")
	}

	var achievements []models.UnlockedAchievement
	if err := r.db.SelectContext(ctx, &achievements, query, args...); err != nil {
		return nil, errors.Wrapf(err, "list achievements (user_id: %d)", userID)
	}
	return achievements, nil
}
