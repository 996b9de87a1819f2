package repository

import (
	"context"

	"github.com/pkg/errors"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

const reviewColumns = `id, user_id, vocab_id, ease_factor, review_interval, next_review_date,
	review_count, correct_count, incorrect_count, is_known, last_reviewed, created_at, updated_at`

// ReviewRepository handles per-word spaced repetition state
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ReviewRepository) WithTx(tx database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

// GetReviewState returns the state of one word for one user
func (r *ReviewRepository) GetReviewState(ctx context.Context, userID, vocabID int64) (*models.ReviewState, error) {
	var state models.ReviewState
	err := r.db.GetContext(ctx, &state,
		"SELECT "+reviewColumns+" FROM review_states WHERE user_id = ? AND vocab_id = ?", userID, vocabID)
	if err != nil {
		return nil, notFound(err, "get review state")
	}
	return &state, nil
}

// SaveReviewState inserts a new state or updates an existing one
func (r *ReviewRepository) SaveReviewState(ctx context.Context, s *models.ReviewState) error {
	if s.IsNew() {
		id, err := r.db.ExecReturningID(ctx, `
			INSERT INTO review_states (user_id, vocab_id, ease_factor, review_interval, next_review_date,
				review_count, correct_count, incorrect_count, is_known, last_reviewed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.UserID, s.VocabID, s.EaseFactor, s.ReviewInterval, s.NextReviewDate,
			s.ReviewCount, s.CorrectCount, s.IncorrectCount, s.IsKnown, s.LastReviewed, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return errors.Wrapf(err, "insert review state (user_id: %d, vocab_id: %d)", s.UserID, s.VocabID)
		}
		s.ID = id
		return nil
	}

	query, args, err := builder.Update("review_states").
		Set("ease_factor", s.EaseFactor).
		Set("review_interval", s.ReviewInterval).
		Set("next_review_date", s.NextReviewDate).
		Set("review_count", s.ReviewCount).
		Set("correct_count", s.CorrectCount).
		Set("incorrect_count", s.IncorrectCount).
		Set("is_known", s.IsKnown).
		Set("last_reviewed", s.LastReviewed).
		Set("updated_at", s.UpdatedAt).
		Where("id = ?", s.ID).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build review state update")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "update review state (id: %d)", s.ID)
	}
	return nil
}

// ImportReviewState writes a state with its original id, skipping duplicates
func (r *ReviewRepository) ImportReviewState(ctx context.Context, s models.ReviewState) error {
	query := r.db.GetDialect().InsertIgnore("review_states",
		"id", "user_id", "vocab_id", "ease_factor", "review_interval", "next_review_date",
		"review_count", "correct_count", "incorrect_count", "is_known", "last_reviewed", "created_at", "updated_at")
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.VocabID, s.EaseFactor, s.ReviewInterval, s.NextReviewDate,
		s.ReviewCount, s.CorrectCount, s.IncorrectCount, s.IsKnown, s.LastReviewed, s.CreatedAt, s.UpdatedAt)
	return errors.Wrapf(err, "import review state (id: %d)", s.ID)
}

// ListReviewStates returns every review state, optionally restricted to one user
// when userID is non-zero
func (r *ReviewRepository) ListReviewStates(ctx context.Context, userID int64) ([]models.ReviewState, error) {
	q := builder.Select(reviewColumns).From("review_states").OrderBy("id")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build review states query")
	}

	var states []models.ReviewState
	if err := r.db.SelectContext(ctx, &states, query, args...); err != nil {
		return nil, errors.Wrap(err, "list review states")
	}
	return states, nil
}

// GetWordStats aggregates the user's review states
func (r *ReviewRepository) GetWordStats(ctx context.Context, userID int64) (models.WordStats, error) {
	known := r.db.GetDialect().BoolValue(true)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN is_known = ` + known + ` THEN 1 ELSE 0 END), 0) AS words_learned,
			COUNT(*) AS words_started,
			COALESCE(SUM(review_count), 0) AS total_reviews,
			COALESCE(SUM(correct_count), 0) AS total_correct,
			COALESCE(SUM(incorrect_count), 0) AS total_incorrect
		FROM review_states
		WHERE user_id = ?
	`

	var stats models.WordStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return models.WordStats{}, errors.Wrapf(err, "get word stats (user_id: %d)", userID)
	}
	return stats, nil
}
