package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

var sessionColumns = []string{
	"id", "user_id", "mode", "started_at", "ended_at",
	"cards_reviewed", "correct_answers", "xp_earned", "perfect", "updated_at",
}

// SessionRepository handles study session database operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *SessionRepository) WithTx(tx database.DBTX) *SessionRepository {
	return &SessionRepository{db: tx}
}

// CreateSession stores a new session and sets its ID
func (r *SessionRepository) CreateSession(ctx context.Context, s *models.StudySession) error {
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO study_sessions (user_id, mode, started_at, ended_at, cards_reviewed, correct_answers, xp_earned, perfect, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.UserID, s.Mode, s.StartedAt, s.EndedAt, s.CardsReviewed, s.CorrectAnswers, s.XPEarned, s.Perfect, s.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "create session (user_id: %d)", s.UserID)
	}
	s.ID = id
	return nil
}

func (r *SessionRepository) getOne(ctx context.Context, where sq.Sqlizer) (*models.StudySession, error) {
	query, args, err := builder.Select(sessionColumns...).From("study_sessions").Where(where).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build session query")
	}

	var s models.StudySession
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		return nil, notFound(err, "get session")
	}
	return &s, nil
}

// GetSessionByID retrieves a session by ID
func (r *SessionRepository) GetSessionByID(ctx context.Context, id int64) (*models.StudySession, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetActiveSession returns the user's session that has not ended yet
func (r *SessionRepository) GetActiveSession(ctx context.Context, userID int64) (*models.StudySession, error) {
	return r.getOne(ctx, sq.Eq{"user_id": userID, "ended_at": nil})
}

// UpdateSession writes the counters, perfect flag, end time and watermark of a session
func (r *SessionRepository) UpdateSession(ctx context.Context, s *models.StudySession) error {
	query, args, err := builder.Update("study_sessions").
		Set("cards_reviewed", s.CardsReviewed).
		Set("correct_answers", s.CorrectAnswers).
		Set("xp_earned", s.XPEarned).
		Set("perfect", s.Perfect).
		Set("ended_at", s.EndedAt).
		Set("updated_at", s.UpdatedAt).
		Where("id = ?", s.ID).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build session update")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "update session (id: %d)", s.ID)
	}
	return nil
}

// ListIdleSessions returns active sessions whose last interaction is at or
// before cutoff
func (r *SessionRepository) ListIdleSessions(ctx context.Context, cutoff time.Time) ([]models.StudySession, error) {
	query, args, err := builder.Select(sessionColumns...).
		From("study_sessions").
		Where(sq.Eq{"ended_at": nil}).
		Where(sq.LtOrEq{"updated_at": cutoff}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build idle sessions query")
	}

	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, errors.Wrap(err, "list idle sessions")
	}
	return sessions, nil
}

// ListEndedSessions returns the user's finished sessions, newest first
func (r *SessionRepository) ListEndedSessions(ctx context.Context, userID int64) ([]models.StudySession, error) {
	query, args, err := builder.Select(sessionColumns...).
		From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.NotEq{"ended_at": nil}).
		OrderBy("started_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build ended sessions query")
	}

	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, errors.Wrapf(err, "list ended sessions (user_id: %d)", userID)
	}
	return sessions, nil
}

// ListSessions returns every session ordered by id
func (r *SessionRepository) ListSessions(ctx context.Context) ([]models.StudySession, error) {
	query, args, err := builder.Select(sessionColumns...).From("study_sessions").OrderBy("id").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sessions query")
	}

	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	return sessions, nil
}

// ImportSession writes a session with its original id, skipping duplicates
func (r *SessionRepository) ImportSession(ctx context.Context, s models.StudySession) error {
	query := r.db.GetDialect().InsertIgnore("study_sessions", sessionColumns...)
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.Mode, s.StartedAt, s.EndedAt,
		s.CardsReviewed, s.CorrectAnswers, s.XPEarned, s.Perfect, s.UpdatedAt)
	return errors.Wrapf(err, "import session (id: %d)", s.ID)
}
