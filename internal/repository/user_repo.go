package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

// UserRepository reads accounts owned by the authentication layer
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx database.DBTX) *UserRepository {
	return &UserRepository{db: tx}
}

// CreateUser stores an account row. Used by imports and development tooling.
func (r *UserRepository) CreateUser(ctx context.Context, email, name string) (*models.User, error) {
	now := time.Now().UTC()
	id, err := r.db.ExecReturningID(ctx,
		"INSERT INTO users (email, name, created_at) VALUES (?, ?, ?)", email, name, now)
	if err != nil {
		return nil, errors.Wrapf(err, "create user %s", email)
	}
	return &models.User{ID: id, Email: email, Name: name, CreatedAt: now}, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, "SELECT id, email, name, created_at FROM users WHERE id = ?", id); err != nil {
		return nil, notFound(err, "get user")
	}
	return &u, nil
}

// ListUsers returns every user ordered by id
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT id, email, name, created_at FROM users ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// ImportUser writes a user with its original id, skipping duplicates
func (r *UserRepository) ImportUser(ctx context.Context, u models.User) error {
	query := r.db.GetDialect().InsertIgnore("users", "id", "email", "name", "created_at")
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.CreatedAt)
	return errors.Wrapf(err, "import user (id: %d)", u.ID)
}

// ListStreakReminders returns users with a running streak whose last study
// day was lastVisitDate
func (r *UserRepository) ListStreakReminders(ctx context.Context, lastVisitDate string) ([]models.StreakReminder, error) {
	query, args, err := builder.
		Select("u.id AS user_id", "u.email", "u.name", "p.daily_streak").
		From("user_progression p").
		Join("users u ON u.id = p.user_id").
		Where("p.last_visit_date = ?", lastVisitDate).
		Where("p.daily_streak > 0").
		Where("u.email <> ''").
		OrderBy("u.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build streak reminder query")
	}

	var reminders []models.StreakReminder
	if err := r.db.SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, errors.Wrap(err, "list streak reminders")
	}
	return reminders, nil
}
