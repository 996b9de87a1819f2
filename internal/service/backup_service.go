package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
)

// BackupVersion is the format version written by Export
const BackupVersion = "1.0"

// BackupData represents the complete learning-data backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Users        []UserBackup        `json:"users"`
	Words        []WordBackup        `json:"words"`
	ReviewStates []ReviewStateBackup `json:"review_states"`
	Progressions []ProgressionBackup `json:"progressions"`
	Achievements []AchievementBackup `json:"achievements"`
	Sessions     []SessionBackup     `json:"sessions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WordBackup represents a vocabulary entry for backup
type WordBackup struct {
	ID              int64     `json:"id"`
	Word            string    `json:"word"`
	Definition      string    `json:"definition"`
	PartOfSpeech    string    `json:"part_of_speech"`
	ExampleSentence string    `json:"example_sentence"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReviewStateBackup represents a review state for backup
type ReviewStateBackup struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	VocabID        int64      `json:"vocab_id"`
	EaseFactor     float64    `json:"ease_factor"`
	ReviewInterval int        `json:"review_interval"`
	NextReviewDate time.Time  `json:"next_review_date"`
	ReviewCount    int        `json:"review_count"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	IsKnown        bool       `json:"is_known"`
	LastReviewed   *time.Time `json:"last_reviewed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProgressionBackup represents a user's progression for backup
type ProgressionBackup struct {
	UserID              int64     `json:"user_id"`
	TotalXP             int       `json:"total_xp"`
	DailyStreak         int       `json:"daily_streak"`
	LastVisitDate       string    `json:"last_visit_date"`
	PerfectSessionCount int       `json:"perfect_session_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// AchievementBackup represents an unlocked achievement for backup
type AchievementBackup = models.UnlockedAchievement

// SessionBackup represents a study session for backup
type SessionBackup = models.StudySession

// sequencedTables are the tables whose ids are preserved on import
var sequencedTables = []string{"users", "vocabulary", "review_states", "study_sessions"}

// BackupService handles backup and restore of learning data
type BackupService struct {
	db  *database.DB
	now Clock
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db, now: UTCClock}
}

// Export collects every user, word, review state, progression, achievement
// and session
func (s *BackupService) Export(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now(),
		DatabaseType: "universal",
	}

	users, err := repository.NewUserRepository(s.db).ListUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to export users")
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt})
	}

	words, err := repository.NewWordRepository(s.db).ListWords(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to export words")
	}
	for _, w := range words {
		backup.Words = append(backup.Words, WordBackup(w))
	}

	states, err := repository.NewReviewRepository(s.db).ListReviewStates(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to export review states")
	}
	for _, r := range states {
		backup.ReviewStates = append(backup.ReviewStates, ReviewStateBackup(r))
	}

	progression := repository.NewProgressionRepository(s.db)
	progressions, err := progression.ListProgressions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to export progressions")
	}
	for _, p := range progressions {
		backup.Progressions = append(backup.Progressions, ProgressionBackup{
			UserID:              p.UserID,
			TotalXP:             p.TotalXP,
			DailyStreak:         p.DailyStreak,
			LastVisitDate:       p.LastVisitDate,
			PerfectSessionCount: p.PerfectSessionCount,
			CreatedAt:           p.CreatedAt,
			UpdatedAt:           p.UpdatedAt,
		})
	}

	if backup.Achievements, err = progression.ListAchievements(ctx, 0); err != nil {
		return nil, errors.Wrap(err, "failed to export achievements")
	}
	if backup.Sessions, err = repository.NewSessionRepository(s.db).ListSessions(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to export sessions")
	}

	zap.S().Infow("Database exported",
		"users", len(backup.Users),
		"words", len(backup.Words),
		"review_states", len(backup.ReviewStates),
		"progressions", len(backup.Progressions),
		"achievements", len(backup.Achievements),
		"sessions", len(backup.Sessions))
	return backup, nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Export(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(backup), "failed to encode backup")
}

// Import restores a backup in one transaction. Rows whose key already exists
// are left untouched, so importing the same backup twice is harmless.
func (s *BackupService) Import(ctx context.Context, backup *BackupData) error {
	if backup.Version != BackupVersion {
		return errors.Errorf("unsupported backup version %q", backup.Version)
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		for _, u := range backup.Users {
			if err := users.ImportUser(ctx, models.User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}); err != nil {
				return err
			}
		}

		words := repository.NewWordRepository(tx)
		for _, w := range backup.Words {
			if err := words.ImportWord(ctx, models.Word(w)); err != nil {
				return err
			}
		}

		reviews := repository.NewReviewRepository(tx)
		for _, r := range backup.ReviewStates {
			if err := reviews.ImportReviewState(ctx, models.ReviewState(r)); err != nil {
				return err
			}
		}

		progression := repository.NewProgressionRepository(tx)
		for _, p := range backup.Progressions {
			err := progression.ImportProgression(ctx, models.ProgressionState{
				UserID:              p.UserID,
				TotalXP:             p.TotalXP,
				DailyStreak:         p.DailyStreak,
				LastVisitDate:       p.LastVisitDate,
				PerfectSessionCount: p.PerfectSessionCount,
				CreatedAt:           p.CreatedAt,
				UpdatedAt:           p.UpdatedAt,
			})
			if err != nil {
				return err
			}
		}
		for _, a := range backup.Achievements {
			if err := progression.AddAchievement(ctx, a); err != nil {
				return err
			}
		}

		sessions := repository.NewSessionRepository(tx)
		for _, session := range backup.Sessions {
			if err := sessions.ImportSession(ctx, session); err != nil {
				return err
			}
		}

		for _, table := range sequencedTables {
			query := tx.GetDialect().ResetSequence(table)
			if query == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return errors.Wrapf(err, "failed to reset sequence of %s", table)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	zap.S().Infow("Database imported",
		"users", len(backup.Users),
		"words", len(backup.Words),
		"review_states", len(backup.ReviewStates),
		"sessions", len(backup.Sessions))
	return nil
}

// ImportFromReader decodes a JSON backup and imports it
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return errors.Wrap(err, "failed to decode backup")
	}
	return s.Import(ctx, &backup)
}
