package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
	"vocabclash/internal/srs"
)

const wordColumns = "v.id, v.word, v.definition, v.part_of_speech, v.example_sentence, v.created_at"

// WordRepository reads the vocabulary and the user's position in it
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *WordRepository) WithTx(tx database.DBTX) *WordRepository {
	return &WordRepository{db: tx}
}

// CreateWord adds a vocabulary entry
func (r *WordRepository) CreateWord(ctx context.Context, w *models.Word) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO vocabulary (word, definition, part_of_speech, example_sentence, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, w.Word, w.Definition, w.PartOfSpeech, w.ExampleSentence, w.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "create word %q", w.Word)
	}
	w.ID = id
	return nil
}

// GetWordByID retrieves a vocabulary entry by ID
func (r *WordRepository) GetWordByID(ctx context.Context, id int64) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, "SELECT "+wordColumns+" FROM vocabulary v WHERE v.id = ?", id)
	if err != nil {
		return nil, notFound(err, "get word")
	}
	return &w, nil
}

// CountWords returns the size of the vocabulary
func (r *WordRepository) CountWords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM vocabulary"); err != nil {
		return 0, errors.Wrap(err, "count words")
	}
	return count, nil
}

// ListWords returns the whole vocabulary ordered by id
func (r *WordRepository) ListWords(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	if err := r.db.SelectContext(ctx, &words, "SELECT "+wordColumns+" FROM vocabulary v ORDER BY v.id"); err != nil {
		return nil, errors.Wrap(err, "list words")
	}
	return words, nil
}

// dueRow is a vocabulary row joined with an optional review state
type dueRow struct {
	models.Word
	ReviewID       sql.NullInt64   `db:"review_id"`
	NextReviewDate sql.NullTime    `db:"next_review_date"`
	ReviewCount    sql.NullInt64   `db:"review_count"`
	EaseFactor     sql.NullFloat64 `db:"ease_factor"`
	ReviewInterval sql.NullInt64   `db:"review_interval"`
}

// GetDueWords returns up to limit words the user should study at now: words
// whose review date has passed and words the user has never seen. Unseen
// words are due at now with default scheduling values and sort as such.
func (r *WordRepository) GetDueWords(ctx context.Context, userID int64, now time.Time, limit int) ([]srs.DueWord, error) {
	query, args, err := builder.
		Select(wordColumns,
			"rs.id AS review_id", "rs.next_review_date", "rs.review_count",
			"rs.ease_factor", "rs.review_interval").
		From("vocabulary v").
		LeftJoin("review_states rs ON rs.vocab_id = v.id AND rs.user_id = ?", userID).
		Where(sq.Or{
			sq.Eq{"rs.id": nil},
			sq.LtOrEq{"rs.next_review_date": now},
		}).
		OrderByClause("COALESCE(rs.next_review_date, ?)", now).
		OrderBy("COALESCE(rs.review_count, 0)", "v.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build due words query")
	}

	var rows []dueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "get due words (user_id: %d)", userID)
	}

	words := make([]srs.DueWord, 0, len(rows))
	for _, row := range rows {
		due := srs.DueWord{
			Word:           row.Word,
			NextReviewDate: now,
			EaseFactor:     models.DefaultEaseFactor,
			IsNew:          !row.ReviewID.Valid,
		}
		if row.ReviewID.Valid {
			due.NextReviewDate = row.NextReviewDate.Time
			due.ReviewCount = int(row.ReviewCount.Int64)
			due.EaseFactor = row.EaseFactor.Float64
			due.ReviewInterval = int(row.ReviewInterval.Int64)
		}
		words = append(words, due)
	}
	srs.SortDue(words, now)
	return words, nil
}

// GetDifficultWords returns the words the user gets wrong most often, by
// error rate and then by number of mistakes.
func (r *WordRepository) GetDifficultWords(ctx context.Context, userID int64, limit int) ([]models.DifficultWord, error) {
	query, args, err := builder.
		Select(wordColumns, "rs.review_count", "rs.correct_count", "rs.incorrect_count").
		From("review_states rs").
		Join("vocabulary v ON v.id = rs.vocab_id").
		Where(sq.Eq{"rs.user_id": userID}).
		Where(sq.Gt{"rs.incorrect_count": 0}).
		OrderBy(
			"(rs.incorrect_count * 1.0) / (rs.correct_count + rs.incorrect_count) DESC",
			"rs.incorrect_count DESC",
			"v.id",
		).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build difficult words query")
	}

	var words []models.DifficultWord
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, errors.Wrapf(err, "get difficult words (user_id: %d)", userID)
	}
	return words, nil
}

// ImportWord writes a vocabulary entry with its original id, skipping duplicates
func (r *WordRepository) ImportWord(ctx context.Context, w models.Word) error {
	query := r.db.GetDialect().InsertIgnore("vocabulary",
		"id", "word", "definition", "part_of_speech", "example_sentence", "created_at")
	_, err := r.db.ExecContext(ctx, query, w.ID, w.Word, w.Definition, w.PartOfSpeech, w.ExampleSentence, w.CreatedAt)
	return errors.Wrapf(err, "import word (id: %d)", w.ID)
}
