package database

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations executes every embedded SQL migration for the connection's
// dialect that has not run yet, in filename order.
func (db *DB) RunMigrations(ctx context.Context) error {
	sub, err := fs.Sub(migrationFiles, path.Join("migrations", db.Dialect.MigrationsSubdir()))
	if err != nil {
		return errors.Wrap(err, "failed to open migrations")
	}
	return db.runMigrations(ctx, sub)
}

func (db *DB) runMigrations(ctx context.Context, fsys fs.FS) error {
	// Create migrations table if it doesn't exist
	if _, err := db.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read migration files")
	}
	sort.Strings(files)

	for _, filename := range files {
		hasRun, err := db.hasMigrationRun(ctx, filename)
		if err != nil {
			return errors.Wrap(err, "failed to check migration status")
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file %s", filename)
		}

		// Migration bodies contain no placeholders, so they bypass rewriting
		if _, err := db.DB.ExecContext(ctx, string(content)); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", filename)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO migrations (filename) VALUES (?)", filename); err != nil {
			return errors.Wrapf(err, "failed to record migration %s", filename)
		}

		zap.S().Infow("migration completed", "file", filename, "dialect", db.Dialect.MigrationsSubdir())
	}

	return nil
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(ctx context.Context, filename string) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM migrations WHERE filename = ?", filename); err != nil {
		return false, err
	}
	return count > 0, nil
}
