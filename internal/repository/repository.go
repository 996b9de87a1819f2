// Package repository persists review, progression and session state.
//
// Repositories work against database.DBTX so the same repository can run on
// the connection pool or inside a transaction (see WithTx).
package repository

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// builder renders ? placeholders; the dialect rewrites them when needed
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}
