package repositories

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/reconcile"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned, wrapped, when a write hits a unique constraint.
var ErrConflict = reconcile.ErrConflict

// ErrNotFound is returned by writes that matched no row.
var ErrNotFound = reconcile.ErrNotFound

const uniqueViolation = "23505"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func wrapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s: %w", ErrConflict, pgErr.ConstraintName, err)
	}
	return err
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
