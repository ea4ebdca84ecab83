// Package dbx holds the small database seams the repositories are written
// against: DBTX, satisfied by both *sql.DB and *sql.Tx, and WithTx for
// running multi-statement mutations atomically.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the query surface repositories depend on. Passing a *sql.Tx runs
// the repository inside that transaction; passing a *sql.DB runs it in
// auto-commit mode.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: committed when fn returns nil,
// rolled back when it returns an error or panics. Panics are re-raised
// after the rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
