// Package tx runs a function inside a database/sql transaction with the
// project's default timeout and rollback discipline. SQL stores build their
// RunInTx on top of Run.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "secretsanta/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Run begins a transaction, hands it to fn and commits when fn returns nil.
// Any error from fn, a cancelled context, or a failed commit leaves nothing
// applied.
func Run(ctx context.Context, db *sql.DB, timeout time.Duration, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(sqlTx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
