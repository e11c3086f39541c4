package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// keyedRow is a row identified by a lookup predicate rather than by its id.
// build is only called when no row matches, so expensive values such as
// password hashes are computed once.
type keyedRow struct {
	table   string
	where   string
	keyArgs []any
	columns []string
	build   func() ([]any, error)
}

// ensureRow returns the id of the first row matching r.where, inserting one
// built by r.build when none exists. created reports whether it inserted.
func ensureRow(ctx context.Context, tx *sqlx.Tx, r keyedRow) (id int64, created bool, err error) {
	lookup := tx.Rebind(fmt.Sprintf(`SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1`, r.table, r.where))
	err = tx.GetContext(ctx, &id, lookup, r.keyArgs...)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("lookup %s: %w", r.table, err)
	}

	values, err := r.build()
	if err != nil {
		return 0, false, fmt.Errorf("build %s row: %w", r.table, err)
	}
	if len(values) != len(r.columns) {
		return 0, false, fmt.Errorf("build %s row: %d values for %d columns", r.table, len(values), len(r.columns))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.columns)), ", ")
	insert := tx.Rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		r.table, strings.Join(r.columns, ", "), placeholders))
	if err := tx.QueryRowxContext(ctx, insert, values...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("insert %s: %w", r.table, err)
	}
	return id, true, nil
}

// values adapts a fixed value list to keyedRow.build.
func values(v ...any) func() ([]any, error) {
	return func() ([]any, error) { return v, nil }
}

// anyRow reports whether table holds at least one row.
func anyRow(ctx context.Context, tx *sqlx.Tx, table string) (bool, error) {
	var one int
	err := tx.GetContext(ctx, &one, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, table))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", table, err)
	}
	return true, nil
}

// inTx runs fn inside a transaction and commits once when it succeeds.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
