package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/task-manager/internal/repository"
)

// compile-time check that *Tx implements repository.Tx
var _ repository.Tx = (*Tx)(nil)

// Tx is one unit of work: a *sql.Tx plus the id it is logged under.
// The typed statements live in user.go and task.go.
type Tx struct {
	tx            *sql.Tx
	id            string
	logger        *slog.Logger
	logStatements bool
}

func (t *Tx) ID() string { return t.id }

// Commit durably applies everything written through t.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing unit of work %s: %w", t.id, err)
	}
	t.logger.Debug("unit of work committed", slog.String("uow", t.id))
	return nil
}

// Rollback discards everything written through t since Begin.
// After Commit (or a previous Rollback) it does nothing and returns nil.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite: rolling back unit of work %s: %w", t.id, err)
	}
	t.logger.Debug("unit of work rolled back", slog.String("uow", t.id))
	return nil
}

// exec runs an INSERT, UPDATE or DELETE inside the unit of work.
func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.logStatement(query, args)
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	t.logStatement(query, args)
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	t.logStatement(query, args)
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) logStatement(query string, args []any) {
	if !t.logStatements {
		return
	}
	t.logger.Debug("sql",
		slog.String("uow", t.id),
		slog.String("statement", strings.Join(strings.Fields(query), " ")),
		slog.Any("args", args),
	)
}

// affected turns a zero row count into NotFound. Update and delete statements
// match on id, so no affected rows means no such row.
func affected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// predicate is one "column = ?" term of a WHERE clause. column always comes
// from this package, never from the caller.
type predicate struct {
	column string
	value  any
}

// where joins the predicates with AND. No predicates means no WHERE at all.
func where(preds []predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		terms = append(terms, p.column+" = ?")
		args = append(args, p.value)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
