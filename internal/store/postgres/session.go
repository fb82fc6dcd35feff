package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/importdata/internal/store"
)

type session struct {
	pool       *pgxpool.Pool
	tx         pgx.Tx
	closed     bool
	savepoints int
}

var _ store.Session = (*session)(nil)

// conn returns the open transaction, starting one if needed.
func (s *session) conn(ctx context.Context) (pgx.Tx, error) {
	if s.closed {
		return nil, store.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.tx == nil {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "begin transaction")
		}
		s.tx = tx
	}
	return s.tx, nil
}

// write runs fn inside a savepoint. On failure the savepoint is rolled
// back and the transaction stays usable.
func (s *session) write(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn(ctx)
	if err != nil {
		return err
	}

	s.savepoints++
	name := fmt.Sprintf("sp_%d", s.savepoints)
	if _, err := tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return errors.Wrap(err, "create savepoint")
	}
	if err := fn(tx); err != nil {
		_, _ = tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name)
		return mapPgError(err)
	}
	_, _ = tx.Exec(ctx, "RELEASE SAVEPOINT "+name)
	return nil
}

func (s *session) Commit(ctx context.Context) error {
	if s.closed {
		return store.ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (s *session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(err, "rollback")
	}
	return nil
}

// mapPgError turns driver errors the handlers care about into store errors.
func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23503": // foreign_key_violation
		return errors.Wrapf(err, "violates foreign key %s", pgErr.ConstraintName)
	case "23505": // unique_violation
		return errors.Wrapf(err, "duplicate key %s", pgErr.ConstraintName)
	default:
		return err
	}
}

// where accumulates SQL conditions. Each "?" in a condition is replaced by
// the next positional parameter.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) empty() bool { return len(w.conds) == 0 }

// sql joins the conditions with op ("AND" or "OR").
func (w *where) sql(op string) string {
	if w.empty() {
		return ""
	}
	return " WHERE (" + strings.Join(w.conds, ") "+op+" (") + ")"
}

// normalized is the SQL form of store.NormalizeName applied to expr.
func normalized(expr string) string {
	return fmt.Sprintf(`lower(regexp_replace(btrim(%s), '\s+', ' ', 'g'))`, expr)
}

// upsertSQL builds an insert that overwrites every column on id conflict.
func upsertSQL(table string, cols []string) string {
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

// query runs a select on the session transaction and collects every row.
func query[T any](ctx context.Context, s *session, sql string, args []any, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// get runs a single-row select, mapping no rows to store.ErrNotFound.
func get[T any](ctx context.Context, s *session, sql string, args []any, scan func(pgx.Row) (*T, error)) (*T, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	v, err := scan(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return v, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
