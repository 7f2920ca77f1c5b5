// Package pgstore backs a record type with a PostgreSQL table through pgx.
//
// Attribute names are column names. Save issues
//
//	INSERT ... ON CONFLICT (<key columns>) DO UPDATE ... RETURNING *
//
// so the table needs a primary key or unique constraint on exactly the
// record type's key columns.
package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/unkn0wn-root/recordcache"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store[R any] struct {
	db    Querier
	table string
	scan  pgx.RowToFunc[R]
	omit  map[string]struct{}
}

var _ recordcache.Store[struct{}] = (*Store[struct{}])(nil)

type Option[R any] func(*Store[R])

// WithScan replaces the row mapper. The default is pgx.RowToStructByName,
// which needs R to be a struct; use ScanRow for recordcache.Row.
func WithScan[R any](fn pgx.RowToFunc[R]) Option[R] {
	return func(s *Store[R]) { s.scan = fn }
}

// WithOmit leaves columns out of INSERT, e.g. serial ids filled by the database.
func WithOmit[R any](cols ...string) Option[R] {
	return func(s *Store[R]) {
		for _, c := range cols {
			s.omit[c] = struct{}{}
		}
	}
}

// New returns a store over table ("name" or "schema.name").
func New[R any](db Querier, table string, opts ...Option[R]) *Store[R] {
	s := &Store[R]{
		db:    db,
		table: table,
		scan:  pgx.RowToStructByName[R],
		omit:  map[string]struct{}{},
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// ScanRow maps a row onto recordcache.Row.
func ScanRow(row pgx.CollectableRow) (recordcache.Row, error) {
	m, err := pgx.RowToMap(row)
	if err != nil {
		return nil, err
	}
	return recordcache.Row(m), nil
}

func (s *Store[R]) Query(ctx context.Context, rt recordcache.RecordType, f recordcache.Filter) ([]R, error) {
	sql, args := selectSQL(s.table, f)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore: query %s: %w", rt.Name, err)
	}
	out, err := pgx.CollectRows(rows, s.scan)
	if err != nil {
		return nil, fmt.Errorf("pgstore: scan %s: %w", rt.Name, err)
	}
	return out, nil
}

func (s *Store[R]) Save(ctx context.Context, rt recordcache.RecordType, rec R) (R, error) {
	var zero R
	var cols recordcache.Filter
	for _, a := range recordcache.Attributes(rec) {
		if _, skip := s.omit[a.Name]; !skip {
			cols = append(cols, a)
		}
	}
	for _, k := range rt.Keys {
		if _, ok := cols.Get(k); !ok {
			return zero, fmt.Errorf("pgstore: save %s: key attribute %q missing from record", rt.Name, k)
		}
	}

	sql, args := upsertSQL(s.table, rt.Keys, cols)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return zero, fmt.Errorf("pgstore: save %s: %w", rt.Name, err)
	}
	saved, err := pgx.CollectExactlyOneRow(rows, s.scan)
	if err != nil {
		return zero, fmt.Errorf("pgstore: save %s: %w", rt.Name, err)
	}
	return saved, nil
}

func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// selectSQL renders an equality match on every attribute of f, in f's order.
func selectSQL(table string, f recordcache.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(ident(table))
	args := make([]any, 0, len(f))
	for i, a := range f {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if a.Value == nil {
			b.WriteString(pgx.Identifier{a.Name}.Sanitize())
			b.WriteString(" IS NULL")
			continue
		}
		args = append(args, a.Value)
		fmt.Fprintf(&b, "%s = $%d", pgx.Identifier{a.Name}.Sanitize(), len(args))
	}
	return b.String(), args
}

func upsertSQL(table string, keys []string, cols recordcache.Filter) (string, []any) {
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var sets []string
	for i, a := range cols {
		col := pgx.Identifier{a.Name}.Sanitize()
		names[i] = col
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = a.Value
		if !isKey[a.Name] {
			sets = append(sets, col+" = EXCLUDED."+col)
		}
	}
	conflict := make([]string, len(keys))
	for i, k := range keys {
		conflict[i] = pgx.Identifier{k}.Sanitize()
	}
	// keep DO UPDATE (not DO NOTHING) so RETURNING yields the existing row
	if len(sets) == 0 {
		sets = append(sets, conflict[0]+" = EXCLUDED."+conflict[0])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		ident(table),
		strings.Join(names, ", "),
		strings.Join(params, ", "),
		strings.Join(conflict, ", "),
		strings.Join(sets, ", "))
	return sql, args
}
