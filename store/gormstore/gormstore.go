// Package gormstore backs a record type with a gorm table.
//
// R must be a gorm model struct whose column names equal the record type's
// attribute names (gorm's default snake_case naming does this for
// EnterpriseID/UID/...). Save relies on ON CONFLICT over the key columns, so
// the table needs a primary key or unique index spanning exactly those columns.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unkn0wn-root/recordcache"
)

type Store[R any] struct {
	db    *gorm.DB
	table string
}

var _ recordcache.Store[struct{}] = (*Store[struct{}])(nil)

type Option func(*options)

type options struct {
	table string
}

// WithTable overrides the table gorm derives from R.
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

func New[R any](db *gorm.DB, opts ...Option) *Store[R] {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return &Store[R]{db: db, table: o.table}
}

func (s *Store[R]) session(ctx context.Context) *gorm.DB {
	tx := s.db.WithContext(ctx)
	if s.table != "" {
		return tx.Table(s.table)
	}
	return tx.Model(new(R))
}

// Query matches every attribute of f by equality. Rows come back in the
// database's natural order.
func (s *Store[R]) Query(ctx context.Context, rt recordcache.RecordType, f recordcache.Filter) ([]R, error) {
	var out []R
	if err := where(s.session(ctx), f).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("gormstore: query %s: %w", rt.Name, err)
	}
	return out, nil
}

// Save upserts rec on rt's key columns and returns the stored row.
func (s *Store[R]) Save(ctx context.Context, rt recordcache.RecordType, rec R) (R, error) {
	var zero R
	cols := make([]clause.Column, len(rt.Keys))
	for i, k := range rt.Keys {
		cols[i] = clause.Column{Name: k}
	}

	if err := s.clearSurrogateKeys(rt, &rec); err != nil {
		return zero, err
	}
	err := s.session(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return zero, fmt.Errorf("gormstore: save %s: %w", rt.Name, err)
	}

	key, err := keyFilter(rt, rec)
	if err != nil {
		return zero, err
	}
	var stored R
	if err := where(s.session(ctx), key).Take(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("gormstore: save %s: row vanished after upsert", rt.Name)
		}
		return zero, fmt.Errorf("gormstore: reload %s: %w", rt.Name, err)
	}
	return stored, nil
}

// clearSurrogateKeys zeroes primary key fields that are not key attributes,
// so the insert only conflicts on the key columns and an existing row keeps
// its own id.
func (s *Store[R]) clearSurrogateKeys(rt recordcache.RecordType, rec *R) error {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(rec); err != nil {
		return fmt.Errorf("gormstore: parse %s: %w", rt.Name, err)
	}
	rv := reflect.Indirect(reflect.ValueOf(rec))
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("gormstore: save %s: nil record", rt.Name)
		}
		rv = rv.Elem()
	}
	for _, f := range stmt.Schema.PrimaryFields {
		if rt.IsKey(f.DBName) {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.StructField.Index)
		if err != nil {
			return fmt.Errorf("gormstore: %s.%s: %w", rt.Name, f.Name, err)
		}
		fv.SetZero()
	}
	return nil
}

func where(tx *gorm.DB, f recordcache.Filter) *gorm.DB {
	for _, a := range f {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: a.Name}, Value: a.Value})
	}
	return tx
}

func keyFilter(rt recordcache.RecordType, rec any) (recordcache.Filter, error) {
	var f recordcache.Filter
	for _, k := range rt.Keys {
		v, ok := recordcache.AttributeOf(rec, k)
		if !ok {
			return nil, fmt.Errorf("gormstore: %s has no key attribute %q", rt.Name, k)
		}
		f = f.And(k, v)
	}
	return f, nil
}
