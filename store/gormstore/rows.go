package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unkn0wn-root/recordcache"
)

// RowStore serves schemaless recordcache.Row records from a named table.
type RowStore struct {
	db    *gorm.DB
	table string
}

var _ recordcache.Store[recordcache.Row] = (*RowStore)(nil)

func NewRows(db *gorm.DB, table string) *RowStore {
	return &RowStore{db: db, table: table}
}

func (s *RowStore) Query(ctx context.Context, rt recordcache.RecordType, f recordcache.Filter) ([]recordcache.Row, error) {
	var ms []map[string]any
	if err := where(s.db.WithContext(ctx).Table(s.table), f).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("gormstore: query %s: %w", rt.Name, err)
	}
	out := make([]recordcache.Row, len(ms))
	for i, m := range ms {
		out[i] = recordcache.Row(m)
	}
	return out, nil
}

func (s *RowStore) Save(ctx context.Context, rt recordcache.RecordType, rec recordcache.Row) (recordcache.Row, error) {
	var updates []string
	key := make(recordcache.Filter, 0, len(rt.Keys))
	for _, k := range rt.Keys {
		v, ok := rec[k]
		if !ok {
			return nil, fmt.Errorf("gormstore: save %s: key attribute %q missing from row", rt.Name, k)
		}
		key = append(key, recordcache.Attr{Name: k, Value: v})
	}
	for _, a := range recordcache.Attributes(rec) {
		if !rt.IsKey(a.Name) {
			updates = append(updates, a.Name)
		}
	}

	conflict := clause.OnConflict{Columns: make([]clause.Column, len(rt.Keys))}
	for i, k := range rt.Keys {
		conflict.Columns[i] = clause.Column{Name: k}
	}
	if len(updates) > 0 {
		conflict.DoUpdates = clause.AssignmentColumns(updates)
	} else {
		conflict.DoNothing = true
	}

	values := map[string]any(rec)
	if err := s.db.WithContext(ctx).Table(s.table).Clauses(conflict).Create(values).Error; err != nil {
		return nil, fmt.Errorf("gormstore: save %s: %w", rt.Name, err)
	}

	stored := map[string]any{}
	if err := where(s.db.WithContext(ctx).Table(s.table), key).Take(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gormstore: save %s: row vanished after upsert", rt.Name)
		}
		return nil, fmt.Errorf("gormstore: reload %s: %w", rt.Name, err)
	}
	return recordcache.Row(stored), nil
}
