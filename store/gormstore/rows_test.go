package gormstore

import (
	"context"
	"testing"

	"github.com/unkn0wn-root/recordcache"
)

func TestRowStore(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	if err := db.Exec(`CREATE TABLE categories (id INTEGER PRIMARY KEY, label TEXT NOT NULL DEFAULT '')`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	rt := recordcache.RecordType{Name: "Category", Keys: []string{"id"}}
	st := NewRows(db, "categories")

	if _, err := st.Save(ctx, rt, recordcache.Row{"id": 1, "label": "tools"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := st.Save(ctx, rt, recordcache.Row{"id": 1, "label": "garden"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved["label"] != "garden" {
		t.Fatalf("upsert returned %v", saved)
	}

	rows, err := st.Query(ctx, rt, recordcache.Where("id", 1))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 || rows[0]["label"] != "garden" {
		t.Fatalf("rows %v", rows)
	}

	if _, err := st.Save(ctx, rt, recordcache.Row{"label": "x"}); err == nil {
		t.Fatalf("expected error for row without key")
	}
}
