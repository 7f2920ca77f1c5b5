package gormstore

import (
	"context"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unkn0wn-root/recordcache"
	"github.com/unkn0wn-root/recordcache/codec"
	"github.com/unkn0wn-root/recordcache/provider/ristretto"
)

type Product struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	EnterpriseID int64  `gorm:"uniqueIndex:idx_product_key" json:"enterprise_id"`
	UID          string `gorm:"uniqueIndex:idx_product_key" json:"uid"`
	Name         string `json:"name"`
}

var productType = recordcache.RecordType{Name: "Product", Keys: []string{"enterprise_id", "uid"}}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("auto migrate products: %v", err)
	}
	return db
}

func TestQueryAndSave(t *testing.T) {
	ctx := context.Background()
	st := New[Product](setupDB(t))

	got, err := st.Query(ctx, productType, recordcache.Where("enterprise_id", 1))
	if err != nil || len(got) != 0 {
		t.Fatalf("Query empty table: %v %v", got, err)
	}

	a, err := st.Save(ctx, productType, Product{EnterpriseID: 1, UID: "a", Name: "lamp"})
	if err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("saved record must carry its id: %+v", a)
	}
	if _, err := st.Save(ctx, productType, Product{EnterpriseID: 1, UID: "b", Name: "desk"}); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	got, err = st.Query(ctx, productType, recordcache.Where("enterprise_id", 1))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %+v", got)
	}

	got, err = st.Query(ctx, productType, recordcache.Where("enterprise_id", 1).And("uid", "a"))
	if err != nil {
		t.Fatalf("Query one: %v", err)
	}
	if diff := cmp.Diff([]Product{a}, got); diff != "" {
		t.Fatalf("Query one (-want +got):\n%s", diff)
	}
}

func TestSaveUpsertsOnKeyColumns(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	st := New[Product](db)

	first, err := st.Save(ctx, productType, Product{EnterpriseID: 2, UID: "x", Name: "old"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := st.Save(ctx, productType, Product{EnterpriseID: 2, UID: "x", Name: "new"})
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if second.ID != first.ID || second.Name != "new" {
		t.Fatalf("expected in-place update, first=%+v second=%+v", first, second)
	}

	var n int64
	if err := db.Model(&Product{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 row after upsert, got %d", n)
	}
}

func TestWithTable(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	err := db.Exec(`CREATE TABLE archived_products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		enterprise_id INTEGER NOT NULL,
		uid TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		UNIQUE (enterprise_id, uid))`).Error
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	st := New[Product](db, WithTable("archived_products"))
	if _, err := st.Save(ctx, productType, Product{EnterpriseID: 3, UID: "z"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	live, err := New[Product](db).Query(ctx, productType, recordcache.Where("enterprise_id", 3))
	if err != nil || len(live) != 0 {
		t.Fatalf("default table must stay empty: %v %v", live, err)
	}
	archived, err := st.Query(ctx, productType, recordcache.Where("enterprise_id", 3))
	if err != nil || len(archived) != 1 {
		t.Fatalf("archive: %v %v", archived, err)
	}
}

func TestModelOverGormStore(t *testing.T) {
	ctx := context.Background()
	p, err := ristretto.New(ristretto.Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, CostBySize: true})
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	h := recordcache.NewHandle(nil)
	if err := h.Use(p); err != nil {
		t.Fatalf("Use: %v", err)
	}
	defer h.Close(ctx)

	products, err := recordcache.New[Product](recordcache.Options[Product]{
		Type:   productType,
		Handle: h,
		Store:  New[Product](setupDB(t)),
		Codec:  codec.Msgpack[Product]{JSONTags: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	args := recordcache.Where("enterprise_id", 4).And("uid", "q")
	res, err := products.FindOrCreate(ctx, args, recordcache.Where("name", "chair"))
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	created, ok := res.One()
	if !ok || created.ID == 0 || created.Name != "chair" {
		t.Fatalf("created %+v ok=%v", created, ok)
	}
	p.Wait()

	res, err = products.FindOrCreateOrUpdate(ctx, args, recordcache.Where("name", "stool"))
	if err != nil {
		t.Fatalf("FindOrCreateOrUpdate: %v", err)
	}
	updated, _ := res.One()
	if updated.ID != created.ID || updated.Name != "stool" {
		t.Fatalf("updated %+v, created %+v", updated, created)
	}
}
