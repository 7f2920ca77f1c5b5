package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unkn0wn-root/recordcache"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recordcache.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Cache.Host != "localhost" || cfg.Cache.Port != 6379 || cfg.Codec != "json" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
cache:
  host: cache.internal
store:
  driver: postgres
  dsn: postgres://localhost/app
codec: msgpack
types:
  - name: Product
    keys: [enterprise_id, uid]
    ttl: 15
  - name: Category
    keys: [id]
`)
	t.Setenv("RECORDCACHE_CACHE_PORT", "6380")
	t.Setenv("RECORDCACHE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Host != "cache.internal" || cfg.Cache.Port != 6380 {
		t.Fatalf("cache: %+v", cfg.Cache)
	}
	if cfg.Cache.Backend != "redis" {
		t.Fatalf("unset fields keep defaults, got backend %q", cfg.Cache.Backend)
	}
	if cfg.LogLevel != "debug" || cfg.Codec != "msgpack" {
		t.Fatalf("level=%q codec=%q", cfg.LogLevel, cfg.Codec)
	}

	tc, ok := cfg.Type("Product")
	if !ok {
		t.Fatalf("Product type missing")
	}
	want := recordcache.RecordType{Name: "Product", Keys: []string{"enterprise_id", "uid"}, TTL: 15}
	if diff := cmp.Diff(want, tc.RecordType()); diff != "" {
		t.Fatalf("RecordType (-want +got):\n%s", diff)
	}
	if tc.TableName() != "products" {
		t.Fatalf("TableName: %q", tc.TableName())
	}
	if c, _ := cfg.Type("Category"); c.TableName() != "categories" {
		t.Fatalf("Category table: %q", c.TableName())
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Codec = "xml"
	cfg.Store.Driver = "mysql"
	cfg.Types = []TypeConfig{{Name: "Product"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"codec", "store.driver", "at least one key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestBadEnvPort(t *testing.T) {
	t.Setenv("RECORDCACHE_CACHE_PORT", "redis")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}

func TestTableNameOverride(t *testing.T) {
	tc := TypeConfig{Name: "OrderLine", Table: "sales.order_lines"}
	if tc.TableName() != "sales.order_lines" {
		t.Fatalf("override ignored: %q", tc.TableName())
	}
	if (TypeConfig{Name: "OrderLine"}).TableName() != "order_lines" {
		t.Fatalf("derived: %q", (TypeConfig{Name: "OrderLine"}).TableName())
	}
}
