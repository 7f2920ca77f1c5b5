// Package config loads recordcachectl settings from YAML with RECORDCACHE_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/recordcache"
)

// CacheConfig selects and addresses the cache backend.
type CacheConfig struct {
	Backend  string `yaml:"backend"` // redis | ristretto | bigcache
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StoreConfig addresses the backing record store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`
}

// TypeConfig declares a record type and the table holding it.
type TypeConfig struct {
	Name          string   `yaml:"name"`
	Keys          []string `yaml:"keys"`
	TTL           int      `yaml:"ttl"` // minutes
	EnterpriseKey string   `yaml:"enterprise_key"`
	Table         string   `yaml:"table"`
}

type Config struct {
	Cache    CacheConfig  `yaml:"cache"`
	Store    StoreConfig  `yaml:"store"`
	Codec    string       `yaml:"codec"`
	LogLevel string       `yaml:"log_level"`
	Types    []TypeConfig `yaml:"types"`
}

var (
	backends = []string{"redis", "ristretto", "bigcache"}
	drivers  = []string{"sqlite", "postgres"}
	codecs   = []string{"json", "sonic", "msgpack", "cbor"}
	levels   = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: "redis",
			Host:    "localhost",
			Port:    6379,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "recordcache.db",
		},
		Codec:    "json",
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("RECORDCACHE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("RECORDCACHE_CACHE_HOST"); v != "" {
		cfg.Cache.Host = v
	}
	if v := os.Getenv("RECORDCACHE_CACHE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RECORDCACHE_CACHE_PORT: %w", err)
		}
		cfg.Cache.Port = port
	}
	if v := os.Getenv("RECORDCACHE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("RECORDCACHE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("RECORDCACHE_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("RECORDCACHE_CODEC"); v != "" {
		cfg.Codec = v
	}
	if v := os.Getenv("RECORDCACHE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Load reads path (optional) and applies env overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if !oneOf(c.Cache.Backend, backends) {
		errs = append(errs, fmt.Errorf("cache.backend %q: want one of %s", c.Cache.Backend, strings.Join(backends, ", ")))
	}
	if c.Cache.Backend == "redis" && (c.Cache.Port <= 0 || c.Cache.Port > 65535) {
		errs = append(errs, fmt.Errorf("cache.port %d out of range", c.Cache.Port))
	}
	if !oneOf(c.Store.Driver, drivers) {
		errs = append(errs, fmt.Errorf("store.driver %q: want one of %s", c.Store.Driver, strings.Join(drivers, ", ")))
	}
	if c.Store.DSN == "" {
		errs = append(errs, errors.New("store.dsn is required"))
	}
	if !oneOf(c.Codec, codecs) {
		errs = append(errs, fmt.Errorf("codec %q: want one of %s", c.Codec, strings.Join(codecs, ", ")))
	}
	if !oneOf(c.LogLevel, levels) {
		errs = append(errs, fmt.Errorf("log_level %q: want one of %s", c.LogLevel, strings.Join(levels, ", ")))
	}
	seen := map[string]bool{}
	for _, t := range c.Types {
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("types: duplicate %q", t.Name))
		}
		seen[t.Name] = true
		if err := t.RecordType().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Type returns the declared type named name.
func (c *Config) Type(name string) (TypeConfig, bool) {
	for _, t := range c.Types {
		if t.Name == name {
			return t, true
		}
	}
	return TypeConfig{}, false
}

func (t TypeConfig) RecordType() recordcache.RecordType {
	return recordcache.RecordType{
		Name:          t.Name,
		Keys:          append([]string(nil), t.Keys...),
		TTL:           t.TTL,
		EnterpriseKey: t.EnterpriseKey,
	}
}

// TableName is Table, or the snake_case plural of Name.
func (t TypeConfig) TableName() string {
	if t.Table != "" {
		return t.Table
	}
	return snakePlural(t.Name)
}

func snakePlural(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	s := b.String()
	switch {
	case strings.HasSuffix(s, "s"):
		return s + "es"
	case strings.HasSuffix(s, "y"):
		return strings.TrimSuffix(s, "y") + "ies"
	}
	return s + "s"
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
