package recordcache

import (
	"errors"
	"fmt"
	"time"
)

// RecordType names a persisted record shape and the ordered attributes that
// address its rows.
type RecordType struct {
	Name string   // first segment of every cache key
	Keys []string // key attribute names, in schema order; never empty

	// TTL is the cache lifetime in minutes. 0 => the record Go type's
	// TTLDeclarer value if any, else DefaultTTLMinutes.
	TTL int

	// EnterpriseKey names the enterprise-scoping key attribute used by
	// RecreateFrom. "" => DefaultEnterpriseKey.
	EnterpriseKey string
}

// TTLDeclarer lets a record Go type carry its own cache lifetime (minutes).
// It is consulted on the zero value, so implement it on the value receiver.
type TTLDeclarer interface {
	CacheTTL() int
}

func (rt RecordType) Validate() error {
	if rt.Name == "" {
		return errors.New("recordcache: record type name is required")
	}
	if len(rt.Keys) == 0 {
		return fmt.Errorf("recordcache: record type %s: at least one key attribute is required", rt.Name)
	}
	seen := make(map[string]struct{}, len(rt.Keys))
	for _, k := range rt.Keys {
		if k == "" {
			return fmt.Errorf("recordcache: record type %s: empty key attribute name", rt.Name)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("recordcache: record type %s: duplicate key attribute %q", rt.Name, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (rt RecordType) enterpriseKey() string {
	return coalesce(rt.EnterpriseKey, DefaultEnterpriseKey)
}

// IsKey reports whether name is one of the type's key attributes.
func (rt RecordType) IsKey(name string) bool {
	for _, k := range rt.Keys {
		if k == name {
			return true
		}
	}
	return false
}

// ResolveTTL returns the entry lifetime for rt in seconds. Non-positive
// overrides fall back to DefaultTTLMinutes.
func ResolveTTL(rt RecordType) int {
	minutes := rt.TTL
	if minutes <= 0 {
		minutes = DefaultTTLMinutes
	}
	return minutes * 60
}

// TTLSeconds is ResolveTTL(rt).
func (rt RecordType) TTLSeconds() int { return ResolveTTL(rt) }

// TTLDuration is the resolved TTL as handed to providers.
func (rt RecordType) TTLDuration() time.Duration {
	return time.Duration(ResolveTTL(rt)) * time.Second
}

// withDeclaredTTL fills rt.TTL from R when R (or *R) implements TTLDeclarer.
func withDeclaredTTL[R any](rt RecordType) RecordType {
	if rt.TTL != 0 {
		return rt
	}
	var zero R
	if d, ok := any(zero).(TTLDeclarer); ok {
		rt.TTL = d.CacheTTL()
		return rt
	}
	if d, ok := any(&zero).(TTLDeclarer); ok {
		rt.TTL = d.CacheTTL()
	}
	return rt
}
