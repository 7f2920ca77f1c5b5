// Package provider defines the byte store behind recordcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for a key. No prepended metadata, no
// re-encoding, no mutation. Internal transforms (e.g. compression) must be
// fully reversed on Get.
//
// Keys are written verbatim ("<Type>::<attr>::<value>…"); external tooling
// may read them directly, so providers must not rewrite or prefix them.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}
