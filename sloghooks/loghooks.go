package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/recordcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ recordcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CacheHit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("recordcache.hit",
		"type", recordcache.KeyType(key),
		"key", h.redact(key))
}

func (h *Hooks) CacheMiss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("recordcache.miss",
		"type", recordcache.KeyType(key),
		"key", h.redact(key))
}

func (h *Hooks) CacheUnavailable(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("recordcache.cache_unavailable",
		"type", recordcache.KeyType(key),
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("recordcache.decode_failed",
		"type", recordcache.KeyType(key),
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) CacheWriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("recordcache.write_failed",
		"type", recordcache.KeyType(key),
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("recordcache.provider_set_rejected",
		"type", recordcache.KeyType(key),
		"key", h.redact(key))
}
