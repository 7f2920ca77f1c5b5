package recordcache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	pr "github.com/unkn0wn-root/recordcache/provider"
)

var (
	ErrNotConfigured     = errors.New("recordcache: cache handle not configured")
	ErrAlreadyConfigured = errors.New("recordcache: cache handle already configured")
	errNoDialer          = errors.New("recordcache: cache handle has no dialer")
)

// Dialer connects to a cache backend at host:port.
type Dialer func(ctx context.Context, host string, port int) (pr.Provider, error)

// Handle is the process-wide cache connection shared by every Model.
// Configure it once during startup, before traffic; afterwards reads are
// lock-free. Models resolve the provider on every call, so they may be
// constructed before the handle is configured.
type Handle struct {
	dial Dialer

	mu  sync.Mutex // serializes Configure/Use/Close
	cur atomic.Pointer[configured]
}

type configured struct {
	p    pr.Provider
	addr string
}

func NewHandle(dial Dialer) *Handle {
	return &Handle{dial: dial}
}

// Configure dials host:port and installs the resulting provider. A failed
// dial leaves the handle unconfigured so startup may retry; a second
// successful configuration is refused with ErrAlreadyConfigured.
func (h *Handle) Configure(ctx context.Context, host string, port int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cur.Load() != nil {
		return ErrAlreadyConfigured
	}
	if h.dial == nil {
		return errNoDialer
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	p, err := h.dial(ctx, host, port)
	if err != nil {
		return fmt.Errorf("recordcache: configure cache %s: %w", addr, err)
	}
	if p == nil {
		return fmt.Errorf("recordcache: configure cache %s: dialer returned nil provider", addr)
	}
	h.cur.Store(&configured{p: p, addr: addr})
	return nil
}

// Use installs an already constructed provider (in-process caches, tests).
func (h *Handle) Use(p pr.Provider) error {
	if p == nil {
		return errors.New("recordcache: nil provider")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur.Load() != nil {
		return ErrAlreadyConfigured
	}
	h.cur.Store(&configured{p: p, addr: "local"})
	return nil
}

// Provider returns the configured provider.
func (h *Handle) Provider() (pr.Provider, bool) {
	if h == nil {
		return nil, false
	}
	c := h.cur.Load()
	if c == nil {
		return nil, false
	}
	return c.p, true
}

// Addr returns host:port of the configured backend ("local" for Use).
func (h *Handle) Addr() string {
	if c := h.cur.Load(); c != nil {
		return c.addr
	}
	return ""
}

// Close releases the provider and returns the handle to the unconfigured state.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.cur.Swap(nil)
	if c == nil {
		return nil
	}
	return c.p.Close(ctx)
}
