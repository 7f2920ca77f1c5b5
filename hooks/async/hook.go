// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/recordcache"
//	asynchook "github.com/unkn0wn-root/recordcache/hooks/async"
//	"github.com/unkn0wn-root/recordcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 10,
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	products, _ := recordcache.New[Product](recordcache.Options[Product]{
//	    Type:   recordcache.RecordType{Name: "Product", Keys: []string{"enterprise_id", "uid"}},
//	    Handle: handle,
//	    Store:  store,
//	    Hooks:  hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/recordcache"
)

type Hooks struct {
	inner recordcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ recordcache.Hooks = (*Hooks)(nil)

func New(inner recordcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events. Hooks must not be called after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) CacheHit(k string)            { h.try(func() { h.inner.CacheHit(k) }) }
func (h *Hooks) CacheMiss(k string)           { h.try(func() { h.inner.CacheMiss(k) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) CacheUnavailable(k string, err error) {
	h.try(func() { h.inner.CacheUnavailable(k, err) })
}
func (h *Hooks) DecodeFailed(k string, err error) {
	h.try(func() { h.inner.DecodeFailed(k, err) })
}
func (h *Hooks) CacheWriteFailed(k string, err error) {
	h.try(func() { h.inner.CacheWriteFailed(k, err) })
}
