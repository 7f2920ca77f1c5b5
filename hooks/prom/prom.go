// Package prom counts cache events per record type with Prometheus.
//
//	h := prom.New("myapp")
//	registry.MustRegister(h)
//	products, _ := recordcache.New[Product](recordcache.Options[Product]{..., Hooks: h})
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unkn0wn-root/recordcache"
)

// Hooks implements recordcache.Hooks and prometheus.Collector.
type Hooks struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	unavailable *prometheus.CounterVec
	decodeFail  *prometheus.CounterVec
	writeFail   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

var (
	_ recordcache.Hooks    = (*Hooks)(nil)
	_ prometheus.Collector = (*Hooks)(nil)
)

func New(namespace string) *Hooks {
	vec := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recordcache",
				Name:      name,
				Help:      help,
			},
			[]string{"type"},
		)
	}
	return &Hooks{
		hits:        vec("hits_total", "Lookups served from cache"),
		misses:      vec("misses_total", "Lookups with no cached entry"),
		unavailable: vec("unavailable_total", "Cache reads that failed and fell back to the store"),
		decodeFail:  vec("decode_failures_total", "Cached entries that could not be decoded"),
		writeFail:   vec("write_failures_total", "Cache populations that failed"),
		rejected:    vec("set_rejected_total", "Writes rejected by the provider under pressure"),
	}
}

func (h *Hooks) collectors() []*prometheus.CounterVec {
	return []*prometheus.CounterVec{h.hits, h.misses, h.unavailable, h.decodeFail, h.writeFail, h.rejected}
}

func (h *Hooks) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range h.collectors() {
		c.Describe(ch)
	}
}

func (h *Hooks) Collect(ch chan<- prometheus.Metric) {
	for _, c := range h.collectors() {
		c.Collect(ch)
	}
}

func (h *Hooks) CacheHit(key string)  { h.hits.WithLabelValues(recordcache.KeyType(key)).Inc() }
func (h *Hooks) CacheMiss(key string) { h.misses.WithLabelValues(recordcache.KeyType(key)).Inc() }
func (h *Hooks) CacheUnavailable(key string, _ error) {
	h.unavailable.WithLabelValues(recordcache.KeyType(key)).Inc()
}
func (h *Hooks) DecodeFailed(key string, _ error) {
	h.decodeFail.WithLabelValues(recordcache.KeyType(key)).Inc()
}
func (h *Hooks) CacheWriteFailed(key string, _ error) {
	h.writeFail.WithLabelValues(recordcache.KeyType(key)).Inc()
}
func (h *Hooks) ProviderSetRejected(key string) {
	h.rejected.WithLabelValues(recordcache.KeyType(key)).Inc()
}
