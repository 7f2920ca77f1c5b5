package recordcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A cached entry was served.
	CacheHit(key string)
	// The provider had no entry for key.
	CacheMiss(key string)

	// Reading key from the provider failed (transport error, or the handle
	// is not configured). The read was served from the store.
	CacheUnavailable(key string, err error)

	// A cached entry could not be decoded and was treated as a miss.
	DecodeFailed(key string, err error)

	// Populating key failed (encode, transport, unconfigured handle).
	// The caller's operation still succeeded.
	CacheWriteFailed(key string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheHit(string)                {}
func (NopHooks) CacheMiss(string)               {}
func (NopHooks) CacheUnavailable(string, error) {}
func (NopHooks) DecodeFailed(string, error)     {}
func (NopHooks) CacheWriteFailed(string, error) {}
func (NopHooks) ProviderSetRejected(string)     {}
