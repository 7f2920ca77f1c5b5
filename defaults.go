package recordcache

// DefaultTTLMinutes applies to record types that declare no TTL.
const DefaultTTLMinutes = 60

// DefaultEnterpriseKey is the enterprise-scoping attribute used by RecreateFrom.
const DefaultEnterpriseKey = "enterprise_id"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
