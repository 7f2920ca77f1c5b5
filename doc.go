// Package recordcache implements a read-through cache in front of a backing
// record store. Call sites ask for records by attribute filter; the cache
// derives keys, serves hits, falls back to the store on miss or cache fault,
// and repopulates itself. Two reconciliation helpers create records that are
// missing and rewrite records whose attributes drifted.
//
// Components:
//   - Provider: byte store with TTL (Redis, Ristretto, BigCache).
//   - Handle: the process-wide provider, configured once at startup and
//     injected into every Model.
//   - Codec[R]: (de)serializes one record <-> []byte. Result sets are framed
//     by the cache so both shapes round-trip.
//   - Store[R]: source of truth (gorm, pgx). Query by ordered filter; Save.
//
// Keys:
//
//	<Type>::<attr1>::<val1>::<attr2>::<val2>…
//
// Keys follow the filter's construction order and are not escaped, so a
// value containing "::" can collide with another filter. Build filters for
// the same logical query the same way to share entries.
//
// Usage:
//
//	h := recordcache.NewHandle(redis.Dialer(nil))
//	_ = h.Configure(ctx, "localhost", 6379) // once, at startup
//
//	products, _ := recordcache.New[Product](recordcache.Options[Product]{
//	    Type:   recordcache.RecordType{Name: "Product", Keys: []string{"enterprise_id", "uid"}},
//	    Handle: h,
//	    Store:  gormstore.New[Product](db),
//	})
//	res, err := products.FindOrCreate(ctx,
//	    recordcache.Where("enterprise_id", eid).And("uid", uid),
//	    recordcache.Where("name", "lamp"))
//
// Behaviour worth knowing:
//   - Cache read faults never reach the caller; they are reported through
//     Hooks and Logger and the store is queried instead.
//   - Queries matching zero records are not cached, so each repeat hits the
//     store until a matching record exists.
//   - There is no lock around miss-then-populate. Concurrent misses on the
//     same key all query the store and all write the cache; last writer wins.
package recordcache
