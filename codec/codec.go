// Package codec turns a record into the opaque bytes stored in the cache and back.
//
// A Codec handles exactly one record. Sequences of records are framed by the
// cache itself, so every codec round-trips both shapes.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
