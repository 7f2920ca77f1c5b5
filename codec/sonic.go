package codec

import "github.com/bytedance/sonic"

// Sonic is a JSON codec backed by bytedance/sonic. Output is wire compatible
// with JSON, so the two can be swapped without flushing the cache.
// The zero value uses sonic.ConfigStd.
type Sonic[V any] struct {
	API sonic.API // nil => sonic.ConfigStd
}

var _ Codec[struct{}] = Sonic[struct{}]{}

func (c Sonic[V]) api() sonic.API {
	if c.API != nil {
		return c.API
	}
	return sonic.ConfigStd
}

func (c Sonic[V]) Encode(v V) ([]byte, error) { return c.api().Marshal(v) }
func (c Sonic[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.api().Unmarshal(b, &v)
	return v, err
}
