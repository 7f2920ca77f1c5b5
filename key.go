package recordcache

import (
	"fmt"
	"strings"
)

// KeySeparator joins cache key segments.
const KeySeparator = "::"

// GenerateKey derives the cache key for f on rt:
//
//	<rt.Name>::<attr1>::<val1>::<attr2>::<val2>…
//
// Pairs keep f's order. Values are not escaped; a value containing the
// separator may collide with a different filter.
func GenerateKey(rt RecordType, f Filter) string {
	var b strings.Builder
	b.WriteString(rt.Name)
	for _, a := range f {
		b.WriteString(KeySeparator)
		b.WriteString(a.Name)
		b.WriteString(KeySeparator)
		b.WriteString(formatValue(a.Value))
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// KeyType returns the record type segment of a key produced by GenerateKey.
func KeyType(key string) string {
	if i := strings.Index(key, KeySeparator); i >= 0 {
		return key[:i]
	}
	return key
}
