package recordcache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedKeyShape matches every *UnsupportedKeyShapeError.
var ErrUnsupportedKeyShape = errors.New("recordcache: unsupported key shape")

// UnsupportedKeyShapeError is returned by RecreateFrom when the record type
// is not keyed by exactly {enterprise attribute, one other attribute}.
type UnsupportedKeyShapeError struct {
	Type          string
	Keys          []string
	EnterpriseKey string
}

func (e *UnsupportedKeyShapeError) Error() string {
	return fmt.Sprintf("recordcache: recreate %s: keys [%s] are not {%s, <one attribute>}",
		e.Type, strings.Join(e.Keys, ", "), e.EnterpriseKey)
}

func (e *UnsupportedKeyShapeError) Unwrap() error { return ErrUnsupportedKeyShape }
