package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version  byte = 1
	kindOne  byte = 1
	kindMany byte = 2
)

var (
	ErrCorrupt = errors.New("recordcache: corrupt entry")
	magic4     = [...]byte{'R', 'C', 'A', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// One: magic(4) | ver(1) | kind(1=one) | vlen(u32 be) | payload(vlen)
func EncodeOne(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindOne)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Many:
//
//	magic(4) | ver(1) | kind(2=many) | n(u32 be)
//	vlen(u32 be) | payload(vlen) * n
//
// Order of payloads is preserved.
func EncodeMany(payloads [][]byte) []byte {
	total := 4 + 1 + 1 + 4
	for _, p := range payloads {
		total += 4 + len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindMany)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payloads)))
	buf.Write(u4[:])

	for _, p := range payloads {
		binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
		buf.Write(u4[:])
		buf.Write(p)
	}
	return buf.Bytes()
}

// Decode returns the payloads framed in b and whether the frame was written
// by EncodeMany. Payload slices alias b.
func Decode(b []byte) (payloads [][]byte, many bool, err error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, false, ErrCorrupt
	}
	switch b[5] {
	case kindOne:
		p, err := decodeOne(b)
		if err != nil {
			return nil, false, err
		}
		return [][]byte{p}, false, nil
	case kindMany:
		ps, err := decodeMany(b)
		if err != nil {
			return nil, true, err
		}
		return ps, true, nil
	default:
		return nil, false, ErrCorrupt
	}
}

func decodeOne(b []byte) ([]byte, error) {
	off := 6
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// exact length: trailing bytes are corruption
	if vlen < 0 || vlen != len(b)-off {
		return nil, ErrCorrupt
	}
	return b[off : off+vlen], nil
}

func decodeMany(b []byte) ([][]byte, error) {
	off := 6
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return nil, ErrCorrupt
	}

	// each item needs at least 4 bytes; do not trust n for preallocation
	capHint := n
	if maxItems := (len(b) - off) / 4; capHint > maxItems {
		capHint = maxItems
	}
	out := make([][]byte, 0, capHint)
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return nil, ErrCorrupt
		}
		out = append(out, b[off:off+vlen])
		off += vlen
	}
	if off != len(b) {
		return nil, ErrCorrupt
	}
	return out, nil
}
