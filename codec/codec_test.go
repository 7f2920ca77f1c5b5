package codec

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type product struct {
	EnterpriseID int64   `json:"enterprise_id" msgpack:"enterprise_id"`
	UID          string  `json:"uid" msgpack:"uid"`
	Name         string  `json:"name" msgpack:"name"`
	Price        float64 `json:"price" msgpack:"price"`
}

func TestCodecsPreserveRecordAttributes(t *testing.T) {
	in := product{EnterpriseID: 5, UID: "x", Name: "lamp", Price: 12.5}

	codecs := map[string]Codec[product]{
		"json":    JSON[product]{},
		"sonic":   Sonic[product]{},
		"msgpack": Msgpack[product]{},
		"cbor":    MustCBOR[product](true),
		"limit":   Limit[product]{Inner: JSON[product]{}, MaxDecode: 1 << 10},
	}
	for name, c := range codecs {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Fatalf("%s round trip (-want +got):\n%s", name, diff)
		}
	}
}

func TestJSONAndSonicInterchangeable(t *testing.T) {
	in := product{EnterpriseID: 1, UID: "a", Name: "n"}
	b, err := Sonic[product]{}.Encode(in)
	if err != nil {
		t.Fatalf("sonic encode: %v", err)
	}
	out, err := JSON[product]{}.Decode(b)
	if err != nil {
		t.Fatalf("json decode of sonic bytes: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v want %+v", out, in)
	}
}

func TestMsgpackJSONTags(t *testing.T) {
	type tagged struct {
		UID string `json:"uid"`
	}
	c := Msgpack[map[string]any]{}
	b, err := Msgpack[tagged]{JSONTags: true}.Encode(tagged{UID: "u1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["uid"] != "u1" {
		t.Fatalf("expected json tag name in msgpack output, got %v", m)
	}
}

func TestCBORMapRecords(t *testing.T) {
	c := MustCBOR[map[string]any](false)
	b, err := c.Encode(map[string]any{"uid": "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["uid"] != "x" {
		t.Fatalf("got %v", m)
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	c := Limit[string]{Inner: JSON[string]{}, MaxEncode: 8, MaxDecode: 4}
	if _, err := c.Encode(strings.Repeat("a", 32)); err == nil {
		t.Fatalf("expected encode limit error")
	}
	if _, err := c.Decode([]byte(`"abcdef"`)); err == nil {
		t.Fatalf("expected decode limit error")
	}
	if v, err := c.Decode([]byte(`"a"`)); err != nil || v != "a" {
		t.Fatalf("small payload: v=%q err=%v", v, err)
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !proto.Equal(out, wrapperspb.String("hello")) {
		t.Fatalf("got %v", out)
	}

	if _, err := (Protobuf[*wrapperspb.StringValue]{}).Decode(b); err == nil {
		t.Fatalf("expected error without constructor")
	}
}
