package attrs

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type base struct {
	CreatedAt string
}

type sample struct {
	base
	EnterpriseID int64  `gorm:"column:enterprise_id;primaryKey"`
	UID          string `db:"uid"`
	Label        string `json:"label,omitempty"`
	Nick         *string
	Score        float64 `cache:"points"`
	Hidden       string  `cache:"-"`
	internal     string
}

func TestNamesResolution(t *testing.T) {
	got := Names(sample{})
	want := []string{"created_at", "enterprise_id", "uid", "label", "nick", "points"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
	if Names(42) != nil {
		t.Fatalf("Names on non-struct should be nil")
	}
}

func TestLookup(t *testing.T) {
	s := &sample{EnterpriseID: 5, UID: "x", base: base{CreatedAt: "now"}}

	if v, ok := Lookup(s, "enterprise_id"); !ok || v != int64(5) {
		t.Fatalf("enterprise_id: got %v ok=%v", v, ok)
	}
	if v, ok := Lookup(*s, "uid"); !ok || v != "x" {
		t.Fatalf("uid: got %v ok=%v", v, ok)
	}
	if v, ok := Lookup(s, "created_at"); !ok || v != "now" {
		t.Fatalf("embedded created_at: got %v ok=%v", v, ok)
	}
	if _, ok := Lookup(s, "hidden"); ok {
		t.Fatalf("hidden field must not be exposed")
	}
	if _, ok := Lookup(s, "nope"); ok {
		t.Fatalf("unknown attribute must not be found")
	}
	if v, ok := Lookup(map[string]any{"a": 1}, "a"); !ok || v != 1 {
		t.Fatalf("map lookup: got %v ok=%v", v, ok)
	}
	var nilPtr *sample
	if _, ok := Lookup(nilPtr, "uid"); ok {
		t.Fatalf("nil pointer lookup must miss")
	}
}

func TestAssignConverts(t *testing.T) {
	var s sample
	if ok, err := Assign(&s, "enterprise_id", 7); err != nil || !ok {
		t.Fatalf("assign int->int64: ok=%v err=%v", ok, err)
	}
	if ok, err := Assign(&s, "nick", "bob"); err != nil || !ok {
		t.Fatalf("assign string->*string: ok=%v err=%v", ok, err)
	}
	if ok, err := Assign(&s, "unknown", 1); err != nil || ok {
		t.Fatalf("unknown attribute: ok=%v err=%v", ok, err)
	}
	if _, err := Assign(&s, "uid", 12); err == nil {
		t.Fatalf("expected error assigning int to string field")
	}
	if _, err := Assign(s, "uid", "x"); err == nil {
		t.Fatalf("expected error on non-pointer destination")
	}
	if _, err := Assign(&s, "enterprise_id", 5.7); err == nil {
		t.Fatalf("expected error assigning 5.7 to an int64 field")
	}
	if ok, err := Assign(&s, "points", 3); err != nil || !ok || s.Score != 3 {
		t.Fatalf("assign int->float64: ok=%v err=%v score=%v", ok, err, s.Score)
	}
	if s.EnterpriseID != 7 || s.Nick == nil || *s.Nick != "bob" {
		t.Fatalf("unexpected struct after assign: %+v", s)
	}
}

func TestEqual(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		cur, prop any
		want      bool
	}{
		{int64(1), 1, true},
		{int64(1), 2, false},
		{"a", "a", true},
		{"a", "b", false},
		{"1", 1, false},
		{nil, nil, true},
		{nil, "a", false},
		{[]string{"a"}, []string{"a"}, true},
		{int(5), 5.7, false},
		{int(5), 5.0, true},
		{uint8(0), 256, false},
		{uint8(255), -1, false},
		{int32(1), int64(1<<32 + 1), false},
		{float64(2), 2, true},
		{noon, noon.In(tokyo), true},
		{noon, noon.Add(time.Second), false},
		{&noon, noon.In(tokyo), true},
	}
	for _, tc := range cases {
		if got := Equal(tc.cur, tc.prop); got != tc.want {
			t.Errorf("Equal(%#v, %#v) = %v want %v", tc.cur, tc.prop, got, tc.want)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"EnterpriseID": "enterprise_id",
		"UID":          "uid",
		"HTTPServer":   "http_server",
		"Name":         "name",
		"Field2Name":   "field2_name",
	} {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q want %q", in, got, want)
		}
	}
}
