package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/awilkes/msgchan/codec"
)

// roundTrip encodes v with c, decodes the result, and reports whether
// the decoded value compares equal to want.
func roundTrip(t *testing.T, c codec.Codec, v, want any) {
	t.Helper()
	bits, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%+v): unexpected error: %v", v, err)
	}
	got, err := c.Decode(bits)
	if err != nil {
		t.Fatalf("Decode(%q): unexpected error: %v", bits, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Round trip of %+v: (-want, +got)\n%s", v, diff)
	}
}

func TestString(t *testing.T) {
	c := codec.String{}
	for _, msg := range []string{"", "hello", "a long\nmessage with\tspace", "héllo wörld"} {
		roundTrip(t, c, msg, msg)
	}
	if _, err := c.Encode(25); err == nil {
		t.Error("Encode(25): got nil, want an error")
	}
}

func TestRaw(t *testing.T) {
	c := codec.Raw{}
	roundTrip(t, c, []byte("whatever"), []byte("whatever"))
	roundTrip(t, c, "stringy", []byte("stringy"))
	if _, err := c.Encode(struct{}{}); err == nil {
		t.Error("Encode(struct{}{}): got nil, want an error")
	}
}

func TestJSON(t *testing.T) {
	c := codec.JSON{}
	tests := []struct {
		input, want any
	}{
		{nil, nil},
		{true, true},
		{"foo", "foo"},
		{25, float64(25)}, // numbers decode as float64
		{[]any{"a", float64(1)}, []any{"a", float64(1)}},
		{map[string]any{"go": true}, map[string]any{"go": true}},
	}
	for _, test := range tests {
		roundTrip(t, c, test.input, test.want)
	}

	if _, err := c.Decode([]byte("{bogus")); err == nil {
		t.Error("Decode({bogus): got nil, want an error")
	}
	if v, err := c.Decode(nil); err != nil || v != nil {
		t.Errorf("Decode(nil): got %v, %v; want nil, nil", v, err)
	}
}

func TestStandard(t *testing.T) {
	c := codec.Standard{}
	tests := []struct {
		input, want any
	}{
		{nil, nil},
		{true, true},
		{false, false},
		{0, int64(0)},
		{-95, int64(-95)},
		{int64(1) << 40, int64(1) << 40},
		{3.25, 3.25},
		{"", ""},
		{"cherry pie", "cherry pie"},
		{[]byte{0x01, 0x00, 0xff}, []byte{0x01, 0x00, 0xff}},
		{[]any{int64(1), "two", 3.0}, []any{int64(1), "two", 3.0}},
		{map[string]any{
			"list": []any{true, nil},
			"name": "aloysius",
			"size": int64(25),
		}, map[string]any{
			"list": []any{true, nil},
			"name": "aloysius",
			"size": int64(25),
		}},
	}
	for _, test := range tests {
		roundTrip(t, c, test.input, test.want)
	}
}

func TestStandardErrors(t *testing.T) {
	c := codec.Standard{}

	if _, err := c.Encode(struct{ X int }{}); err == nil {
		t.Error("Encode(struct): got nil, want an error")
	}
	if _, err := c.Encode(map[int]any{1: "no"}); err == nil {
		t.Error("Encode(map[int]any): got nil, want an error")
	}

	decodeErrs := [][]byte{
		{99},            // invalid type tag
		{5, 200, 1},     // string length exceeds available bytes
		{7, 3, 1},       // truncated list
		{4, 1, 2},       // truncated float
		{0, 0},          // trailing bytes after a complete value
		{8, 1, 3, 0, 0}, // map key is not a string
	}
	for _, bits := range decodeErrs {
		if v, err := c.Decode(bits); err == nil {
			t.Errorf("Decode(%v): got %+v, want an error", bits, v)
		}
	}
}
