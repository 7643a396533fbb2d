package binary

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/laykit/errors"
)

func TestUintRoundTrip(t *testing.T) {
	tests := []struct {
		value   uint64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{624485, []byte{0xE5, 0x8E, 0x26}},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.Uint(tt.value)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out.Bytes(), tt.encoded) {
			t.Errorf("encode %d: got % x, want % x", tt.value, out.Bytes(), tt.encoded)
		}

		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.Uint()
		if err != nil {
			t.Fatalf("decode % x: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode % x = %d, want %d", tt.encoded, got, tt.value)
		}
	}
}

func TestUintExtremes(t *testing.T) {
	for _, v := range []uint64{0, 1, 1<<32 - 1, 1 << 32, 1<<64 - 1} {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.Uint(v)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(out.Bytes()))
		got, err := r.Uint()
		if err != nil {
			t.Fatalf("Uint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("Uint round trip: got %d, want %d", got, v)
		}
	}
}

func TestUintOverflow(t *testing.T) {
	// Eleven continuation bytes exceed 64 bits.
	data := bytes.Repeat([]byte{0x80}, 11)
	r := NewReader(bytes.NewReader(data))
	_, err := r.Uint()
	if !errors.IsKind(err, errors.KindVarintOverflow) {
		t.Errorf("overlong varint: got %v", err)
	}
}

func TestUintTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x80, 0x80}))
	_, err := r.Uint()
	if !errors.IsKind(err, errors.KindUnexpectedEOF) {
		t.Errorf("truncated varint: got %v", err)
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 2, -2, 63, -63, 64, -64, 1000, -1000,
		math.MaxInt64, math.MinInt64,
	}
	for _, v := range values {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.Int(v)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(out.Bytes()))
		got, err := r.Int()
		if err != nil {
			t.Fatalf("Int(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("Int round trip: got %d, want %d", got, v)
		}
	}
}

func TestZigzagSmallValuesAreSmall(t *testing.T) {
	// Zig-zag exists so small negatives stay short.
	for _, v := range []int64{-1, -2, 1, 2} {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.Int(v)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if out.Len() != 1 {
			t.Errorf("Int(%d) took %d bytes", v, out.Len())
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "A", "TOP_CELL", string([]byte{0x00, 0xFF, 0x80})} {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.String(s)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(out.Bytes()))
		got, err := r.String()
		if err != nil {
			t.Fatalf("String(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("String round trip: got %q, want %q", got, s)
		}
	}
}

func TestRealAllFormsDecode(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  float64
	}{
		{"positive integer", []byte{0x00, 0x05}, 5.0},
		{"negative integer", []byte{0x01, 0x05}, -5.0},
		{"positive reciprocal", []byte{0x02, 0x04}, 0.25},
		{"negative reciprocal", []byte{0x03, 0x04}, -0.25},
		{"positive ratio", []byte{0x04, 0x03, 0x02}, 1.5},
		{"negative ratio", []byte{0x05, 0x03, 0x02}, -1.5},
		{"float32", append([]byte{0x06}, 0x00, 0x00, 0x40, 0x3F), 0.75},
		{"float64", append([]byte{0x07}, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xE8, 0x3F), 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.bytes))
			got, err := r.Real()
			if err != nil {
				t.Fatalf("Real: %v", err)
			}
			if got != tt.want {
				t.Errorf("Real = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRealBadTag(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x08}))
	if _, err := r.Real(); !errors.IsKind(err, errors.KindBadDataType) {
		t.Errorf("real tag 8: got %v", err)
	}
}

func TestRealCompactForms(t *testing.T) {
	tests := []struct {
		value float64
		lead  byte // expected tag byte
	}{
		{0.0, RealPosInt},
		{7.0, RealPosInt},
		{-7.0, RealNegInt},
		{0.5, RealPosReciprocal},
		{-0.125, RealNegReciprocal},
		{1.5, RealPosRatio},
		{-2.5, RealNegRatio},
		{math.Pi, RealFloat64},
		{1e-9, RealFloat64},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		w := NewWriter(&out)
		w.Real(tt.value)
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if out.Bytes()[0] != tt.lead {
			t.Errorf("Real(%g) used tag %d, want %d", tt.value, out.Bytes()[0], tt.lead)
		}
		r := NewReader(bytes.NewReader(out.Bytes()))
		got, err := r.Real()
		if err != nil {
			t.Fatalf("Real(%g) decode: %v", tt.value, err)
		}
		if got != tt.value {
			t.Errorf("Real round trip: got %g, want %g", got, tt.value)
		}
	}
}

func TestWriterPosition(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	w.Byte(1)
	w.Uint(300)
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3", w.Len())
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	r := NewReader(bytes.NewReader(out.Bytes()))
	if _, err := r.Byte(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Uint(); err != nil {
		t.Fatal(err)
	}
	if r.Position() != 3 {
		t.Errorf("Position = %d, want 3", r.Position())
	}
}
