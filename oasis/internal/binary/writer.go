package binary

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/wippyai/laykit/errors"
)

// Writer buffers OASIS primitives and flushes them to a byte sink in one
// piece. Write methods never fail; errors surface at Flush.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Flush writes the buffered bytes to the sink.
func (w *Writer) Flush() error {
	if _, err := w.w.Write(w.buf.Bytes()); err != nil {
		return errors.IO(errors.PhaseEncode, errors.FormatOASIS, err)
	}
	w.buf.Reset()
	return nil
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Raw writes a byte slice verbatim.
func (w *Writer) Raw(data []byte) {
	w.buf.Write(data)
}

// Uint writes an unsigned varint.
func (w *Writer) Uint(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// Int writes a zig-zag encoded signed varint.
func (w *Writer) Int(v int64) {
	w.Uint(uint64(v<<1) ^ uint64(v>>63))
}

// String writes a varint-length-prefixed byte string.
func (w *Writer) String(s string) {
	w.Uint(uint64(len(s)))
	w.buf.WriteString(s)
}

// Real writes a tagged real in the most compact form that represents the
// value exactly: whole numbers below 2^32 as integers, exact reciprocals
// and small ratios as rationals, everything else as a 64-bit float.
func (w *Writer) Real(v float64) {
	neg := math.Signbit(v)
	abs := math.Abs(v)

	if v == math.Trunc(v) && !math.IsInf(v, 0) && abs < (1<<32) {
		if neg {
			w.Uint(RealNegInt)
		} else {
			w.Uint(RealPosInt)
		}
		w.Uint(uint64(abs))
		return
	}

	if num, den, ok := smallRatio(abs); ok {
		if num == 1 {
			if neg {
				w.Uint(RealNegReciprocal)
			} else {
				w.Uint(RealPosReciprocal)
			}
			w.Uint(den)
			return
		}
		if neg {
			w.Uint(RealNegRatio)
		} else {
			w.Uint(RealPosRatio)
		}
		w.Uint(num)
		w.Uint(den)
		return
	}

	w.Uint(RealFloat64)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// smallRatio finds an exact num/den representation whose denominator is
// one of 2, 3, 4, 5, 8, 10, 16, 100, 1000 or 10000. Only exact matches
// qualify; near misses go out as floats.
func smallRatio(abs float64) (num, den uint64, ok bool) {
	if abs <= 0 || math.IsInf(abs, 0) || math.IsNaN(abs) {
		return 0, 0, false
	}
	for _, d := range []uint64{2, 3, 4, 5, 8, 10, 16, 100, 1000, 10000} {
		n := abs * float64(d)
		if n == math.Trunc(n) && n < (1<<32) && float64(n)/float64(d) == abs {
			return uint64(n), d, true
		}
	}
	return 0, 0, false
}
