// Package binary implements the byte-level primitives of the OASIS
// format: unsigned varints, zig-zag signed varints, length-prefixed
// strings, and the tagged real encoding.
package binary

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/wippyai/laykit/errors"
)

// Real encoding tags. The leading varint of every real selects one of
// eight concrete forms.
const (
	RealPosInt        = 0
	RealNegInt        = 1
	RealPosReciprocal = 2
	RealNegReciprocal = 3
	RealPosRatio      = 4
	RealNegRatio      = 5
	RealFloat32       = 6
	RealFloat64       = 7
)

// Reader reads OASIS primitives from a byte stream with position
// tracking.
type Reader struct {
	r   io.ByteReader
	pos int64
}

// NewReader creates a Reader over r.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r}
}

// Position returns the current byte position.
func (r *Reader) Position() int64 {
	return r.pos
}

// Byte reads a single byte. EOF surfaces as an unexpected-EOF error; the
// OASIS frame ends at the END record, never at a bare stream end.
func (r *Reader) Byte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, errors.UnexpectedEOF(errors.FormatOASIS, "", r.pos)
		}
		return 0, errors.IO(errors.PhaseDecode, errors.FormatOASIS, err)
	}
	r.pos++
	return b, nil
}

// Bytes reads exactly n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.Byte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// Uint reads an unsigned varint: 7 bits per byte, little-endian, high bit
// as continuation. Sequences needing more than 64 bits are rejected.
func (r *Reader) Uint() (uint64, error) {
	start := r.pos
	var result uint64
	var shift uint
	for {
		b, err := r.Byte()
		if err != nil {
			return 0, err
		}
		if shift == 63 && b&0x7e != 0 {
			return 0, errors.VarintOverflow(start)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, errors.VarintOverflow(start)
		}
	}
}

// Int reads a zig-zag encoded signed varint.
func (r *Reader) Int() (int64, error) {
	u, err := r.Uint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// String reads a varint-length-prefixed byte string. Validity classes are
// the caller's concern; the bytes pass through untouched.
func (r *Reader) String() (string, error) {
	n, err := r.Uint()
	if err != nil {
		return "", err
	}
	data, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Real reads a tagged real. All eight forms are accepted.
func (r *Reader) Real() (float64, error) {
	start := r.pos
	tag, err := r.Uint()
	if err != nil {
		return 0, err
	}
	switch tag {
	case RealPosInt, RealNegInt:
		m, err := r.Uint()
		if err != nil {
			return 0, err
		}
		v := float64(m)
		if tag == RealNegInt {
			v = -v
		}
		return v, nil
	case RealPosReciprocal, RealNegReciprocal:
		d, err := r.Uint()
		if err != nil {
			return 0, err
		}
		v := 1.0 / float64(d)
		if tag == RealNegReciprocal {
			v = -v
		}
		return v, nil
	case RealPosRatio, RealNegRatio:
		num, err := r.Uint()
		if err != nil {
			return 0, err
		}
		den, err := r.Uint()
		if err != nil {
			return 0, err
		}
		v := float64(num) / float64(den)
		if tag == RealNegRatio {
			v = -v
		}
		return v, nil
	case RealFloat32:
		buf, err := r.Bytes(4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	case RealFloat64:
		buf, err := r.Bytes(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	}
	return 0, errors.New(errors.PhaseDecode, errors.KindBadDataType).
		Format(errors.FormatOASIS).
		Offset(start).
		Detail("real tag %d", tag).
		Build()
}
