package oasis

import (
	"bytes"
	"io"

	"github.com/wippyai/laykit/oasis/internal/binary"
)

// Standalone codec primitives, exposed for callers that work below the
// record level. The file reader and writer use the same encodings.

// ReadUint reads an unsigned varint: 7 bits per byte, little-endian,
// high bit as continuation. Sequences needing more than 64 bits fail
// with a varint-overflow error.
func ReadUint(r io.ByteReader) (uint64, error) {
	return binary.NewReader(r).Uint()
}

// WriteUint writes an unsigned varint.
func WriteUint(w *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// ReadInt reads a zig-zag encoded signed varint.
func ReadInt(r io.ByteReader) (int64, error) {
	return binary.NewReader(r).Int()
}

// WriteInt writes a zig-zag encoded signed varint.
func WriteInt(w *bytes.Buffer, v int64) {
	WriteUint(w, EncodeZigzag(v))
}

// EncodeZigzag maps a signed integer to its zig-zag unsigned form, so
// small magnitudes of either sign encode in few bytes.
func EncodeZigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// DecodeZigzag inverts EncodeZigzag.
func DecodeZigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// ReadReal reads a tagged real. All eight forms are accepted.
func ReadReal(r io.ByteReader) (float64, error) {
	return binary.NewReader(r).Real()
}

// WriteReal writes a tagged real in the most compact exact form.
func WriteReal(w *bytes.Buffer, v float64) {
	bw := binary.NewWriter(w)
	bw.Real(v)
	_ = bw.Flush() // bytes.Buffer writes cannot fail
}
