package binary

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wippyai/laykit/errors"
)

// Writer frames records onto a byte sink. Each record is buffered in full
// before its header is written, so payload sizes are always exact.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Record writes one framed record. ASCII payloads must already be padded
// to even length by the caller; see PadString.
func (w *Writer) Record(recType, dataType byte, payload []byte) error {
	if len(payload) > MaxPayload {
		return errors.New(errors.PhaseEncode, errors.KindBadRecordLength).
			Format(errors.FormatGDSII).
			Detail("payload of %d bytes exceeds the record limit", len(payload)).
			Build()
	}
	w.buf.Reset()
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint16(hdr[:2], uint16(HeaderSize+len(payload)))
	hdr[2] = recType
	hdr[3] = dataType
	w.buf.Write(hdr[:])
	w.buf.Write(payload)
	if _, err := w.w.Write(w.buf.Bytes()); err != nil {
		return errors.IO(errors.PhaseEncode, errors.FormatGDSII, err)
	}
	return nil
}

// Empty writes a record with no payload.
func (w *Writer) Empty(recType byte) error {
	return w.Record(recType, 0, nil)
}

// Int16 writes a record holding one 2-byte signed integer.
func (w *Writer) Int16(recType byte, v int16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return w.Record(recType, 2, b[:])
}

// Int16s writes a record holding consecutive 2-byte signed integers.
func (w *Writer) Int16s(recType byte, vs []int16) error {
	data := make([]byte, 2*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint16(data[2*i:], uint16(v))
	}
	return w.Record(recType, 2, data)
}

// Int32 writes a record holding one 4-byte signed integer.
func (w *Writer) Int32(recType byte, v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return w.Record(recType, 3, b[:])
}

// Int32s writes a record holding consecutive 4-byte signed integers.
func (w *Writer) Int32s(recType byte, vs []int32) error {
	data := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(data[4*i:], uint32(v))
	}
	return w.Record(recType, 3, data)
}

// Bits writes a record holding a 2-byte bit array.
func (w *Writer) Bits(recType byte, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.Record(recType, 1, b[:])
}

// Real8s writes a record holding consecutive raw 8-byte reals.
func (w *Writer) Real8s(recType byte, vs [][8]byte) error {
	data := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		data = append(data, v[:]...)
	}
	return w.Record(recType, 5, data)
}

// String writes an ASCII string record, NUL-padded to even length.
func (w *Writer) String(recType byte, s string) error {
	return w.Record(recType, 6, PadString(s))
}

// PadString returns the string bytes padded with a single NUL when the
// length is odd. Record payloads must have even length.
func PadString(s string) []byte {
	b := []byte(s)
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}
