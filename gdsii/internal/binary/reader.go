// Package binary implements the record-level framing of the GDSII stream
// format: big-endian integers, the 4-byte record header, and payload
// decoding helpers.
package binary

import (
	"encoding/binary"
	"io"

	"github.com/wippyai/laykit/errors"
)

// HeaderSize is the fixed record header: u16 length, record type byte,
// data type byte. The length counts the header itself.
const HeaderSize = 4

// MaxPayload is the largest payload a single record can frame.
const MaxPayload = 0xFFFF - HeaderSize

// Record is one framed record with its payload.
type Record struct {
	Type     byte
	DataType byte
	Data     []byte
	// Offset is the stream position of the record header.
	Offset int64
}

// Reader reads records from a byte stream with position tracking.
type Reader struct {
	r   io.Reader
	pos int64
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Position returns the current byte position.
func (r *Reader) Position() int64 {
	return r.pos
}

// Next reads the next record. At a clean record boundary the end of the
// stream surfaces as io.EOF; a partial header or payload is an
// unexpected-EOF error.
func (r *Reader) Next() (Record, error) {
	start := r.pos
	var hdr [HeaderSize]byte
	n, err := io.ReadFull(r.r, hdr[:])
	r.pos += int64(n)
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return Record{}, errors.UnexpectedEOF(errors.FormatGDSII, "", start)
	}
	if err != nil {
		return Record{}, errors.IO(errors.PhaseDecode, errors.FormatGDSII, err)
	}

	length := binary.BigEndian.Uint16(hdr[:2])
	rec := Record{Type: hdr[2], DataType: hdr[3], Offset: start}
	if length < HeaderSize {
		return Record{}, errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
			Format(errors.FormatGDSII).
			Offset(start).
			Detail("record length %d is smaller than its header", length).
			Build()
	}
	if rec.DataType > 6 {
		return Record{}, errors.New(errors.PhaseDecode, errors.KindBadDataType).
			Format(errors.FormatGDSII).
			Offset(start).
			Detail("data type code %d", rec.DataType).
			Build()
	}

	payload := int(length) - HeaderSize
	if payload > 0 {
		rec.Data = make([]byte, payload)
		n, err = io.ReadFull(r.r, rec.Data)
		r.pos += int64(n)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, errors.UnexpectedEOF(errors.FormatGDSII, "", start)
		}
		if err != nil {
			return Record{}, errors.IO(errors.PhaseDecode, errors.FormatGDSII, err)
		}
	}
	return rec, nil
}

// Payload decoding helpers. Each checks both the data type code and the
// payload length, so a record with the wrong type for its contents is a
// distinct error rather than garbage values.

func (rec Record) badType(want byte) error {
	return errors.New(errors.PhaseDecode, errors.KindBadDataType).
		Format(errors.FormatGDSII).
		Offset(rec.Offset).
		Detail("record carries data type %d, expected %d", rec.DataType, want).
		Build()
}

func (rec Record) badLength(detail string) error {
	return errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
		Format(errors.FormatGDSII).
		Offset(rec.Offset).
		Detail("%s", detail).
		Build()
}

// Int16 decodes a single 2-byte signed integer payload.
func (rec Record) Int16() (int16, error) {
	if rec.DataType != 2 {
		return 0, rec.badType(2)
	}
	if len(rec.Data) < 2 {
		return 0, rec.badLength("payload too short for a 2-byte integer")
	}
	return int16(binary.BigEndian.Uint16(rec.Data[:2])), nil
}

// Int16s decodes the payload as consecutive 2-byte signed integers.
func (rec Record) Int16s() ([]int16, error) {
	if rec.DataType != 2 {
		return nil, rec.badType(2)
	}
	if len(rec.Data)%2 != 0 {
		return nil, rec.badLength("payload is not a multiple of 2 bytes")
	}
	out := make([]int16, len(rec.Data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(rec.Data[2*i:]))
	}
	return out, nil
}

// Int32 decodes a single 4-byte signed integer payload.
func (rec Record) Int32() (int32, error) {
	if rec.DataType != 3 {
		return 0, rec.badType(3)
	}
	if len(rec.Data) < 4 {
		return 0, rec.badLength("payload too short for a 4-byte integer")
	}
	return int32(binary.BigEndian.Uint32(rec.Data[:4])), nil
}

// Int32s decodes the payload as consecutive 4-byte signed integers.
func (rec Record) Int32s() ([]int32, error) {
	if rec.DataType != 3 {
		return nil, rec.badType(3)
	}
	if len(rec.Data)%4 != 0 {
		return nil, rec.badLength("payload is not a multiple of 4 bytes")
	}
	out := make([]int32, len(rec.Data)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(rec.Data[4*i:]))
	}
	return out, nil
}

// Real8s returns the payload as consecutive raw 8-byte reals for the
// caller to decode.
func (rec Record) Real8s() ([][8]byte, error) {
	if rec.DataType != 5 {
		return nil, rec.badType(5)
	}
	if len(rec.Data)%8 != 0 {
		return nil, rec.badLength("payload is not a multiple of 8 bytes")
	}
	out := make([][8]byte, len(rec.Data)/8)
	for i := range out {
		copy(out[i][:], rec.Data[8*i:])
	}
	return out, nil
}

// String decodes an ASCII string payload, dropping the padding NUL.
func (rec Record) String() (string, error) {
	if rec.DataType != 6 {
		return "", rec.badType(6)
	}
	return TrimString(rec.Data), nil
}

// Bits decodes a 2-byte bit-array payload.
func (rec Record) Bits() (uint16, error) {
	if rec.DataType != 1 {
		return 0, rec.badType(1)
	}
	if len(rec.Data) < 2 {
		return 0, rec.badLength("payload too short for a bit array")
	}
	return binary.BigEndian.Uint16(rec.Data[:2]), nil
}

// TrimString cuts raw string bytes at the first NUL.
func TrimString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
