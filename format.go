package laykit

import (
	"encoding/binary"
	"io"
)

// Format identifies a layout interchange format.
type Format int

const (
	// FormatUnknown means the bytes matched neither format.
	FormatUnknown Format = iota
	// FormatGDSII is the legacy big-endian stream format.
	FormatGDSII
	// FormatOASIS is the modern compact format.
	FormatOASIS
)

// oasisMagic is the 13-byte sequence every OASIS file begins with.
var oasisMagic = []byte("%SEMI-OASIS\r\n")

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatGDSII:
		return "GDSII"
	case FormatOASIS:
		return "OASIS"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format, without the
// leading dot. Unknown formats return the empty string.
func (f Format) Extension() string {
	switch f {
	case FormatGDSII:
		return "gds"
	case FormatOASIS:
		return "oas"
	default:
		return ""
	}
}

// Detect examines the leading bytes of a stream and reports the format.
// Sixteen bytes are enough for a confident answer; fewer may still detect
// GDSII, whose header skeleton fits in four.
func Detect(prefix []byte) Format {
	if len(prefix) < 4 {
		return FormatUnknown
	}

	if len(prefix) >= len(oasisMagic) && string(prefix[:len(oasisMagic)]) == string(oasisMagic) {
		return FormatOASIS
	}

	// GDSII begins with a HEADER record: length 6, record type 0x00,
	// data type 0x02, then a 2-byte version.
	length := binary.BigEndian.Uint16(prefix[:2])
	if length != 6 || prefix[2] != 0x00 || prefix[3] != 0x02 {
		return FormatUnknown
	}
	if len(prefix) >= 6 {
		version := binary.BigEndian.Uint16(prefix[4:6])
		if version == 0 || version >= 10000 {
			return FormatUnknown
		}
	}
	return FormatGDSII
}

// DetectReader reads up to 16 bytes from r and detects the format. The
// reader is advanced by the bytes read.
func DetectReader(r io.Reader) (Format, error) {
	buf := make([]byte, 16)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	return Detect(buf[:n]), nil
}
