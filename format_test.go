package laykit_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/laykit"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  laykit.Format
	}{
		{"gdsii v600", []byte{0x00, 0x06, 0x00, 0x02, 0x02, 0x58}, laykit.FormatGDSII},
		{"gdsii v3", []byte{0x00, 0x06, 0x00, 0x02, 0x00, 0x03}, laykit.FormatGDSII},
		{"gdsii header only", []byte{0x00, 0x06, 0x00, 0x02}, laykit.FormatGDSII},
		{"gdsii zero version", []byte{0x00, 0x06, 0x00, 0x02, 0x00, 0x00}, laykit.FormatUnknown},
		{"oasis", []byte("%SEMI-OASIS\r\n"), laykit.FormatOASIS},
		{"oasis with trailer", append([]byte("%SEMI-OASIS\r\n"), 0x01, 0x03), laykit.FormatOASIS},
		{"garbage", []byte{0xFF, 0xFF, 0xFF, 0xFF}, laykit.FormatUnknown},
		{"empty", nil, laykit.FormatUnknown},
		{"too short", []byte{0x00, 0x06}, laykit.FormatUnknown},
		{"oasis prefix cut short", []byte("%SEM"), laykit.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := laykit.Detect(tt.bytes); got != tt.want {
				t.Errorf("Detect(% x) = %v, want %v", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestDetectReader(t *testing.T) {
	got, err := laykit.DetectReader(bytes.NewReader([]byte("%SEMI-OASIS\r\nabc")))
	if err != nil {
		t.Fatalf("DetectReader: %v", err)
	}
	if got != laykit.FormatOASIS {
		t.Errorf("DetectReader = %v, want OASIS", got)
	}

	got, err = laykit.DetectReader(bytes.NewReader([]byte{0x00, 0x06, 0x00, 0x02, 0x02, 0x58}))
	if err != nil {
		t.Fatalf("DetectReader short: %v", err)
	}
	if got != laykit.FormatGDSII {
		t.Errorf("DetectReader short = %v, want GDSII", got)
	}
}

func TestFormatStrings(t *testing.T) {
	if laykit.FormatGDSII.String() != "GDSII" || laykit.FormatGDSII.Extension() != "gds" {
		t.Error("GDSII format naming wrong")
	}
	if laykit.FormatOASIS.String() != "OASIS" || laykit.FormatOASIS.Extension() != "oas" {
		t.Error("OASIS format naming wrong")
	}
	if laykit.FormatUnknown.String() != "Unknown" || laykit.FormatUnknown.Extension() != "" {
		t.Error("Unknown format naming wrong")
	}
}
