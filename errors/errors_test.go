package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindBadRecordLength,
				Format: FormatGDSII,
				Record: "XY",
				Offset: 1024,
				Detail: "payload length 7 is not a multiple of 8",
			},
			contains: []string{"[decode]", "bad_record_length", "gdsii", "XY", "1024", "multiple of 8"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindCoordinateOverflow,
				Offset: -1,
			},
			contains: []string{"[encode]", "coordinate_overflow"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindIO,
				Offset: -1,
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[decode]", "io", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase:  PhaseDecode,
		Kind:   KindIO,
		Offset: -1,
		Cause:  cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not match cause through Unwrap")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseDecode,
		Kind:   KindVarintOverflow,
		Format: FormatOASIS,
		Offset: 99,
	}

	if !errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindVarintOverflow}) {
		t.Error("Is should match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindVarintOverflow}) {
		t.Error("Is should not match a different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindBadMagic}) {
		t.Error("Is should not match a different kind")
	}
}

func TestIsKind(t *testing.T) {
	inner := VarintOverflow(7)
	outer := New(PhaseDecode, KindBadRepetition).Cause(inner).Build()

	if !IsKind(outer, KindBadRepetition) {
		t.Error("IsKind missed the outer kind")
	}
	if !IsKind(outer, KindVarintOverflow) {
		t.Error("IsKind missed the wrapped kind")
	}
	if IsKind(outer, KindBadMagic) {
		t.Error("IsKind matched an absent kind")
	}
	if IsKind(errors.New("plain"), KindIO) {
		t.Error("IsKind matched a non-structured error")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(UnexpectedEOF(FormatGDSII, "BGNSTR", 12)); got != KindUnexpectedEOF {
		t.Errorf("KindOf = %q, want %q", got, KindUnexpectedEOF)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("short read")
	err := New(PhaseDecode, KindUnexpectedEOF).
		Format(FormatOASIS).
		Record("PLACEMENT").
		Offset(4096).
		Detail("need %d more bytes", 3).
		Cause(cause).
		Build()

	if err.Phase != PhaseDecode || err.Kind != KindUnexpectedEOF {
		t.Fatalf("builder lost phase/kind: %+v", err)
	}
	if err.Format != FormatOASIS || err.Record != "PLACEMENT" || err.Offset != 4096 {
		t.Errorf("builder lost context: %+v", err)
	}
	if err.Detail != "need 3 more bytes" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("builder lost cause")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{IO(PhaseEncode, FormatGDSII, errors.New("pipe")), KindIO},
		{UnexpectedEOF(FormatGDSII, "XY", 8), KindUnexpectedEOF},
		{BadMagic(FormatOASIS, []byte("%SEMI-NOPE")), KindBadMagic},
		{UnexpectedRecord(FormatGDSII, "ENDSTR", 44, "library"), KindUnexpectedRecord},
		{UnknownRecord(FormatOASIS, 0x55, 10), KindUnknownRecord},
		{VarintOverflow(0), KindVarintOverflow},
		{Real8OutOfRange(1e80), KindReal8OutOfRange},
		{BadRepetition(3, "type 99"), KindBadRepetition},
		{UnresolvedName("cellname", 7), KindUnresolvedName},
		{CoordinateOverflow("TOP", 1 << 31), KindCoordinateOverflow},
		{Unsupported(FormatOASIS, "CBLOCK", 20), KindUnsupportedFeature},
		{StructuralViolation(FormatGDSII, "TOP", "boundary not closed"), KindStructuralViolation},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("constructor produced kind %q, want %q", tt.err.Kind, tt.kind)
		}
		if tt.err.Error() == "" {
			t.Errorf("empty message for kind %q", tt.kind)
		}
	}
}
