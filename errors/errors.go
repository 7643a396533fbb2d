package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode    Phase = "decode"    // bytes to model
	PhaseEncode    Phase = "encode"    // model to bytes
	PhaseTranslate Phase = "translate" // cross-format conversion
	PhaseValidate  Phase = "validate"  // structural validation
)

// Kind categorizes the error
type Kind string

const (
	KindIO                  Kind = "io"
	KindUnexpectedEOF       Kind = "unexpected_eof"
	KindBadMagic            Kind = "bad_magic"
	KindBadRecordLength     Kind = "bad_record_length"
	KindBadDataType         Kind = "bad_data_type"
	KindUnexpectedRecord    Kind = "unexpected_record"
	KindUnknownRecord       Kind = "unknown_record"
	KindVarintOverflow      Kind = "varint_overflow"
	KindReal8OutOfRange     Kind = "real8_out_of_range"
	KindBadRepetition       Kind = "bad_repetition"
	KindUnresolvedName      Kind = "unresolved_name"
	KindCoordinateOverflow  Kind = "coordinate_overflow"
	KindUnsupportedFeature  Kind = "unsupported_feature"
	KindStructuralViolation Kind = "structural_violation"
)

// Format names the file format an error originated from.
const (
	FormatGDSII = "gdsii"
	FormatOASIS = "oasis"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Format string
	Record string
	Offset int64 // byte offset in the stream, -1 when unknown
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Format != "" {
		b.WriteString(" (")
		b.WriteString(e.Format)
		b.WriteByte(')')
	}

	if e.Record != "" {
		b.WriteString(" in ")
		b.WriteString(e.Record)
	}

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error with the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == kind {
			return true
		}
		err = e.Cause
		if err == nil {
			return false
		}
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or the
// empty string when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Format sets the file format name
func (b *Builder) Format(f string) *Builder {
	b.err.Format = f
	return b
}

// Record sets the record name
func (b *Builder) Record(r string) *Builder {
	b.err.Record = r
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// IO wraps an underlying read or write failure
func IO(phase Phase, format string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Format: format,
		Offset: -1,
		Cause:  cause,
	}
}

// UnexpectedEOF creates a truncated-stream error
func UnexpectedEOF(format, record string, offset int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedEOF,
		Format: format,
		Record: record,
		Offset: offset,
	}
}

// BadMagic creates a bad-magic error for a stream that does not begin with
// the expected byte sequence.
func BadMagic(format string, got []byte) *Error {
	preview := got
	if len(preview) > 16 {
		preview = preview[:16]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindBadMagic,
		Format: format,
		Offset: 0,
		Detail: fmt.Sprintf("stream begins with % x", preview),
	}
}

// UnexpectedRecord creates an error for a record that is illegal in the
// current parser state.
func UnexpectedRecord(format, record string, offset int64, state string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedRecord,
		Format: format,
		Record: record,
		Offset: offset,
		Detail: "illegal in state " + state,
	}
}

// UnknownRecord creates an error for an unrecognized record inside an
// element body.
func UnknownRecord(format string, id byte, offset int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownRecord,
		Format: format,
		Offset: offset,
		Detail: fmt.Sprintf("record id 0x%02X", id),
	}
}

// VarintOverflow creates an error for an unsigned varint that requires more
// than 64 bits.
func VarintOverflow(offset int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindVarintOverflow,
		Format: FormatOASIS,
		Offset: offset,
	}
}

// Real8OutOfRange creates an error for a value that cannot be encoded as an
// 8-byte excess-64 real.
func Real8OutOfRange(value float64) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindReal8OutOfRange,
		Format: FormatGDSII,
		Offset: -1,
		Detail: fmt.Sprintf("value %g", value),
	}
}

// BadRepetition creates an error for an unknown or malformed repetition.
func BadRepetition(offset int64, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindBadRepetition,
		Format: FormatOASIS,
		Offset: offset,
		Detail: detail,
	}
}

// UnresolvedName creates an error for a name-table reference that was never
// defined.
func UnresolvedName(class string, id uint64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnresolvedName,
		Format: FormatOASIS,
		Offset: -1,
		Detail: fmt.Sprintf("%s reference %d never defined", class, id),
	}
}

// CoordinateOverflow creates an error for a coordinate that exceeds the
// 32-bit range of the legacy format.
func CoordinateOverflow(where string, value int64) *Error {
	return &Error{
		Phase:  PhaseTranslate,
		Kind:   KindCoordinateOverflow,
		Offset: -1,
		Detail: fmt.Sprintf("%s: coordinate %d exceeds 32-bit range", where, value),
	}
}

// Unsupported creates an unsupported-feature error
func Unsupported(format, what string, offset int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnsupportedFeature,
		Format: format,
		Offset: offset,
		Detail: what,
	}
}

// StructuralViolation creates a validation error for a model invariant
func StructuralViolation(format, where, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindStructuralViolation,
		Format: format,
		Record: where,
		Offset: -1,
		Detail: detail,
	}
}
