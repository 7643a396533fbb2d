// Package errors provides structured error types for the laykit codec library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: source format, record name,
// byte offset, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
//		Format(errors.FormatGDSII).
//		Record("XY").
//		Offset(1024).
//		Detail("payload length 7 is not a multiple of 8").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedEOF(errors.FormatOASIS, "CELL", pos)
//	err := errors.CoordinateOverflow("TOP", 1<<31)
//
// All errors implement the standard error interface and support errors.Is/As.
// Kind matching across a chain is done with IsKind:
//
//	if errors.IsKind(err, errors.KindVarintOverflow) { ... }
package errors
