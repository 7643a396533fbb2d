// Package laykit reads, writes, and converts the two binary interchange
// formats used for integrated-circuit layout: the GDSII stream format and
// OASIS.
//
// The format codecs live in their own packages:
//
//	gdsii    big-endian record-oriented legacy format
//	oasis    variable-length self-delimiting modern format
//	convert  pure translation between the two in-memory models
//
// This package holds what is common to both: format detection by magic
// bytes, independent of file extensions.
//
// # Detecting a format
//
//	f, _ := os.Open("layout.dat")
//	format, err := laykit.DetectReader(f)
//	switch format {
//	case laykit.FormatGDSII:
//	    lib, err := gdsii.Read(f)
//	    ...
//	case laykit.FormatOASIS:
//	    file, err := oasis.Read(f)
//	    ...
//	}
//
// Note that DetectReader consumes up to 16 bytes; reopen or seek before
// handing the reader to a codec.
//
// # Round trips
//
// Both codecs guarantee that writing a parsed file and reading it back
// yields an equal model, up to canonical record ordering on the GDSII side
// and name-table id renumbering on the OASIS side.
package laykit
