// Package oasis provides OASIS layout file parsing and encoding.
//
// OASIS is the compact modern interchange format for integrated circuit
// layout. Records are self-delimiting: unsigned varints, zig-zag signed
// varints, length-prefixed strings, and a tagged 1-of-8 real encoding.
// Element records compress against a per-cell modal context, and names
// are interned in reference-numbered tables.
//
// # Parsing
//
//	data, _ := os.ReadFile("layout.oas")
//	file, err := oasis.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The reader maintains the full modal context, accepts both implicit and
// explicit name-table numbering, and resolves name references in a second
// pass, so forward references parse correctly.
//
// # Encoding
//
//	data, err := file.Encode()
//
// The writer emits every element field explicitly rather than leaning on
// the modal context, which is legal and keeps the emitted records
// self-contained. Name tables are written up front with explicit
// reference numbers; ids may be renumbered relative to the parsed input,
// with all references kept valid.
//
// # Limits
//
// CBLOCK compressed containers and XGEOMETRY records are rejected with a
// distinct unsupported-feature error.
package oasis
