// Package gdsii provides GDSII stream format parsing and encoding.
//
// GDSII is the legacy record-oriented interchange format for integrated
// circuit layout. A file is a flat sequence of records, each framed as a
// big-endian 16-bit total length, a record type byte, and a data type
// byte. Reals use the format's own excess-64 base-16 representation
// rather than IEEE 754.
//
// # Parsing
//
// Parse a library from binary:
//
//	data, _ := os.ReadFile("layout.gds")
//	lib, err := gdsii.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or from any reader:
//
//	lib, err := gdsii.Read(f)
//
// # Encoding
//
// Encode a library back to binary:
//
//	data, err := lib.Encode()
//
// or stream it to a writer:
//
//	err := lib.Write(w)
//
// Round-trip parsing and encoding preserves the library up to canonical
// record ordering within elements.
//
// # Library structure
//
// A parsed library contains its structures in file order:
//
//	lib.Name          string
//	lib.UserUnit      float64      // meters
//	lib.DatabaseUnit  float64      // meters
//	lib.Structures    []*Structure
//
// Each structure holds an ordered element list. Elements form a closed
// union: Boundary, Path, Text, StructRef, ArrayRef, Node and Box.
//
// # Streaming
//
// For files too large to hold in memory, StreamReader delivers one fully
// parsed structure at a time; see the StreamReader type.
package gdsii
