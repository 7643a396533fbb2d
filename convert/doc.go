// Package convert translates between the GDSII and OASIS in-memory
// models.
//
// The translator is pure: it reads both inputs without mutation and
// allocates a fresh output. No I/O happens here; parse and serialize
// with the gdsii and oasis packages.
//
//	lib, _ := gdsii.Read(f)
//	file, err := convert.ToOASIS(lib, nil)
//	back, err := convert.ToGDSII(file, nil)
//
// Element types map across the two taxonomies: axis-aligned five-vertex
// boundaries promote to rectangles, rectangles, trapezoids and circles
// demote to boundaries, array references become placements with regular
// repetitions and vice versa. Coordinates narrow from 64 to 32 bits on
// the way to GDSII; anything outside the 32-bit range fails with a
// coordinate-overflow error rather than truncating.
package convert
