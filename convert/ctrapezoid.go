package convert

import (
	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/oasis"
)

// ctrapezoidVertices expands a constrained trapezoid type into its
// vertex list, relative to the element anchor and open (no closing
// vertex). The family follows the standard table:
//
//	0..7    horizontal trapezoids with one or two 45-degree sides
//	8..15   vertical trapezoids with one or two 45-degree sides
//	16..19  right triangles, one per orientation
//	20..21  horizontal half-triangles (width = 2 x height)
//	22..23  vertical half-triangles (height = 2 x width)
//	24      square (height = width)
//	25      plain rectangle
func ctrapezoidVertices(t uint8, width, height uint64) ([]oasis.Delta, error) {
	w := int64(width)
	h := int64(height)
	d := func(x, y int64) oasis.Delta { return oasis.Delta{X: x, Y: y} }

	switch t {
	case 0: // NE corner cut
		return []oasis.Delta{d(0, 0), d(w, 0), d(w-h, h), d(0, h)}, nil
	case 1: // SE corner cut
		return []oasis.Delta{d(0, 0), d(w-h, 0), d(w, h), d(0, h)}, nil
	case 2: // NW corner cut
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, h), d(h, h)}, nil
	case 3: // SW corner cut
		return []oasis.Delta{d(h, 0), d(w, 0), d(w, h), d(0, h)}, nil
	case 4: // NE and NW cut
		return []oasis.Delta{d(0, 0), d(w, 0), d(w-h, h), d(h, h)}, nil
	case 5: // SE and SW cut
		return []oasis.Delta{d(h, 0), d(w-h, 0), d(w, h), d(0, h)}, nil
	case 6: // NW and SE cut
		return []oasis.Delta{d(0, 0), d(w-h, 0), d(w, h), d(h, h)}, nil
	case 7: // NE and SW cut
		return []oasis.Delta{d(h, 0), d(w, 0), d(w-h, h), d(0, h)}, nil
	case 8: // vertical, NE cut
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, h-w), d(0, h)}, nil
	case 9: // vertical, SE cut
		return []oasis.Delta{d(0, 0), d(w, w), d(w, h), d(0, h)}, nil
	case 10: // vertical, NW cut
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, h), d(0, h-w)}, nil
	case 11: // vertical, SW cut
		return []oasis.Delta{d(0, w), d(w, 0), d(w, h), d(0, h)}, nil
	case 12: // vertical, NE and SE cut
		return []oasis.Delta{d(0, 0), d(w, w), d(w, h-w), d(0, h)}, nil
	case 13: // vertical, NW and SW cut
		return []oasis.Delta{d(0, w), d(w, 0), d(w, h), d(0, h-w)}, nil
	case 14: // vertical, SE and NW cut
		return []oasis.Delta{d(0, 0), d(w, w), d(w, h), d(0, h-w)}, nil
	case 15: // vertical, NE and SW cut
		return []oasis.Delta{d(0, w), d(w, 0), d(w, h-w), d(0, h)}, nil
	case 16:
		return []oasis.Delta{d(0, 0), d(w, 0), d(0, h)}, nil
	case 17:
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, h)}, nil
	case 18:
		return []oasis.Delta{d(0, 0), d(w, h), d(0, h)}, nil
	case 19:
		return []oasis.Delta{d(w, 0), d(w, h), d(0, h)}, nil
	case 20: // apex up, width = 2 x height
		return []oasis.Delta{d(0, 0), d(w, 0), d(w/2, h)}, nil
	case 21: // apex down, width = 2 x height
		return []oasis.Delta{d(w/2, 0), d(w, h), d(0, h)}, nil
	case 22: // apex right, height = 2 x width
		return []oasis.Delta{d(0, 0), d(w, h/2), d(0, h)}, nil
	case 23: // apex left, height = 2 x width
		return []oasis.Delta{d(w, 0), d(w, h), d(0, h/2)}, nil
	case 24: // square
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, w), d(0, w)}, nil
	case 25: // rectangle
		return []oasis.Delta{d(0, 0), d(w, 0), d(w, h), d(0, h)}, nil
	}

	return nil, errors.New(errors.PhaseTranslate, errors.KindUnsupportedFeature).
		Detail("ctrapezoid type %d outside the 0-25 table", t).
		Build()
}
