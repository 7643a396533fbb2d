package oasis

import (
	"fmt"

	"github.com/wippyai/laykit/errors"
)

// Validate checks the model invariants and returns every violation found
// as a structural-violation error. It never aborts early. The codec does
// not enforce these invariants on read.
func (f *File) Validate() []error {
	var out []error

	defined := make(map[string]bool, len(f.Cells))
	for _, c := range f.Cells {
		if defined[c.Name] {
			out = append(out, violation(c.Name, "cell name defined more than once"))
		}
		defined[c.Name] = true
	}

	if f.Unit <= 0 {
		out = append(out, violation("START", fmt.Sprintf("unit %g is not positive", f.Unit)))
	}

	for _, c := range f.Cells {
		for i, el := range c.Elements {
			where := fmt.Sprintf("%s[%d]", c.Name, i)
			switch e := el.(type) {
			case *Placement:
				if !defined[e.CellName] {
					out = append(out, violation(where, "placement of undefined cell "+e.CellName))
				}
			case *Polygon:
				if len(e.Points) < 2 {
					out = append(out, violation(where, "polygon has fewer than 3 vertices"))
				}
			case *Path:
				if len(e.Points) < 1 {
					out = append(out, violation(where, "path has fewer than 2 vertices"))
				}
			case *CTrapezoid:
				if e.TrapType >= CTrapezoidTypeCount {
					out = append(out, violation(where, fmt.Sprintf("ctrapezoid type %d outside the 0-25 table", e.TrapType)))
				}
			}
			if rep := el.Rep(); rep != nil && rep.Kind == RepRegular {
				if rep.XDim == 0 || rep.YDim == 0 {
					out = append(out, violation(where, "repetition with a zero dimension"))
				}
			}
		}
	}

	return out
}

func violation(where, detail string) error {
	return errors.StructuralViolation(errors.FormatOASIS, where, detail)
}
