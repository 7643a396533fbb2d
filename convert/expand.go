package convert

import "github.com/wippyai/laykit/gdsii"

// ExpandArrayRef expands an array reference into one structure
// reference per instance, walking rows outward. Array references with a
// non-positive column or row count expand to nothing.
func ExpandArrayRef(aref *gdsii.ArrayRef) []gdsii.Element {
	if aref.Columns <= 0 || aref.Rows <= 0 {
		return nil
	}

	origin := aref.XY[0]
	cols, rows := int32(aref.Columns), int32(aref.Rows)
	colStepX := (aref.XY[1].X - origin.X) / cols
	colStepY := (aref.XY[1].Y - origin.Y) / cols
	rowStepX := (aref.XY[2].X - origin.X) / rows
	rowStepY := (aref.XY[2].Y - origin.Y) / rows

	out := make([]gdsii.Element, 0, int(cols)*int(rows))
	for r := int32(0); r < rows; r++ {
		for c := int32(0); c < cols; c++ {
			out = append(out, &gdsii.StructRef{
				StructureName: aref.StructureName,
				XY: gdsii.Point{
					X: origin.X + c*colStepX + r*rowStepX,
					Y: origin.Y + c*colStepY + r*rowStepY,
				},
				Strans:     aref.Strans,
				ElFlags:    aref.ElFlags,
				Plex:       aref.Plex,
				Properties: aref.Properties,
			})
		}
	}
	return out
}

// ExpandArrayRefs replaces every array reference in the element list
// with its expansion, leaving other elements untouched.
func ExpandArrayRefs(elements []gdsii.Element) []gdsii.Element {
	out := make([]gdsii.Element, 0, len(elements))
	for _, el := range elements {
		if aref, ok := el.(*gdsii.ArrayRef); ok {
			out = append(out, ExpandArrayRef(aref)...)
			continue
		}
		out = append(out, el)
	}
	return out
}

// CountInstances totals the reference instances in an element list,
// counting array references by their expanded size.
func CountInstances(elements []gdsii.Element) int {
	count := 0
	for _, el := range elements {
		switch e := el.(type) {
		case *gdsii.ArrayRef:
			count += int(e.Columns) * int(e.Rows)
		case *gdsii.StructRef:
			count++
		}
	}
	return count
}
