package convert

import (
	"math"
	"strconv"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/gdsii"
	"github.com/wippyai/laykit/oasis"
)

// ToOASIS translates a GDSII library into a fresh OASIS file. The
// library is not mutated. Structures become cells in order; the cell
// name table is populated with sequential reference numbers.
func ToOASIS(lib *gdsii.Library, opts *Options) (*oasis.File, error) {
	opts = opts.orDefault()

	f := oasis.NewFile()
	f.Unit = lib.DatabaseUnit

	for i, s := range lib.Structures {
		f.Names.CellNames[uint64(i)] = s.Name
		cell := &oasis.Cell{Name: s.Name}
		for _, el := range s.Elements {
			out, err := elementToOASIS(el, opts)
			if err != nil {
				return nil, err
			}
			if out != nil {
				cell.Elements = append(cell.Elements, out)
			}
		}
		f.Cells = append(f.Cells, cell)
	}
	return f, nil
}

// ToGDSII translates an OASIS file into a fresh GDSII library. The file
// is not mutated. Coordinates outside the 32-bit range fail with a
// coordinate-overflow error; nothing is truncated. When the legacy user
// unit has no source it is synthesized as 1000 times the database unit.
func ToGDSII(f *oasis.File, opts *Options) (*gdsii.Library, error) {
	opts = opts.orDefault()

	lib := gdsii.NewLibrary("CONVERTED")
	lib.DatabaseUnit = f.Unit
	lib.UserUnit = f.Unit * 1000

	for _, c := range f.Cells {
		s := &gdsii.Structure{Name: c.Name}
		for _, el := range c.Elements {
			out, err := elementToGDSII(c.Name, el, opts)
			if err != nil {
				return nil, err
			}
			s.Elements = append(s.Elements, out...)
		}
		lib.Structures = append(lib.Structures, s)
	}
	return lib, nil
}

// GDSII to OASIS element mapping.

func elementToOASIS(el gdsii.Element, opts *Options) (oasis.Element, error) {
	switch e := el.(type) {
	case *gdsii.Boundary:
		return boundaryToOASIS(e, opts)
	case *gdsii.Path:
		return pathToOASIS(e)
	case *gdsii.Text:
		return &oasis.Text{
			Layer:      uint32(e.Layer),
			TextType:   uint32(e.TextType),
			X:          int64(e.XY.X),
			Y:          int64(e.XY.Y),
			String:     e.String,
			Properties: propsToOASIS(e.Properties),
		}, nil
	case *gdsii.StructRef:
		p := &oasis.Placement{
			CellName:   e.StructureName,
			X:          int64(e.XY.X),
			Y:          int64(e.XY.Y),
			Properties: propsToOASIS(e.Properties),
		}
		applyStrans(p, e.Strans)
		return p, nil
	case *gdsii.ArrayRef:
		return arrayRefToOASIS(e)
	case *gdsii.Node:
		if len(e.XY) == 0 {
			return nil, nil
		}
		return &oasis.Polygon{
			Layer:      uint32(e.Layer),
			Datatype:   uint32(e.NodeType),
			X:          int64(e.XY[0].X),
			Y:          int64(e.XY[0].Y),
			Points:     relativePoints(e.XY),
			Properties: propsToOASIS(e.Properties),
		}, nil
	case *gdsii.Box:
		b := &gdsii.Boundary{
			Layer:      e.Layer,
			Datatype:   e.BoxType,
			XY:         e.XY,
			Properties: e.Properties,
		}
		return boundaryToOASIS(b, opts)
	}
	return nil, nil
}

func boundaryToOASIS(e *gdsii.Boundary, opts *Options) (oasis.Element, error) {
	if len(e.XY) == 0 {
		return nil, nil
	}
	if opts.DetectRectangles && isAxisAlignedRect(e.XY) {
		minX, minY, w, h := rectBounds(e.XY)
		return &oasis.Rectangle{
			Layer:      uint32(e.Layer),
			Datatype:   uint32(e.Datatype),
			X:          int64(minX),
			Y:          int64(minY),
			Width:      w,
			Height:     h,
			Properties: propsToOASIS(e.Properties),
		}, nil
	}
	return &oasis.Polygon{
		Layer:      uint32(e.Layer),
		Datatype:   uint32(e.Datatype),
		X:          int64(e.XY[0].X),
		Y:          int64(e.XY[0].Y),
		Points:     relativePoints(e.XY),
		Properties: propsToOASIS(e.Properties),
	}, nil
}

func pathToOASIS(e *gdsii.Path) (oasis.Element, error) {
	if len(e.XY) == 0 {
		return nil, nil
	}
	var halfWidth uint64
	if e.Width != nil && *e.Width > 0 {
		halfWidth = uint64(*e.Width) / 2
	}

	var start, end oasis.PathExtension
	switch e.PathType {
	case gdsii.PathFlush:
		// flush ends
	case gdsii.PathRound, gdsii.PathSquare:
		start = oasis.PathExtension{Scheme: oasis.ExtHalfWidth}
		end = start
	case gdsii.PathCustom:
		start = oasis.PathExtension{Scheme: oasis.ExtExplicit}
		if e.BeginExt != nil {
			start.Value = int64(*e.BeginExt)
		}
		end = oasis.PathExtension{Scheme: oasis.ExtExplicit}
		if e.EndExt != nil {
			end.Value = int64(*e.EndExt)
		}
	}

	return &oasis.Path{
		Layer:      uint32(e.Layer),
		Datatype:   uint32(e.Datatype),
		HalfWidth:  halfWidth,
		StartExt:   start,
		EndExt:     end,
		X:          int64(e.XY[0].X),
		Y:          int64(e.XY[0].Y),
		Points:     relativePoints(e.XY),
		Properties: propsToOASIS(e.Properties),
	}, nil
}

func arrayRefToOASIS(e *gdsii.ArrayRef) (oasis.Element, error) {
	if e.Columns <= 0 || e.Rows <= 0 {
		return nil, errors.New(errors.PhaseTranslate, errors.KindStructuralViolation).
			Detail("array reference to %s has dimensions %dx%d", e.StructureName, e.Columns, e.Rows).
			Build()
	}
	origin := e.XY[0]
	cols, rows := int64(e.Columns), int64(e.Rows)
	colStep := oasis.Delta{
		X: (int64(e.XY[1].X) - int64(origin.X)) / cols,
		Y: (int64(e.XY[1].Y) - int64(origin.Y)) / cols,
	}
	rowStep := oasis.Delta{
		X: (int64(e.XY[2].X) - int64(origin.X)) / rows,
		Y: (int64(e.XY[2].Y) - int64(origin.Y)) / rows,
	}

	p := &oasis.Placement{
		CellName:   e.StructureName,
		X:          int64(origin.X),
		Y:          int64(origin.Y),
		Properties: propsToOASIS(e.Properties),
	}
	applyStrans(p, e.Strans)

	if colStep.Y == 0 && rowStep.X == 0 {
		p.Repetition = &oasis.Repetition{
			Kind:   oasis.RepRegular,
			XDim:   uint64(cols),
			YDim:   uint64(rows),
			XSpace: colStep.X,
			YSpace: rowStep.Y,
		}
		return p, nil
	}

	// Skewed array axes have no matrix form; keep the geometry as an
	// explicit offset list.
	offsets := make([]oasis.Delta, 0, cols*rows)
	for r := int64(0); r < rows; r++ {
		for c := int64(0); c < cols; c++ {
			offsets = append(offsets, oasis.Delta{
				X: c*colStep.X + r*rowStep.X,
				Y: c*colStep.Y + r*rowStep.Y,
			})
		}
	}
	p.Repetition = &oasis.Repetition{Kind: oasis.RepOffsets, Offsets: offsets}
	return p, nil
}

func applyStrans(p *oasis.Placement, st *gdsii.STrans) {
	if st == nil {
		return
	}
	p.Mirror = st.Reflect
	if st.Mag != nil {
		v := *st.Mag
		p.Magnification = &v
	}
	if st.Angle != nil {
		v := *st.Angle
		p.Angle = &v
	}
}

// relativePoints drops the first vertex as the anchor and rebases the
// rest against it.
func relativePoints(xy []gdsii.Point) []oasis.Delta {
	if len(xy) < 2 {
		return nil
	}
	anchor := xy[0]
	out := make([]oasis.Delta, len(xy)-1)
	for i, p := range xy[1:] {
		out[i] = oasis.Delta{
			X: int64(p.X) - int64(anchor.X),
			Y: int64(p.Y) - int64(anchor.Y),
		}
	}
	return out
}

func propsToOASIS(props []gdsii.Property) []oasis.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]oasis.Property, len(props))
	for i, p := range props {
		out[i] = oasis.Property{
			Name:   strconv.Itoa(int(p.Attr)),
			Values: []oasis.PropValue{oasis.StringValue(p.Value)},
		}
	}
	return out
}

// OASIS to GDSII element mapping. One OASIS element can expand into
// several GDSII elements when a repetition is in play.

func elementToGDSII(cellName string, el oasis.Element, opts *Options) ([]gdsii.Element, error) {
	base, err := singleToGDSII(cellName, el, opts)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, nil
	}

	rep := el.Rep()
	if rep == nil || rep.Count() <= 1 {
		return []gdsii.Element{base}, nil
	}

	// Placements with a regular repetition become a single array
	// reference; everything else is expanded instance by instance.
	if p, ok := el.(*oasis.Placement); ok && rep.Kind == oasis.RepRegular {
		return placementArray(cellName, p, rep)
	}
	if _, ok := el.(*oasis.Placement); ok && !opts.ExpandIrregularRepetitions {
		return nil, errors.New(errors.PhaseTranslate, errors.KindUnsupportedFeature).
			Detail("placement of %s carries an irregular repetition and expansion is disabled", cellName).
			Build()
	}

	var out []gdsii.Element
	var walkErr error
	rep.Each(func(d oasis.Delta) {
		if walkErr != nil {
			return
		}
		shifted, err := shiftElement(cellName, base, d)
		if err != nil {
			walkErr = err
			return
		}
		out = append(out, shifted)
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func singleToGDSII(cellName string, el oasis.Element, opts *Options) (gdsii.Element, error) {
	switch e := el.(type) {
	case *oasis.Rectangle:
		return rectangleToGDSII(cellName, e)
	case *oasis.Polygon:
		xy, err := absolutePoints(cellName, e.X, e.Y, e.Points, true)
		if err != nil {
			return nil, err
		}
		return &gdsii.Boundary{
			Layer:      layer16(e.Layer),
			Datatype:   layer16(e.Datatype),
			XY:         xy,
			Properties: propsToGDSII(e.Properties),
		}, nil
	case *oasis.Path:
		return pathToGDSII(cellName, e)
	case *oasis.Trapezoid:
		return trapezoidToGDSII(cellName, e)
	case *oasis.CTrapezoid:
		verts, err := ctrapezoidVertices(e.TrapType, e.Width, e.Height)
		if err != nil {
			return nil, err
		}
		xy, err := deltasToXY(cellName, e.X, e.Y, verts)
		if err != nil {
			return nil, err
		}
		return &gdsii.Boundary{
			Layer:      layer16(e.Layer),
			Datatype:   layer16(e.Datatype),
			XY:         xy,
			Properties: propsToGDSII(e.Properties),
		}, nil
	case *oasis.Circle:
		return circleToGDSII(cellName, e, opts)
	case *oasis.Text:
		x, err := coord32(cellName, e.X)
		if err != nil {
			return nil, err
		}
		y, err := coord32(cellName, e.Y)
		if err != nil {
			return nil, err
		}
		return &gdsii.Text{
			Layer:      layer16(e.Layer),
			TextType:   layer16(e.TextType),
			XY:         gdsii.Point{X: x, Y: y},
			String:     e.String,
			Properties: propsToGDSII(e.Properties),
		}, nil
	case *oasis.Placement:
		return placementToGDSII(cellName, e)
	case *oasis.XElement:
		// Extension elements have no legacy counterpart.
		return nil, nil
	}
	return nil, nil
}

func rectangleToGDSII(cellName string, e *oasis.Rectangle) (gdsii.Element, error) {
	x0, err := coord32(cellName, e.X)
	if err != nil {
		return nil, err
	}
	y0, err := coord32(cellName, e.Y)
	if err != nil {
		return nil, err
	}
	x1, err := coord32(cellName, e.X+int64(e.Width))
	if err != nil {
		return nil, err
	}
	y1, err := coord32(cellName, e.Y+int64(e.Height))
	if err != nil {
		return nil, err
	}
	return &gdsii.Boundary{
		Layer:    layer16(e.Layer),
		Datatype: layer16(e.Datatype),
		XY: []gdsii.Point{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
		},
		Properties: propsToGDSII(e.Properties),
	}, nil
}

func pathToGDSII(cellName string, e *oasis.Path) (gdsii.Element, error) {
	xy, err := absolutePoints(cellName, e.X, e.Y, e.Points, false)
	if err != nil {
		return nil, err
	}
	width := int32(0)
	if e.HalfWidth > 0 {
		w, err := coord32(cellName, int64(e.HalfWidth)*2)
		if err != nil {
			return nil, err
		}
		width = w
	}

	p := &gdsii.Path{
		Layer:      layer16(e.Layer),
		Datatype:   layer16(e.Datatype),
		Width:      &width,
		XY:         xy,
		Properties: propsToGDSII(e.Properties),
	}

	switch {
	case e.StartExt.Scheme == oasis.ExtFlush && e.EndExt.Scheme == oasis.ExtFlush:
		p.PathType = gdsii.PathFlush
	case e.StartExt.Scheme == oasis.ExtHalfWidth && e.EndExt.Scheme == oasis.ExtHalfWidth:
		p.PathType = gdsii.PathSquare
	default:
		p.PathType = gdsii.PathCustom
		begin, err := extensionValue(cellName, e.StartExt, e.HalfWidth)
		if err != nil {
			return nil, err
		}
		end, err := extensionValue(cellName, e.EndExt, e.HalfWidth)
		if err != nil {
			return nil, err
		}
		p.BeginExt = &begin
		p.EndExt = &end
	}
	return p, nil
}

func extensionValue(cellName string, ext oasis.PathExtension, halfWidth uint64) (int32, error) {
	switch ext.Scheme {
	case oasis.ExtHalfWidth:
		return coord32(cellName, int64(halfWidth))
	case oasis.ExtExplicit:
		return coord32(cellName, ext.Value)
	default:
		return 0, nil
	}
}

// trapezoidToGDSII shears one pair of edges of the bounding box: the
// horizontal form keeps the bottom edge and shifts the top by the two
// deltas, the vertical form keeps the left edge and shifts the right.
func trapezoidToGDSII(cellName string, e *oasis.Trapezoid) (gdsii.Element, error) {
	w := int64(e.Width)
	h := int64(e.Height)
	var verts []oasis.Delta
	if e.Vertical {
		verts = []oasis.Delta{
			{X: 0, Y: 0},
			{X: w, Y: e.DeltaA},
			{X: w, Y: h + e.DeltaB},
			{X: 0, Y: h},
		}
	} else {
		verts = []oasis.Delta{
			{X: 0, Y: 0},
			{X: w, Y: 0},
			{X: w + e.DeltaB, Y: h},
			{X: e.DeltaA, Y: h},
		}
	}
	xy, err := deltasToXY(cellName, e.X, e.Y, verts)
	if err != nil {
		return nil, err
	}
	return &gdsii.Boundary{
		Layer:      layer16(e.Layer),
		Datatype:   layer16(e.Datatype),
		XY:         xy,
		Properties: propsToGDSII(e.Properties),
	}, nil
}

func circleToGDSII(cellName string, e *oasis.Circle, opts *Options) (gdsii.Element, error) {
	n := opts.CircleSegments
	if n < 3 {
		n = 3
	}
	r := float64(e.Radius)
	xy := make([]gdsii.Point, 0, n+1)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x, err := coord32(cellName, e.X+int64(math.Round(r*math.Cos(theta))))
		if err != nil {
			return nil, err
		}
		y, err := coord32(cellName, e.Y+int64(math.Round(r*math.Sin(theta))))
		if err != nil {
			return nil, err
		}
		xy = append(xy, gdsii.Point{X: x, Y: y})
	}
	xy = append(xy, xy[0])
	return &gdsii.Boundary{
		Layer:      layer16(e.Layer),
		Datatype:   layer16(e.Datatype),
		XY:         xy,
		Properties: propsToGDSII(e.Properties),
	}, nil
}

func placementToGDSII(cellName string, e *oasis.Placement) (gdsii.Element, error) {
	x, err := coord32(cellName, e.X)
	if err != nil {
		return nil, err
	}
	y, err := coord32(cellName, e.Y)
	if err != nil {
		return nil, err
	}
	s := &gdsii.StructRef{
		StructureName: e.CellName,
		XY:            gdsii.Point{X: x, Y: y},
		Strans:        stransFromPlacement(e),
		Properties:    propsToGDSII(e.Properties),
	}
	return s, nil
}

func stransFromPlacement(e *oasis.Placement) *gdsii.STrans {
	if e.Magnification == nil && e.Angle == nil && !e.Mirror {
		return nil
	}
	st := &gdsii.STrans{Reflect: e.Mirror}
	if e.Magnification != nil {
		v := *e.Magnification
		st.Mag = &v
	}
	if e.Angle != nil {
		v := *e.Angle
		st.Angle = &v
	}
	return st
}

// placementArray folds a regular repetition back into a single array
// reference with derived anchors.
func placementArray(cellName string, p *oasis.Placement, rep *oasis.Repetition) ([]gdsii.Element, error) {
	if rep.XDim == 0 || rep.YDim == 0 {
		return nil, errors.New(errors.PhaseTranslate, errors.KindStructuralViolation).
			Detail("placement of %s repeats with a zero dimension", p.CellName).
			Build()
	}
	if rep.XDim > math.MaxInt16 || rep.YDim > math.MaxInt16 {
		return nil, errors.New(errors.PhaseTranslate, errors.KindStructuralViolation).
			Detail("repetition %dx%d exceeds the array reference limit", rep.XDim, rep.YDim).
			Build()
	}

	base, err := placementToGDSII(cellName, p)
	if err != nil {
		return nil, err
	}
	sref := base.(*gdsii.StructRef)

	cols, rows := int64(rep.XDim), int64(rep.YDim)
	colEndX, err := coord32(cellName, p.X+cols*rep.XSpace)
	if err != nil {
		return nil, err
	}
	rowEndY, err := coord32(cellName, p.Y+rows*rep.YSpace)
	if err != nil {
		return nil, err
	}

	return []gdsii.Element{&gdsii.ArrayRef{
		StructureName: p.CellName,
		Columns:       int16(rep.XDim),
		Rows:          int16(rep.YDim),
		XY: [3]gdsii.Point{
			sref.XY,
			{X: colEndX, Y: sref.XY.Y},
			{X: sref.XY.X, Y: rowEndY},
		},
		Strans:     sref.Strans,
		Properties: sref.Properties,
	}}, nil
}

// shiftElement clones a converted element displaced by a repetition
// offset.
func shiftElement(cellName string, el gdsii.Element, d oasis.Delta) (gdsii.Element, error) {
	shiftPoint := func(p gdsii.Point) (gdsii.Point, error) {
		x, err := coord32(cellName, int64(p.X)+d.X)
		if err != nil {
			return gdsii.Point{}, err
		}
		y, err := coord32(cellName, int64(p.Y)+d.Y)
		if err != nil {
			return gdsii.Point{}, err
		}
		return gdsii.Point{X: x, Y: y}, nil
	}
	shiftAll := func(pts []gdsii.Point) ([]gdsii.Point, error) {
		out := make([]gdsii.Point, len(pts))
		for i, p := range pts {
			sp, err := shiftPoint(p)
			if err != nil {
				return nil, err
			}
			out[i] = sp
		}
		return out, nil
	}

	switch e := el.(type) {
	case *gdsii.Boundary:
		c := *e
		xy, err := shiftAll(e.XY)
		if err != nil {
			return nil, err
		}
		c.XY = xy
		return &c, nil
	case *gdsii.Path:
		c := *e
		xy, err := shiftAll(e.XY)
		if err != nil {
			return nil, err
		}
		c.XY = xy
		return &c, nil
	case *gdsii.Text:
		c := *e
		p, err := shiftPoint(e.XY)
		if err != nil {
			return nil, err
		}
		c.XY = p
		return &c, nil
	case *gdsii.StructRef:
		c := *e
		p, err := shiftPoint(e.XY)
		if err != nil {
			return nil, err
		}
		c.XY = p
		return &c, nil
	}
	return el, nil
}

func absolutePoints(cellName string, x, y int64, pts []oasis.Delta, closed bool) ([]gdsii.Point, error) {
	out := make([]gdsii.Point, 0, len(pts)+2)
	ax, err := coord32(cellName, x)
	if err != nil {
		return nil, err
	}
	ay, err := coord32(cellName, y)
	if err != nil {
		return nil, err
	}
	out = append(out, gdsii.Point{X: ax, Y: ay})
	for _, p := range pts {
		px, err := coord32(cellName, x+p.X)
		if err != nil {
			return nil, err
		}
		py, err := coord32(cellName, y+p.Y)
		if err != nil {
			return nil, err
		}
		out = append(out, gdsii.Point{X: px, Y: py})
	}
	if closed && len(out) > 1 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out, nil
}

func deltasToXY(cellName string, x, y int64, verts []oasis.Delta) ([]gdsii.Point, error) {
	out := make([]gdsii.Point, 0, len(verts)+1)
	for _, v := range verts {
		px, err := coord32(cellName, x+v.X)
		if err != nil {
			return nil, err
		}
		py, err := coord32(cellName, y+v.Y)
		if err != nil {
			return nil, err
		}
		out = append(out, gdsii.Point{X: px, Y: py})
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out, nil
}

func propsToGDSII(props []oasis.Property) []gdsii.Property {
	var out []gdsii.Property
	for _, p := range props {
		attr, err := strconv.ParseInt(p.Name, 10, 16)
		if err != nil || len(p.Values) != 1 || p.Values[0].Kind != oasis.PropString {
			// Named or structured properties have no legacy encoding.
			continue
		}
		out = append(out, gdsii.Property{Attr: int16(attr), Value: p.Values[0].Str})
	}
	return out
}

// coord32 narrows a 64-bit coordinate, failing on anything outside the
// 32-bit range.
func coord32(where string, v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errors.CoordinateOverflow(where, v)
	}
	return int32(v), nil
}

// layer16 narrows a layer or type number. Values beyond the legacy
// 16-bit range wrap; layouts in practice use small layer numbers.
func layer16(v uint32) int16 {
	return int16(v)
}
