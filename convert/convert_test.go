package convert_test

import (
	"reflect"
	"testing"

	"github.com/wippyai/laykit/convert"
	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/gdsii"
	"github.com/wippyai/laykit/oasis"
)

func i32(v int32) *int32     { return &v }
func f64(v float64) *float64 { return &v }

func gdsRect(layer int16, pts ...gdsii.Point) *gdsii.Boundary {
	return &gdsii.Boundary{Layer: layer, XY: pts}
}

func pt(x, y int32) gdsii.Point { return gdsii.Point{X: x, Y: y} }

func singleCellLib(elements ...gdsii.Element) *gdsii.Library {
	lib := gdsii.NewLibrary("A")
	lib.Structures = append(lib.Structures, &gdsii.Structure{
		Name:     "TOP",
		Elements: elements,
	})
	return lib
}

func TestRectanglePromotion(t *testing.T) {
	lib := singleCellLib(gdsRect(1,
		pt(0, 0), pt(1000, 0), pt(1000, 500), pt(0, 500), pt(0, 0)))

	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatalf("ToOASIS: %v", err)
	}
	if len(f.Cells) != 1 || len(f.Cells[0].Elements) != 1 {
		t.Fatalf("cells = %+v", f.Cells)
	}
	r, ok := f.Cells[0].Elements[0].(*oasis.Rectangle)
	if !ok {
		t.Fatalf("rectangle not detected: %T", f.Cells[0].Elements[0])
	}
	if r.X != 0 || r.Y != 0 || r.Width != 1000 || r.Height != 500 {
		t.Errorf("rectangle = %+v", r)
	}
	if f.Unit != lib.DatabaseUnit {
		t.Errorf("unit = %g, want %g", f.Unit, lib.DatabaseUnit)
	}
}

func TestRectanglePromotionDisabled(t *testing.T) {
	lib := singleCellLib(gdsRect(1,
		pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0)))
	opts := convert.DefaultOptions()
	opts.DetectRectangles = false

	f, err := convert.ToOASIS(lib, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Cells[0].Elements[0].(*oasis.Polygon); !ok {
		t.Errorf("expected polygon with detection off, got %T", f.Cells[0].Elements[0])
	}
}

func TestNonRectangularBoundaryStaysPolygon(t *testing.T) {
	// A triangle and a rotated square must not promote.
	shapes := [][]gdsii.Point{
		{pt(0, 0), pt(10, 0), pt(5, 8), pt(0, 0)},
		{pt(0, 5), pt(5, 0), pt(10, 5), pt(5, 10), pt(0, 5)},
	}
	for _, xy := range shapes {
		f, err := convert.ToOASIS(singleCellLib(gdsRect(1, xy...)), nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := f.Cells[0].Elements[0].(*oasis.Polygon); !ok {
			t.Errorf("%v promoted to %T", xy, f.Cells[0].Elements[0])
		}
	}
}

func TestRectangleDemotion(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Rectangle{Layer: 1, X: -5, Y: -5, Width: 10, Height: 10},
	}})

	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatalf("ToGDSII: %v", err)
	}
	b := lib.Structures[0].Elements[0].(*gdsii.Boundary)
	want := []gdsii.Point{pt(-5, -5), pt(5, -5), pt(5, 5), pt(-5, 5), pt(-5, -5)}
	if !reflect.DeepEqual(b.XY, want) {
		t.Errorf("boundary = %v, want %v", b.XY, want)
	}
}

func TestRectangleDetectionSoundness(t *testing.T) {
	// Legacy -> modern -> legacy keeps the vertex multiset of an
	// axis-aligned rectangle.
	orig := []gdsii.Point{pt(20, -30), pt(20, 70), pt(-40, 70), pt(-40, -30), pt(20, -30)}
	lib := singleCellLib(gdsRect(3, orig...))

	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	back, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := back.Structures[0].Elements[0].(*gdsii.Boundary)
	if !samePointSet(orig, b.XY) {
		t.Errorf("vertex multiset changed: %v -> %v", orig, b.XY)
	}
	if b.Layer != 3 {
		t.Errorf("layer = %d", b.Layer)
	}
}

// samePointSet compares the corner multisets of two closed vertex
// lists; the duplicated closing vertex may land on a different corner
// after a round trip.
func samePointSet(a, b []gdsii.Point) bool {
	a, b = corners(a), corners(b)
	if len(a) != len(b) {
		return false
	}
	count := map[gdsii.Point]int{}
	for _, p := range a {
		count[p]++
	}
	for _, p := range b {
		count[p]--
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}

func corners(xy []gdsii.Point) []gdsii.Point {
	if len(xy) > 1 && xy[0] == xy[len(xy)-1] {
		return xy[:len(xy)-1]
	}
	return xy
}

func TestArrayRefToRepetition(t *testing.T) {
	lib := singleCellLib(&gdsii.ArrayRef{
		StructureName: "C",
		Columns:       3, Rows: 2,
		XY: [3]gdsii.Point{pt(0, 0), pt(300, 0), pt(0, 200)},
	})
	lib.Structures = append(lib.Structures, &gdsii.Structure{Name: "C"})

	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := f.Cells[0].Elements[0].(*oasis.Placement)
	if p.CellName != "C" || p.X != 0 || p.Y != 0 {
		t.Errorf("placement = %+v", p)
	}
	rep := p.Repetition
	if rep == nil || rep.Kind != oasis.RepRegular ||
		rep.XDim != 3 || rep.YDim != 2 || rep.XSpace != 100 || rep.YSpace != 100 {
		t.Errorf("repetition = %+v", rep)
	}
}

func TestRepetitionToArrayRef(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells,
		&oasis.Cell{Name: "C"},
		&oasis.Cell{Name: "TOP", Elements: []oasis.Element{
			&oasis.Placement{CellName: "C", X: 10, Y: 20, Repetition: &oasis.Repetition{
				Kind: oasis.RepRegular, XDim: 3, YDim: 2, XSpace: 100, YSpace: 100,
			}},
		}},
	)
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	a := lib.Structures[1].Elements[0].(*gdsii.ArrayRef)
	if a.Columns != 3 || a.Rows != 2 {
		t.Errorf("array dims = %dx%d", a.Columns, a.Rows)
	}
	want := [3]gdsii.Point{pt(10, 20), pt(310, 20), pt(10, 220)}
	if a.XY != want {
		t.Errorf("anchors = %v, want %v", a.XY, want)
	}
}

func TestIrregularRepetitionExpands(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells,
		&oasis.Cell{Name: "C"},
		&oasis.Cell{Name: "TOP", Elements: []oasis.Element{
			&oasis.Placement{CellName: "C", X: 100, Y: 100, Repetition: &oasis.Repetition{
				Kind: oasis.RepOffsets, Offsets: []oasis.Delta{
					{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 0, Y: 75},
				},
			}},
		}},
	)
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	els := lib.Structures[1].Elements
	if len(els) != 3 {
		t.Fatalf("expanded to %d elements, want 3", len(els))
	}
	positions := []gdsii.Point{
		els[0].(*gdsii.StructRef).XY,
		els[1].(*gdsii.StructRef).XY,
		els[2].(*gdsii.StructRef).XY,
	}
	want := []gdsii.Point{pt(100, 100), pt(150, 100), pt(100, 175)}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}
}

func TestIrregularRepetitionRejectedWhenDisabled(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Placement{CellName: "C", Repetition: &oasis.Repetition{
			Kind: oasis.RepOffsets, Offsets: []oasis.Delta{{}, {X: 5}},
		}},
	}})
	opts := convert.DefaultOptions()
	opts.ExpandIrregularRepetitions = false

	_, err := convert.ToGDSII(f, opts)
	if !errors.IsKind(err, errors.KindUnsupportedFeature) {
		t.Errorf("disabled expansion: got %v", err)
	}
}

func TestCoordinateOverflow(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Rectangle{X: 1 << 31, Y: 0, Width: 10, Height: 10},
	}})
	_, err := convert.ToGDSII(f, nil)
	if !errors.IsKind(err, errors.KindCoordinateOverflow) {
		t.Errorf("coordinate 2^31: got %v", err)
	}

	// The edge cases inside the range still convert.
	f = oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Text{X: 1<<31 - 1, Y: -(1 << 31), String: "edge"},
	}})
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatalf("in-range extremes: %v", err)
	}
	txt := lib.Structures[0].Elements[0].(*gdsii.Text)
	if txt.XY != pt(2147483647, -2147483648) {
		t.Errorf("extremes = %+v", txt.XY)
	}
}

func TestPathExtensionMapping(t *testing.T) {
	width := i32(20)
	tests := []struct {
		name     string
		path     *gdsii.Path
		wantExt  oasis.ExtScheme
		backType int16
	}{
		{
			name:     "flush",
			path:     &gdsii.Path{PathType: gdsii.PathFlush, Width: width, XY: []gdsii.Point{pt(0, 0), pt(100, 0)}},
			wantExt:  oasis.ExtFlush,
			backType: gdsii.PathFlush,
		},
		{
			name:     "round becomes half width",
			path:     &gdsii.Path{PathType: gdsii.PathRound, Width: width, XY: []gdsii.Point{pt(0, 0), pt(100, 0)}},
			wantExt:  oasis.ExtHalfWidth,
			backType: gdsii.PathSquare,
		},
		{
			name:     "square",
			path:     &gdsii.Path{PathType: gdsii.PathSquare, Width: width, XY: []gdsii.Point{pt(0, 0), pt(100, 0)}},
			wantExt:  oasis.ExtHalfWidth,
			backType: gdsii.PathSquare,
		},
		{
			name: "custom",
			path: &gdsii.Path{
				PathType: gdsii.PathCustom, Width: width,
				BeginExt: i32(3), EndExt: i32(7),
				XY: []gdsii.Point{pt(0, 0), pt(100, 0)},
			},
			wantExt:  oasis.ExtExplicit,
			backType: gdsii.PathCustom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := convert.ToOASIS(singleCellLib(tt.path), nil)
			if err != nil {
				t.Fatal(err)
			}
			op := f.Cells[0].Elements[0].(*oasis.Path)
			if op.StartExt.Scheme != tt.wantExt {
				t.Errorf("start scheme = %v, want %v", op.StartExt.Scheme, tt.wantExt)
			}
			if op.HalfWidth != 10 {
				t.Errorf("half width = %d, want 10", op.HalfWidth)
			}

			back, err := convert.ToGDSII(f, nil)
			if err != nil {
				t.Fatal(err)
			}
			bp := back.Structures[0].Elements[0].(*gdsii.Path)
			if bp.PathType != tt.backType {
				t.Errorf("path type after round trip = %d, want %d", bp.PathType, tt.backType)
			}
			if *bp.Width != 20 {
				t.Errorf("width = %d, want 20", *bp.Width)
			}
			if tt.backType == gdsii.PathCustom {
				if bp.BeginExt == nil || *bp.BeginExt != 3 || bp.EndExt == nil || *bp.EndExt != 7 {
					t.Errorf("custom extensions = %v, %v", bp.BeginExt, bp.EndExt)
				}
			}
		})
	}
}

func TestTrapezoidDemotion(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Trapezoid{Layer: 1, X: 10, Y: 10, Width: 100, Height: 50, DeltaA: 20, DeltaB: -20},
	}})
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := lib.Structures[0].Elements[0].(*gdsii.Boundary)
	want := []gdsii.Point{pt(10, 10), pt(110, 10), pt(90, 60), pt(30, 60), pt(10, 10)}
	if !reflect.DeepEqual(b.XY, want) {
		t.Errorf("trapezoid boundary = %v, want %v", b.XY, want)
	}
}

func TestCTrapezoidDemotion(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.CTrapezoid{Layer: 1, X: 0, Y: 0, TrapType: 25, Width: 40, Height: 30},
	}})
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := lib.Structures[0].Elements[0].(*gdsii.Boundary)
	want := []gdsii.Point{pt(0, 0), pt(40, 0), pt(40, 30), pt(0, 30), pt(0, 0)}
	if !reflect.DeepEqual(b.XY, want) {
		t.Errorf("ctrapezoid 25 = %v, want %v", b.XY, want)
	}

	// A triangle type closes with four vertices.
	f.Cells[0].Elements[0] = &oasis.CTrapezoid{TrapType: 16, Width: 40, Height: 30}
	lib, err = convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	b = lib.Structures[0].Elements[0].(*gdsii.Boundary)
	if len(b.XY) != 4 || b.XY[0] != b.XY[3] {
		t.Errorf("triangle ctrapezoid = %v", b.XY)
	}
}

func TestCTrapezoidUnsupportedType(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.CTrapezoid{TrapType: 26, Width: 10, Height: 10},
	}})
	_, err := convert.ToGDSII(f, nil)
	if !errors.IsKind(err, errors.KindUnsupportedFeature) {
		t.Errorf("ctrapezoid 26: got %v", err)
	}
}

func TestCircleDemotion(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Circle{Layer: 2, X: 0, Y: 0, Radius: 1000},
	}})

	opts := convert.DefaultOptions()
	opts.CircleSegments = 8
	lib, err := convert.ToGDSII(f, opts)
	if err != nil {
		t.Fatal(err)
	}
	b := lib.Structures[0].Elements[0].(*gdsii.Boundary)
	if len(b.XY) != 9 {
		t.Fatalf("8-gon has %d vertices", len(b.XY))
	}
	if b.XY[0] != pt(1000, 0) {
		t.Errorf("first vertex = %v", b.XY[0])
	}
	if b.XY[2] != pt(0, 1000) {
		t.Errorf("quarter vertex = %v", b.XY[2])
	}
	if b.XY[0] != b.XY[8] {
		t.Error("n-gon not closed")
	}
}

func TestNodeAndBoxMapping(t *testing.T) {
	lib := singleCellLib(
		&gdsii.Node{Layer: 1, NodeType: 2, XY: []gdsii.Point{pt(0, 0), pt(10, 0), pt(10, 10)}},
		&gdsii.Box{Layer: 3, BoxType: 0, XY: []gdsii.Point{pt(0, 0), pt(8, 0), pt(8, 4), pt(0, 4), pt(0, 0)}},
	)
	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Cells[0].Elements[0].(*oasis.Polygon); !ok {
		t.Errorf("node mapped to %T", f.Cells[0].Elements[0])
	}
	if _, ok := f.Cells[0].Elements[1].(*oasis.Rectangle); !ok {
		t.Errorf("axis-aligned box mapped to %T", f.Cells[0].Elements[1])
	}
}

func TestStransMapping(t *testing.T) {
	lib := singleCellLib(&gdsii.StructRef{
		StructureName: "SUB",
		XY:            pt(5, 5),
		Strans:        &gdsii.STrans{Reflect: true, Mag: f64(2.5), Angle: f64(90)},
	})
	lib.Structures = append(lib.Structures, &gdsii.Structure{Name: "SUB"})

	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := f.Cells[0].Elements[0].(*oasis.Placement)
	if !p.Mirror || p.Magnification == nil || *p.Magnification != 2.5 || p.Angle == nil || *p.Angle != 90 {
		t.Errorf("placement transform = %+v", p)
	}

	back, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := back.Structures[0].Elements[0].(*gdsii.StructRef)
	if s.Strans == nil || !s.Strans.Reflect || *s.Strans.Mag != 2.5 || *s.Strans.Angle != 90 {
		t.Errorf("strans after round trip = %+v", s.Strans)
	}
}

func TestPropertyMapping(t *testing.T) {
	lib := singleCellLib(&gdsii.Text{
		Layer: 1, XY: pt(0, 0), String: "x",
		Properties: []gdsii.Property{{Attr: 12, Value: "hello"}},
	})
	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	props := f.Cells[0].Elements[0].Props()
	if len(props) != 1 || props[0].Name != "12" || props[0].Values[0].Str != "hello" {
		t.Errorf("modern properties = %+v", props)
	}

	back, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := back.Structures[0].Elements[0].Props()
	if len(got) != 1 || got[0].Attr != 12 || got[0].Value != "hello" {
		t.Errorf("legacy properties = %+v", got)
	}
}

func TestGeometryRepetitionExpansion(t *testing.T) {
	f := oasis.NewFile()
	f.Cells = append(f.Cells, &oasis.Cell{Name: "TOP", Elements: []oasis.Element{
		&oasis.Rectangle{Layer: 1, X: 0, Y: 0, Width: 10, Height: 10, Repetition: &oasis.Repetition{
			Kind: oasis.RepRegular, XDim: 2, YDim: 2, XSpace: 100, YSpace: 50,
		}},
	}})
	lib, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	els := lib.Structures[0].Elements
	if len(els) != 4 {
		t.Fatalf("repetition expanded to %d boundaries, want 4", len(els))
	}
	last := els[3].(*gdsii.Boundary)
	if last.XY[0] != pt(100, 50) {
		t.Errorf("last instance anchored at %v", last.XY[0])
	}
}

func TestFullRoundTripPreservesShapes(t *testing.T) {
	lib := singleCellLib(
		gdsRect(1, pt(0, 0), pt(1000, 0), pt(1000, 500), pt(0, 500), pt(0, 0)),
		gdsRect(2, pt(0, 0), pt(10, 0), pt(5, 8), pt(0, 0)),
		&gdsii.Path{Layer: 3, PathType: gdsii.PathFlush, Width: i32(10), XY: []gdsii.Point{pt(0, 0), pt(50, 0)}},
		&gdsii.Text{Layer: 4, XY: pt(1, 2), String: "t"},
		&gdsii.StructRef{StructureName: "SUB", XY: pt(9, 9)},
	)
	lib.Structures = append(lib.Structures, &gdsii.Structure{Name: "SUB"})

	f, err := convert.ToOASIS(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	back, err := convert.ToGDSII(f, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(back.Structures) != 2 || back.Structures[0].Name != "TOP" || back.Structures[1].Name != "SUB" {
		t.Fatalf("structures = %+v", back.Structures)
	}
	els := back.Structures[0].Elements
	if len(els) != 5 {
		t.Fatalf("element count = %d, want 5", len(els))
	}
	if b := els[0].(*gdsii.Boundary); !samePointSet(b.XY, lib.Structures[0].Elements[0].(*gdsii.Boundary).XY) {
		t.Errorf("rectangle shape changed: %v", b.XY)
	}
	if b := els[1].(*gdsii.Boundary); !samePointSet(b.XY, lib.Structures[0].Elements[1].(*gdsii.Boundary).XY) {
		t.Errorf("triangle shape changed: %v", b.XY)
	}
	if s := els[4].(*gdsii.StructRef); s.StructureName != "SUB" || s.XY != pt(9, 9) {
		t.Errorf("hierarchy edge changed: %+v", s)
	}
}

func TestTranslatorDoesNotMutateInput(t *testing.T) {
	lib := singleCellLib(gdsRect(1, pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0)))
	snapshot, err := lib.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := convert.ToOASIS(lib, nil); err != nil {
		t.Fatal(err)
	}
	after, err := lib.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snapshot, after) {
		t.Error("ToOASIS mutated its input")
	}
}

func TestZeroDimensionArray(t *testing.T) {
	lib := singleCellLib(&gdsii.ArrayRef{
		StructureName: "C", Columns: 0, Rows: 2,
		XY: [3]gdsii.Point{pt(0, 0), pt(10, 0), pt(0, 10)},
	})
	_, err := convert.ToOASIS(lib, nil)
	if !errors.IsKind(err, errors.KindStructuralViolation) {
		t.Errorf("zero-dimension array: got %v", err)
	}
}
