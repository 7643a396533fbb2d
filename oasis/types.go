package oasis

// File is a parsed OASIS stream: header metadata, the interned name
// tables, and cells in file order.
type File struct {
	Version string
	// Unit is the size of one database unit, in meters.
	Unit       float64
	OffsetFlag bool
	Names      NameTable
	Cells      []*Cell
	// Properties holds file-level properties.
	Properties []Property
}

// NewFile creates an empty file with version "1.0" and a 1 nanometer
// grid.
func NewFile() *File {
	return &File{
		Version: "1.0",
		Unit:    1e-9,
		Names:   NewNameTable(),
	}
}

// NameTable holds the interned string tables. Reference numbers are
// assigned either explicitly in the record or implicitly in occurrence
// order; the two styles never mix within one class.
type NameTable struct {
	CellNames   map[uint64]string
	TextStrings map[uint64]string
	PropNames   map[uint64]string
	PropStrings map[uint64]string
	LayerNames  map[uint64]string
	XNames      map[uint64]XName
}

// XName is an extension name record, preserved but otherwise inert.
type XName struct {
	Attribute uint64
	Name      string
}

// NewNameTable creates an empty name table.
func NewNameTable() NameTable {
	return NameTable{
		CellNames:   make(map[uint64]string),
		TextStrings: make(map[uint64]string),
		PropNames:   make(map[uint64]string),
		PropStrings: make(map[uint64]string),
		LayerNames:  make(map[uint64]string),
		XNames:      make(map[uint64]XName),
	}
}

// Cell is a named cell definition holding an ordered element list.
type Cell struct {
	Name     string
	Elements []Element
}

// Delta is a 64-bit displacement pair.
type Delta struct {
	X int64
	Y int64
}

// Element is one entry of a cell. The set of implementations is closed:
// Rectangle, Polygon, Path, Trapezoid, CTrapezoid, Circle, Text,
// Placement and XElement.
type Element interface {
	// Rep exposes the element's repetition, nil when single.
	Rep() *Repetition
	// Props exposes the element's property list.
	Props() []Property

	isElement()
}

// Rectangle is an axis-aligned rectangle anchored at its lower-left
// corner.
type Rectangle struct {
	Layer      uint32
	Datatype   uint32
	X          int64
	Y          int64
	Width      uint64
	Height     uint64
	Repetition *Repetition
	Properties []Property
}

// Polygon is a closed figure. Points are stored relative to the anchor;
// the anchor vertex itself is implicit.
type Polygon struct {
	Layer      uint32
	Datatype   uint32
	X          int64
	Y          int64
	Points     []Delta
	Repetition *Repetition
	Properties []Property
}

// PathExtension describes how far a path extends past an endpoint.
type PathExtension struct {
	Scheme ExtScheme
	// Value is the explicit extension length, meaningful for
	// ExtExplicit.
	Value int64
}

// ExtScheme enumerates the path end treatments.
type ExtScheme int

const (
	ExtFlush ExtScheme = iota
	ExtHalfWidth
	ExtExplicit
)

// Path is an open figure with a half-width. Points are relative to the
// anchor, which is the first vertex.
type Path struct {
	Layer      uint32
	Datatype   uint32
	HalfWidth  uint64
	StartExt   PathExtension
	EndExt     PathExtension
	X          int64
	Y          int64
	Points     []Delta
	Repetition *Repetition
	Properties []Property
}

// Trapezoid is a trapezoid with two axis-parallel sides. DeltaA and
// DeltaB shear the two non-parallel edges; Vertical selects which axis
// the parallel sides follow.
type Trapezoid struct {
	Layer      uint32
	Datatype   uint32
	X          int64
	Y          int64
	Width      uint64
	Height     uint64
	DeltaA     int64
	DeltaB     int64
	Vertical   bool
	Repetition *Repetition
	Properties []Property
}

// CTrapezoid is one of the 26 predefined constrained trapezoid shapes.
type CTrapezoid struct {
	Layer      uint32
	Datatype   uint32
	X          int64
	Y          int64
	TrapType   uint8
	Width      uint64
	Height     uint64
	Repetition *Repetition
	Properties []Property
}

// Circle is a circle by center and radius.
type Circle struct {
	Layer      uint32
	Datatype   uint32
	X          int64
	Y          int64
	Radius     uint64
	Repetition *Repetition
	Properties []Property
}

// Text is an annotation string anchored at a point.
type Text struct {
	Layer      uint32
	TextType   uint32
	X          int64
	Y          int64
	String     string
	Repetition *Repetition
	Properties []Property
}

// Placement instantiates another cell, identified by name.
type Placement struct {
	CellName      string
	X             int64
	Y             int64
	Magnification *float64
	Angle         *float64 // degrees, counterclockwise
	Mirror        bool     // reflect about the x axis before rotation
	Repetition    *Repetition
	Properties    []Property
}

// XElement preserves an extension element verbatim.
type XElement struct {
	Attribute  uint64
	Data       string
	Repetition *Repetition
	Properties []Property
}

func (r *Rectangle) isElement()  {}
func (p *Polygon) isElement()    {}
func (p *Path) isElement()       {}
func (t *Trapezoid) isElement()  {}
func (c *CTrapezoid) isElement() {}
func (c *Circle) isElement()     {}
func (t *Text) isElement()       {}
func (p *Placement) isElement()  {}
func (x *XElement) isElement()   {}

func (r *Rectangle) Rep() *Repetition  { return r.Repetition }
func (p *Polygon) Rep() *Repetition    { return p.Repetition }
func (p *Path) Rep() *Repetition       { return p.Repetition }
func (t *Trapezoid) Rep() *Repetition  { return t.Repetition }
func (c *CTrapezoid) Rep() *Repetition { return c.Repetition }
func (c *Circle) Rep() *Repetition     { return c.Repetition }
func (t *Text) Rep() *Repetition       { return t.Repetition }
func (p *Placement) Rep() *Repetition  { return p.Repetition }
func (x *XElement) Rep() *Repetition   { return x.Repetition }

func (r *Rectangle) Props() []Property  { return r.Properties }
func (p *Polygon) Props() []Property    { return p.Properties }
func (p *Path) Props() []Property       { return p.Properties }
func (t *Trapezoid) Props() []Property  { return t.Properties }
func (c *CTrapezoid) Props() []Property { return c.Properties }
func (c *Circle) Props() []Property     { return c.Properties }
func (t *Text) Props() []Property       { return t.Properties }
func (p *Placement) Props() []Property  { return p.Properties }
func (x *XElement) Props() []Property   { return x.Properties }

// Repetition describes multiple placements of one element. The decoder
// normalizes every wire form to either a regular matrix or an explicit
// offset list; both reserialize to geometrically equivalent output.
type Repetition struct {
	Kind RepetitionKind
	// Regular matrix fields. Dimensions count instances, spacings are
	// per-step displacements along each axis.
	XDim   uint64
	YDim   uint64
	XSpace int64
	YSpace int64
	// Offsets holds every instance displacement for the explicit form,
	// the implicit (0,0) origin included.
	Offsets []Delta
}

// RepetitionKind discriminates the in-memory repetition forms.
type RepetitionKind int

const (
	// RepRegular is an orthogonal matrix.
	RepRegular RepetitionKind = iota
	// RepOffsets is an explicit displacement list.
	RepOffsets
)

// Count returns the number of instances the repetition describes.
func (r *Repetition) Count() uint64 {
	if r == nil {
		return 1
	}
	if r.Kind == RepRegular {
		return r.XDim * r.YDim
	}
	return uint64(len(r.Offsets))
}

// Each invokes fn with every instance displacement, the origin included.
func (r *Repetition) Each(fn func(Delta)) {
	if r == nil {
		fn(Delta{})
		return
	}
	if r.Kind == RepRegular {
		for j := uint64(0); j < r.YDim; j++ {
			for i := uint64(0); i < r.XDim; i++ {
				fn(Delta{X: int64(i) * r.XSpace, Y: int64(j) * r.YSpace})
			}
		}
		return
	}
	for _, d := range r.Offsets {
		fn(d)
	}
}

// Property is a named value list attached to an element, cell, or the
// file.
type Property struct {
	Name   string
	Values []PropValue
}

// PropValueKind discriminates property values.
type PropValueKind int

const (
	PropInt PropValueKind = iota
	PropReal
	PropString
	PropBool
)

// PropValue is one property value: a signed integer, a real, a string,
// or a boolean.
type PropValue struct {
	Kind PropValueKind
	Int  int64
	Real float64
	Str  string
	Bool bool
}

// IntValue makes an integer property value.
func IntValue(v int64) PropValue { return PropValue{Kind: PropInt, Int: v} }

// RealValue makes a real property value.
func RealValue(v float64) PropValue { return PropValue{Kind: PropReal, Real: v} }

// StringValue makes a string property value.
func StringValue(v string) PropValue { return PropValue{Kind: PropString, Str: v} }

// BoolValue makes a boolean property value.
func BoolValue(v bool) PropValue { return PropValue{Kind: PropBool, Bool: v} }
