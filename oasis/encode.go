package oasis

import (
	"bytes"
	"io"
	"sort"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/oasis/internal/binary"
)

// Encode encodes the file to OASIS binary.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the file onto a byte sink. Every element field is
// emitted explicitly rather than through the modal context; readers that
// track modal state accept that without caring. Name tables are written
// up front with explicit reference numbers, cells carry their names
// inline, and the END record gets a zero-filled offset stub with no
// validation signature.
func (f *File) Write(dst io.Writer) error {
	w := binary.NewWriter(dst)
	e := &encoder{w: w}

	w.Raw([]byte(Magic))

	w.Byte(RecStart)
	w.String(f.Version)
	w.Real(f.Unit)
	if f.OffsetFlag {
		w.Byte(1)
	} else {
		w.Byte(0)
	}

	e.nameTables(&f.Names)

	for _, p := range f.Properties {
		e.property(p, false)
	}

	for _, c := range f.Cells {
		if err := e.cell(c); err != nil {
			return err
		}
	}

	w.Byte(RecEnd)
	for i := 0; i < 12; i++ {
		w.Uint(0)
	}
	w.Uint(0) // validation scheme: none

	return w.Flush()
}

type encoder struct {
	w *binary.Writer
}

// nameTables emits every interned name with its explicit reference
// number, in id order so output is deterministic.
func (e *encoder) nameTables(n *NameTable) {
	e.stringTable(RecCellNameRef, n.CellNames)
	e.stringTable(RecTextStrRef, n.TextStrings)
	e.stringTable(RecPropNameRef, n.PropNames)
	e.stringTable(RecPropStrRef, n.PropStrings)
	e.stringTable(RecLayerNameRef, n.LayerNames)

	ids := make([]uint64, 0, len(n.XNames))
	for id := range n.XNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		x := n.XNames[id]
		e.w.Byte(RecXNameRef)
		e.w.Uint(x.Attribute)
		e.w.String(x.Name)
		e.w.Uint(id)
	}
}

func (e *encoder) stringTable(recID byte, table map[uint64]string) {
	ids := make([]uint64, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e.w.Byte(recID)
		e.w.String(table[id])
		e.w.Uint(id)
	}
}

func (e *encoder) cell(c *Cell) error {
	e.w.Byte(RecCellName)
	e.w.String(c.Name)
	for _, el := range c.Elements {
		if err := e.element(el); err != nil {
			return err
		}
		for _, p := range el.Props() {
			e.property(p, true)
		}
	}
	return nil
}

func (e *encoder) element(el Element) error {
	switch t := el.(type) {
	case *Rectangle:
		e.rectangle(t)
	case *Polygon:
		e.polygon(t)
	case *Path:
		e.path(t)
	case *Trapezoid:
		e.trapezoid(t)
	case *CTrapezoid:
		if t.TrapType >= CTrapezoidTypeCount {
			return errors.New(errors.PhaseEncode, errors.KindUnsupportedFeature).
				Format(errors.FormatOASIS).
				Record("CTRAPEZOID").
				Detail("type %d outside the 0-25 table", t.TrapType).
				Build()
		}
		e.ctrapezoid(t)
	case *Circle:
		e.circle(t)
	case *Text:
		e.text(t)
	case *Placement:
		e.placement(t)
	case *XElement:
		e.xelement(t)
	}
	return nil
}

// repBit folds the repetition presence into an info byte; a repetition
// describing fewer than two instances is meaningless and is dropped.
func repBit(rep *Repetition) byte {
	if rep != nil && rep.Count() >= 2 {
		return bitR
	}
	return 0
}

func placeRepBit(rep *Repetition) byte {
	if rep != nil && rep.Count() >= 2 {
		return placeR
	}
	return 0
}

func (e *encoder) rectangle(t *Rectangle) {
	e.w.Byte(RecRectangle)
	info := rectWidth | rectHeight | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.w.Uint(t.Width)
	e.w.Uint(t.Height)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) polygon(t *Polygon) {
	e.w.Byte(RecPolygon)
	info := polyPoints | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.pointList(t.Points)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) path(t *Path) {
	e.w.Byte(RecPath)
	info := pathExtensions | pathHalfWidth | pathPoints | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.w.Uint(t.HalfWidth)
	start, sv := extCode(t.StartExt)
	end, ev := extCode(t.EndExt)
	e.w.Byte(start<<2 | end)
	if sv != nil {
		e.w.Int(*sv)
	}
	if ev != nil {
		e.w.Int(*ev)
	}
	e.pointList(t.Points)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func extCode(ext PathExtension) (byte, *int64) {
	switch ext.Scheme {
	case ExtHalfWidth:
		return extHalfWidth, nil
	case ExtExplicit:
		v := ext.Value
		return extExplicit, &v
	default:
		return extFlush, nil
	}
}

func (e *encoder) trapezoid(t *Trapezoid) {
	e.w.Byte(RecTrapezoidAB)
	info := trapWidth | trapHeight | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	if t.Vertical {
		info |= trapVertical
	}
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.w.Uint(t.Width)
	e.w.Uint(t.Height)
	e.w.Int(t.DeltaA)
	e.w.Int(t.DeltaB)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) ctrapezoid(t *CTrapezoid) {
	e.w.Byte(RecCTrapezoid)
	info := ctrapType | ctrapWidth | ctrapHeight | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.w.Uint(uint64(t.TrapType))
	e.w.Uint(t.Width)
	e.w.Uint(t.Height)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) circle(t *Circle) {
	e.w.Byte(RecCircle)
	info := circleRadius | bitX | bitY | bitD | bitL | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.Uint(uint64(t.Layer))
	e.w.Uint(uint64(t.Datatype))
	e.w.Uint(t.Radius)
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) text(t *Text) {
	e.w.Byte(RecText)
	info := textExplicit | textType | bitL | bitX | bitY | repBit(t.Repetition)
	e.w.Byte(info)
	e.w.String(t.String)
	e.w.Uint(uint64(t.TextType))
	e.w.Uint(uint64(t.Layer))
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&bitR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) placement(t *Placement) {
	if t.Magnification == nil && t.Angle == nil {
		e.w.Byte(RecPlacement)
		info := placeExplicit | placeX | placeY | placeRepBit(t.Repetition)
		if t.Mirror {
			info |= placeMirror
		}
		e.w.Byte(info)
		e.w.String(t.CellName)
		e.w.Int(t.X)
		e.w.Int(t.Y)
		if info&placeR != 0 {
			writeRepetition(e.w, t.Repetition)
		}
		return
	}

	e.w.Byte(RecPlacementMag)
	info := placeExplicit | placeX | placeY | placeRepBit(t.Repetition)
	if t.Magnification != nil {
		info |= placeMag
	}
	if t.Angle != nil {
		info |= placeAngle
	}
	if t.Mirror {
		info |= placeMirror
	}
	e.w.Byte(info)
	e.w.String(t.CellName)
	if t.Magnification != nil {
		e.w.Real(*t.Magnification)
	}
	if t.Angle != nil {
		e.w.Real(*t.Angle)
	}
	e.w.Int(t.X)
	e.w.Int(t.Y)
	if info&placeR != 0 {
		writeRepetition(e.w, t.Repetition)
	}
}

func (e *encoder) xelement(t *XElement) {
	e.w.Byte(RecXElement)
	e.w.Uint(t.Attribute)
	e.w.String(t.Data)
}

// pointList writes a vertex list as deltas, each relative to the
// previous vertex with the anchor as starting point.
func (e *encoder) pointList(pts []Delta) {
	e.w.Uint(uint64(len(pts)))
	var prev Delta
	for _, p := range pts {
		e.w.Int(p.X - prev.X)
		e.w.Int(p.Y - prev.Y)
		prev = p
	}
}

func (e *encoder) property(p Property, toElement bool) {
	e.w.Byte(RecProperty)
	info := propValues | propExplicit
	if toElement {
		info |= propElement
	}
	e.w.Byte(info)
	e.w.String(p.Name)
	e.w.Uint(uint64(len(p.Values)))
	for _, v := range p.Values {
		switch v.Kind {
		case PropInt:
			e.w.Uint(propValInt)
			e.w.Int(v.Int)
		case PropReal:
			e.w.Uint(propValReal)
			e.w.Real(v.Real)
		case PropString:
			e.w.Uint(propValString)
			e.w.String(v.Str)
		case PropBool:
			e.w.Uint(propValBool)
			if v.Bool {
				e.w.Byte(1)
			} else {
				e.w.Byte(0)
			}
		}
	}
}
