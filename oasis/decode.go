package oasis

import (
	"bufio"
	"bytes"
	"io"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/oasis/internal/binary"
)

// Parse parses an OASIS file from binary.
func Parse(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// Read parses an OASIS file from a byte stream. Name references are
// resolved in a second pass once the whole stream has been scanned, so
// CELLNAME and TEXTSTRING records may follow their first use.
func Read(r io.Reader) (*File, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	d := &decoder{
		r:    binary.NewReader(br),
		file: NewFile(),
	}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.file, nil
}

// nameClass tracks one name table's numbering style so implicit and
// explicit records cannot mix.
type nameClass struct {
	next     uint64
	implicit bool
	explicit bool
}

type decoder struct {
	r     *binary.Reader
	file  *File
	modal modalState

	cell *Cell
	last Element

	classes map[byte]*nameClass // keyed by the implicit record id
	fixups  []func() error
}

func (d *decoder) run() error {
	magic, err := d.r.Bytes(len(Magic))
	if err != nil {
		if errors.IsKind(err, errors.KindUnexpectedEOF) {
			return errors.BadMagic(errors.FormatOASIS, nil)
		}
		return err
	}
	if string(magic) != Magic {
		return errors.BadMagic(errors.FormatOASIS, magic)
	}

	d.classes = make(map[byte]*nameClass)

	for {
		id, err := d.r.Byte()
		if err != nil {
			return err
		}
		debugf("record %s id=%d offset=%d", RecordName(id), id, d.r.Position()-1)

		switch id {
		case RecPad:
			// padding

		case RecStart:
			if err := d.start(); err != nil {
				return err
			}

		case RecEnd:
			if err := d.end(); err != nil {
				return err
			}
			return d.resolve()

		case RecCellNameImpl, RecCellNameRef,
			RecTextStrImpl, RecTextStrRef,
			RecPropNameImpl, RecPropNameRef,
			RecPropStrImpl, RecPropStrRef,
			RecLayerNameImpl, RecLayerNameRef:
			if err := d.nameRecord(id); err != nil {
				return err
			}

		case RecXNameImpl, RecXNameRef:
			if err := d.xname(id); err != nil {
				return err
			}

		case RecCellRef, RecCellName:
			if err := d.cellBegin(id); err != nil {
				return err
			}

		case RecXYAbsolute:
			d.modal.xyRelative = false

		case RecXYRelative:
			d.modal.xyRelative = true

		case RecPlacement, RecPlacementMag, RecText, RecRectangle,
			RecPolygon, RecPath, RecTrapezoidAB, RecTrapezoidA,
			RecCTrapezoid, RecCircle, RecXElement:
			if d.cell == nil {
				return errors.UnexpectedRecord(errors.FormatOASIS, RecordName(id), d.r.Position()-1, "file level")
			}
			el, err := d.element(id)
			if err != nil {
				return err
			}
			d.cell.Elements = append(d.cell.Elements, el)
			d.last = el

		case RecProperty, RecPropertyLast:
			if err := d.property(id); err != nil {
				return err
			}

		case RecXGeometry:
			return errors.Unsupported(errors.FormatOASIS, "XGEOMETRY record", d.r.Position()-1)

		case RecCBlock:
			return errors.Unsupported(errors.FormatOASIS, "CBLOCK compressed container", d.r.Position()-1)

		default:
			return errors.UnknownRecord(errors.FormatOASIS, id, d.r.Position()-1)
		}
	}
}

func (d *decoder) start() error {
	version, err := d.r.String()
	if err != nil {
		return err
	}
	unit, err := d.r.Real()
	if err != nil {
		return err
	}
	flag, err := d.r.Byte()
	if err != nil {
		return err
	}
	d.file.Version = version
	d.file.Unit = unit
	d.file.OffsetFlag = flag != 0
	return nil
}

// end consumes the END payload: six (offset, flag) pairs, the validation
// scheme, and the signature when one is declared. The signature itself
// is not verified.
func (d *decoder) end() error {
	for i := 0; i < 12; i++ {
		if _, err := d.r.Uint(); err != nil {
			return err
		}
	}
	scheme, err := d.r.Uint()
	if err != nil {
		return err
	}
	if scheme != 0 {
		if _, err := d.r.Bytes(4); err != nil {
			return err
		}
	}
	return nil
}

// nameRecord handles the five CELLNAME-style table classes. Odd ids
// assign reference numbers implicitly in occurrence order, even ids
// carry them explicitly; one class must stick to one style.
func (d *decoder) nameRecord(id byte) error {
	implicitID := id
	explicit := id%2 == 0
	if explicit {
		implicitID = id - 1
	}

	name, err := d.r.String()
	if err != nil {
		return err
	}
	cls := d.class(implicitID)
	var ref uint64
	if explicit {
		if ref, err = d.r.Uint(); err != nil {
			return err
		}
		cls.explicit = true
	} else {
		ref = cls.next
		cls.next++
		cls.implicit = true
	}
	if cls.implicit && cls.explicit {
		return errors.New(errors.PhaseDecode, errors.KindUnexpectedRecord).
			Format(errors.FormatOASIS).
			Record(RecordName(id)).
			Offset(d.r.Position()).
			Detail("implicit and explicit numbering mixed in one name class").
			Build()
	}

	d.table(implicitID)[ref] = name
	return nil
}

func (d *decoder) class(implicitID byte) *nameClass {
	cls, ok := d.classes[implicitID]
	if !ok {
		cls = &nameClass{}
		d.classes[implicitID] = cls
	}
	return cls
}

func (d *decoder) table(implicitID byte) map[uint64]string {
	switch implicitID {
	case RecCellNameImpl:
		return d.file.Names.CellNames
	case RecTextStrImpl:
		return d.file.Names.TextStrings
	case RecPropNameImpl:
		return d.file.Names.PropNames
	case RecPropStrImpl:
		return d.file.Names.PropStrings
	default:
		return d.file.Names.LayerNames
	}
}

func (d *decoder) xname(id byte) error {
	attr, err := d.r.Uint()
	if err != nil {
		return err
	}
	name, err := d.r.String()
	if err != nil {
		return err
	}
	cls := d.class(RecXNameImpl)
	var ref uint64
	if id == RecXNameRef {
		if ref, err = d.r.Uint(); err != nil {
			return err
		}
		cls.explicit = true
	} else {
		ref = cls.next
		cls.next++
		cls.implicit = true
	}
	if cls.implicit && cls.explicit {
		return errors.New(errors.PhaseDecode, errors.KindUnexpectedRecord).
			Format(errors.FormatOASIS).
			Record("XNAME").
			Offset(d.r.Position()).
			Detail("implicit and explicit numbering mixed in one name class").
			Build()
	}
	d.file.Names.XNames[ref] = XName{Attribute: attr, Name: name}
	return nil
}

func (d *decoder) cellBegin(id byte) error {
	cell := &Cell{}
	switch id {
	case RecCellName:
		name, err := d.r.String()
		if err != nil {
			return err
		}
		cell.Name = name
	case RecCellRef:
		ref, err := d.r.Uint()
		if err != nil {
			return err
		}
		d.fixups = append(d.fixups, func() error {
			name, ok := d.file.Names.CellNames[ref]
			if !ok {
				return errors.UnresolvedName("cellname", ref)
			}
			cell.Name = name
			return nil
		})
	}
	d.file.Cells = append(d.file.Cells, cell)
	d.cell = cell
	d.last = nil
	d.modal.reset()
	return nil
}

// resolve runs the deferred name lookups recorded during the scan.
func (d *decoder) resolve() error {
	for _, fix := range d.fixups {
		if err := fix(); err != nil {
			return err
		}
	}
	return nil
}

// Element field helpers. Each reads a field when its presence bit is set
// and falls back to the modal slot otherwise.

func (d *decoder) layer(info byte, record string) (uint64, error) {
	if info&bitL != 0 {
		v, err := d.r.Uint()
		if err != nil {
			return 0, err
		}
		d.modal.layer = v
		d.modal.layerOK = true
		return v, nil
	}
	if !d.modal.layerOK {
		return 0, undefinedModal(record, "layer", d.r.Position())
	}
	return d.modal.layer, nil
}

func (d *decoder) datatype(info byte, record string) (uint64, error) {
	if info&bitD != 0 {
		v, err := d.r.Uint()
		if err != nil {
			return 0, err
		}
		d.modal.datatype = v
		d.modal.datatypeOK = true
		return v, nil
	}
	if !d.modal.datatypeOK {
		return 0, undefinedModal(record, "datatype", d.r.Position())
	}
	return d.modal.datatype, nil
}

// position reads an (x, y) pair against the given modal slots, honoring
// relative mode.
func (d *decoder) position(xp, yp bool, mx, my *int64) (int64, int64, error) {
	x, y := *mx, *my
	if xp {
		v, err := d.r.Int()
		if err != nil {
			return 0, 0, err
		}
		if d.modal.xyRelative {
			v += *mx
		}
		x = v
		*mx = v
	}
	if yp {
		v, err := d.r.Int()
		if err != nil {
			return 0, 0, err
		}
		if d.modal.xyRelative {
			v += *my
		}
		y = v
		*my = v
	}
	return x, y, nil
}

func (d *decoder) repetition(present bool) (*Repetition, error) {
	if !present {
		return nil, nil
	}
	rep, err := readRepetition(d.r, &d.modal)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (d *decoder) pointList(present bool, modalPts *[]Delta, modalOK *bool, record string) ([]Delta, error) {
	if !present {
		if !*modalOK {
			return nil, undefinedModal(record, "point list", d.r.Position())
		}
		return *modalPts, nil
	}
	n, err := d.r.Uint()
	if err != nil {
		return nil, err
	}
	var pts []Delta
	if n > 0 {
		pts = make([]Delta, n)
		var at Delta
		for i := range pts {
			dd, err := readDelta(d.r)
			if err != nil {
				return nil, err
			}
			at.X += dd.X
			at.Y += dd.Y
			pts[i] = at
		}
	}
	*modalPts = pts
	*modalOK = true
	return pts, nil
}

func (d *decoder) element(id byte) (Element, error) {
	switch id {
	case RecRectangle:
		return d.rectangle()
	case RecPolygon:
		return d.polygon()
	case RecPath:
		return d.path()
	case RecTrapezoidAB, RecTrapezoidA:
		return d.trapezoid(id)
	case RecCTrapezoid:
		return d.ctrapezoid()
	case RecCircle:
		return d.circle()
	case RecText:
		return d.text()
	case RecPlacement, RecPlacementMag:
		return d.placement(id)
	case RecXElement:
		return d.xelement()
	}
	return nil, errors.UnknownRecord(errors.FormatOASIS, id, d.r.Position())
}

func (d *decoder) rectangle() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Rectangle{}
	if err := d.layerDatatype(info, "RECTANGLE", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	if info&rectWidth != 0 {
		if el.Width, err = d.r.Uint(); err != nil {
			return nil, err
		}
		d.modal.width = el.Width
		d.modal.widthOK = true
	} else if d.modal.widthOK {
		el.Width = d.modal.width
	} else {
		return nil, undefinedModal("RECTANGLE", "width", d.r.Position())
	}
	switch {
	case info&rectSquare != 0:
		el.Height = el.Width
		d.modal.height = el.Height
		d.modal.heightOK = true
	case info&rectHeight != 0:
		if el.Height, err = d.r.Uint(); err != nil {
			return nil, err
		}
		d.modal.height = el.Height
		d.modal.heightOK = true
	case d.modal.heightOK:
		el.Height = d.modal.height
	default:
		return nil, undefinedModal("RECTANGLE", "height", d.r.Position())
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) polygon() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Polygon{}
	if err := d.layerDatatype(info, "POLYGON", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	if el.Points, err = d.pointList(info&polyPoints != 0, &d.modal.polygonPoints, &d.modal.polygonPointsOK, "POLYGON"); err != nil {
		return nil, err
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) path() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Path{}
	if err := d.layerDatatype(info, "PATH", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	if info&pathHalfWidth != 0 {
		if el.HalfWidth, err = d.r.Uint(); err != nil {
			return nil, err
		}
		d.modal.halfWidth = el.HalfWidth
		d.modal.halfWidthOK = true
	} else if d.modal.halfWidthOK {
		el.HalfWidth = d.modal.halfWidth
	} else {
		return nil, undefinedModal("PATH", "half-width", d.r.Position())
	}
	if info&pathExtensions != 0 {
		scheme, err := d.r.Byte()
		if err != nil {
			return nil, err
		}
		if el.StartExt, err = d.extension(scheme>>2&0x03, d.modal.startExt); err != nil {
			return nil, err
		}
		if el.EndExt, err = d.extension(scheme&0x03, d.modal.endExt); err != nil {
			return nil, err
		}
		d.modal.startExt = el.StartExt
		d.modal.endExt = el.EndExt
		d.modal.extOK = true
	} else if d.modal.extOK {
		el.StartExt = d.modal.startExt
		el.EndExt = d.modal.endExt
	} else {
		return nil, undefinedModal("PATH", "extensions", d.r.Position())
	}
	if el.Points, err = d.pointList(info&pathPoints != 0, &d.modal.pathPoints, &d.modal.pathPointsOK, "PATH"); err != nil {
		return nil, err
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) extension(code byte, modal PathExtension) (PathExtension, error) {
	switch code {
	case extReuse:
		if !d.modal.extOK {
			return PathExtension{}, undefinedModal("PATH", "extension", d.r.Position())
		}
		return modal, nil
	case extFlush:
		return PathExtension{Scheme: ExtFlush}, nil
	case extHalfWidth:
		return PathExtension{Scheme: ExtHalfWidth}, nil
	default:
		v, err := d.r.Int()
		if err != nil {
			return PathExtension{}, err
		}
		return PathExtension{Scheme: ExtExplicit, Value: v}, nil
	}
}

func (d *decoder) trapezoid(id byte) (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Trapezoid{Vertical: info&trapVertical != 0}
	if err := d.layerDatatype(info, "TRAPEZOID", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	if el.Width, err = d.uintOrModal(info&trapWidth != 0, &d.modal.width, &d.modal.widthOK, "TRAPEZOID", "width"); err != nil {
		return nil, err
	}
	if el.Height, err = d.uintOrModal(info&trapHeight != 0, &d.modal.height, &d.modal.heightOK, "TRAPEZOID", "height"); err != nil {
		return nil, err
	}
	if el.DeltaA, err = d.r.Int(); err != nil {
		return nil, err
	}
	if id == RecTrapezoidAB {
		if el.DeltaB, err = d.r.Int(); err != nil {
			return nil, err
		}
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) ctrapezoid() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &CTrapezoid{}
	if err := d.layerDatatype(info, "CTRAPEZOID", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	var tt uint64
	if tt, err = d.uintOrModal(info&ctrapType != 0, &d.modal.ctrapType, &d.modal.ctrapTypeOK, "CTRAPEZOID", "type"); err != nil {
		return nil, err
	}
	if tt >= CTrapezoidTypeCount {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupportedFeature).
			Format(errors.FormatOASIS).
			Record("CTRAPEZOID").
			Offset(d.r.Position()).
			Detail("type %d outside the 0-25 table", tt).
			Build()
	}
	el.TrapType = uint8(tt)
	if el.Width, err = d.uintOrModal(info&ctrapWidth != 0, &d.modal.width, &d.modal.widthOK, "CTRAPEZOID", "width"); err != nil {
		return nil, err
	}
	if el.Height, err = d.uintOrModal(info&ctrapHeight != 0, &d.modal.height, &d.modal.heightOK, "CTRAPEZOID", "height"); err != nil {
		return nil, err
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) circle() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Circle{}
	if err := d.layerDatatype(info, "CIRCLE", &el.Layer, &el.Datatype); err != nil {
		return nil, err
	}
	if el.Radius, err = d.uintOrModal(info&circleRadius != 0, &d.modal.radius, &d.modal.radiusOK, "CIRCLE", "radius"); err != nil {
		return nil, err
	}
	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.geometryX, &d.modal.geometryY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) text() (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Text{}
	if info&textExplicit != 0 {
		if info&textByRef != 0 {
			ref, err := d.r.Uint()
			if err != nil {
				return nil, err
			}
			d.modal.textString = ""
			d.modal.textStringRef = &ref
			d.modal.textStringOK = true
		} else {
			s, err := d.r.String()
			if err != nil {
				return nil, err
			}
			d.modal.textString = s
			d.modal.textStringRef = nil
			d.modal.textStringOK = true
		}
	} else if !d.modal.textStringOK {
		return nil, undefinedModal("TEXT", "text string", d.r.Position())
	}
	if ref := d.modal.textStringRef; ref != nil {
		id := *ref
		d.fixups = append(d.fixups, func() error {
			s, ok := d.file.Names.TextStrings[id]
			if !ok {
				return errors.UnresolvedName("textstring", id)
			}
			el.String = s
			return nil
		})
	} else {
		el.String = d.modal.textString
	}

	if info&textType != 0 {
		if el.TextType, err = d.uint32Field(); err != nil {
			return nil, err
		}
		d.modal.textType = uint64(el.TextType)
		d.modal.textTypeOK = true
	} else if d.modal.textTypeOK {
		el.TextType = uint32(d.modal.textType)
	} else {
		return nil, undefinedModal("TEXT", "text type", d.r.Position())
	}

	if info&bitL != 0 {
		v, err := d.r.Uint()
		if err != nil {
			return nil, err
		}
		d.modal.textLayer = v
		d.modal.textLayerOK = true
		el.Layer = uint32(v)
	} else if d.modal.textLayerOK {
		el.Layer = uint32(d.modal.textLayer)
	} else {
		return nil, undefinedModal("TEXT", "text layer", d.r.Position())
	}

	if el.X, el.Y, err = d.position(info&bitX != 0, info&bitY != 0, &d.modal.textX, &d.modal.textY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&bitR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) placement(id byte) (Element, error) {
	info, err := d.r.Byte()
	if err != nil {
		return nil, err
	}
	el := &Placement{Mirror: info&placeMirror != 0}

	if info&placeExplicit != 0 {
		if info&placeByRef != 0 {
			ref, err := d.r.Uint()
			if err != nil {
				return nil, err
			}
			d.modal.placementCell = ""
			d.modal.placementCellRef = &ref
			d.modal.placementCellOK = true
		} else {
			s, err := d.r.String()
			if err != nil {
				return nil, err
			}
			d.modal.placementCell = s
			d.modal.placementCellRef = nil
			d.modal.placementCellOK = true
		}
	} else if !d.modal.placementCellOK {
		return nil, undefinedModal("PLACEMENT", "cell reference", d.r.Position())
	}
	if ref := d.modal.placementCellRef; ref != nil {
		rid := *ref
		d.fixups = append(d.fixups, func() error {
			s, ok := d.file.Names.CellNames[rid]
			if !ok {
				return errors.UnresolvedName("cellname", rid)
			}
			el.CellName = s
			return nil
		})
	} else {
		el.CellName = d.modal.placementCell
	}

	if id == RecPlacementMag {
		if info&placeMag != 0 {
			v, err := d.r.Real()
			if err != nil {
				return nil, err
			}
			el.Magnification = &v
		}
		if info&placeAngle != 0 {
			v, err := d.r.Real()
			if err != nil {
				return nil, err
			}
			el.Angle = &v
		}
	} else {
		if quarters := (info & placeAngleMask) >> 1; quarters != 0 {
			v := float64(quarters) * 90.0
			el.Angle = &v
		}
	}

	if el.X, el.Y, err = d.position(info&placeX != 0, info&placeY != 0, &d.modal.placementX, &d.modal.placementY); err != nil {
		return nil, err
	}
	if el.Repetition, err = d.repetition(info&placeR != 0); err != nil {
		return nil, err
	}
	return el, nil
}

func (d *decoder) xelement() (Element, error) {
	attr, err := d.r.Uint()
	if err != nil {
		return nil, err
	}
	data, err := d.r.String()
	if err != nil {
		return nil, err
	}
	return &XElement{Attribute: attr, Data: data}, nil
}

// property parses a PROPERTY record and attaches it to the most recent
// element, or to the file when the element bit is clear or nothing
// precedes it.
func (d *decoder) property(id byte) error {
	if id == RecPropertyLast {
		if !d.modal.lastPropertyOK {
			return undefinedModal("PROPERTY", "last property", d.r.Position())
		}
		d.attachProperty(*d.modal.lastProperty, d.modal.lastPropertyRef, true)
		return nil
	}

	info, err := d.r.Byte()
	if err != nil {
		return err
	}
	prop := Property{}
	var nameRef *uint64
	if info&propExplicit != 0 {
		if info&propByRef != 0 {
			ref, err := d.r.Uint()
			if err != nil {
				return err
			}
			nameRef = &ref
		} else {
			if prop.Name, err = d.r.String(); err != nil {
				return err
			}
		}
	} else {
		if !d.modal.lastPropertyOK {
			return undefinedModal("PROPERTY", "property name", d.r.Position())
		}
		prop.Name = d.modal.lastProperty.Name
		nameRef = d.modal.lastPropertyRef
	}

	if info&propValues != 0 {
		n, err := d.r.Uint()
		if err != nil {
			return err
		}
		if n > 0 {
			prop.Values = make([]PropValue, 0, n)
		}
		for i := uint64(0); i < n; i++ {
			v, err := d.propValue()
			if err != nil {
				return err
			}
			prop.Values = append(prop.Values, v)
		}
	} else if d.modal.lastPropertyOK {
		prop.Values = d.modal.lastProperty.Values
	}

	saved := prop
	d.modal.lastProperty = &saved
	d.modal.lastPropertyRef = nameRef
	d.modal.lastPropertyOK = true

	d.attachProperty(prop, nameRef, info&propElement != 0)
	return nil
}

func (d *decoder) propValue() (PropValue, error) {
	tag, err := d.r.Uint()
	if err != nil {
		return PropValue{}, err
	}
	switch tag {
	case propValInt:
		v, err := d.r.Int()
		if err != nil {
			return PropValue{}, err
		}
		return IntValue(v), nil
	case propValReal:
		v, err := d.r.Real()
		if err != nil {
			return PropValue{}, err
		}
		return RealValue(v), nil
	case propValString:
		v, err := d.r.String()
		if err != nil {
			return PropValue{}, err
		}
		return StringValue(v), nil
	case propValBool:
		b, err := d.r.Byte()
		if err != nil {
			return PropValue{}, err
		}
		return BoolValue(b != 0), nil
	}
	return PropValue{}, errors.New(errors.PhaseDecode, errors.KindBadDataType).
		Format(errors.FormatOASIS).
		Record("PROPERTY").
		Offset(d.r.Position()).
		Detail("property value tag %d", tag).
		Build()
}

// attachProperty appends the property to its target and, when the name
// came by reference, schedules its resolution. Resolution reaches back
// through Props() so late-appended slice growth cannot strand the fixup.
func (d *decoder) attachProperty(prop Property, nameRef *uint64, toElement bool) {
	if toElement && d.last != nil {
		el := d.last
		appendProperty(el, prop)
		if nameRef != nil {
			ref := *nameRef
			idx := len(el.Props()) - 1
			d.fixups = append(d.fixups, func() error {
				name, ok := d.file.Names.PropNames[ref]
				if !ok {
					return errors.UnresolvedName("propname", ref)
				}
				el.Props()[idx].Name = name
				return nil
			})
		}
		return
	}

	d.file.Properties = append(d.file.Properties, prop)
	if nameRef != nil {
		ref := *nameRef
		idx := len(d.file.Properties) - 1
		d.fixups = append(d.fixups, func() error {
			name, ok := d.file.Names.PropNames[ref]
			if !ok {
				return errors.UnresolvedName("propname", ref)
			}
			d.file.Properties[idx].Name = name
			return nil
		})
	}
}

func appendProperty(el Element, prop Property) {
	switch e := el.(type) {
	case *Rectangle:
		e.Properties = append(e.Properties, prop)
	case *Polygon:
		e.Properties = append(e.Properties, prop)
	case *Path:
		e.Properties = append(e.Properties, prop)
	case *Trapezoid:
		e.Properties = append(e.Properties, prop)
	case *CTrapezoid:
		e.Properties = append(e.Properties, prop)
	case *Circle:
		e.Properties = append(e.Properties, prop)
	case *Text:
		e.Properties = append(e.Properties, prop)
	case *Placement:
		e.Properties = append(e.Properties, prop)
	case *XElement:
		e.Properties = append(e.Properties, prop)
	}
}

// layerDatatype reads the shared layer/datatype pair into uint32 model
// fields.
func (d *decoder) layerDatatype(info byte, record string, layer, datatype *uint32) error {
	l, err := d.layer(info, record)
	if err != nil {
		return err
	}
	dt, err := d.datatype(info, record)
	if err != nil {
		return err
	}
	*layer = uint32(l)
	*datatype = uint32(dt)
	return nil
}

func (d *decoder) uintOrModal(present bool, modal *uint64, ok *bool, record, slot string) (uint64, error) {
	if present {
		v, err := d.r.Uint()
		if err != nil {
			return 0, err
		}
		*modal = v
		*ok = true
		return v, nil
	}
	if !*ok {
		return 0, undefinedModal(record, slot, d.r.Position())
	}
	return *modal, nil
}

func (d *decoder) uint32Field() (uint32, error) {
	v, err := d.r.Uint()
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
