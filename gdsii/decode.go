package gdsii

import (
	"bytes"
	"io"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/gdsii/internal/binary"
)

// Parser state. Records are only legal in specific states; anything else
// is an unexpected-record error.
type parseState int

const (
	stateHeader parseState = iota
	stateLibrary
	stateStructure
	stateElement
	stateDone
)

func (s parseState) String() string {
	switch s {
	case stateHeader:
		return "header"
	case stateLibrary:
		return "library"
	case stateStructure:
		return "structure"
	case stateElement:
		return "element"
	default:
		return "done"
	}
}

// Parse parses a GDSII library from binary.
func Parse(data []byte) (*Library, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a GDSII library from a byte stream. The whole library is
// materialized; for very large files see StreamReader.
func Read(r io.Reader) (*Library, error) {
	d := &decoder{r: binary.NewReader(r), lib: &Library{}}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.lib, nil
}

type decoder struct {
	r     *binary.Reader
	lib   *Library
	state parseState
	str   *Structure
	el    *elementBuilder
}

// elementBuilder accumulates attribute records until ENDEL. The format
// permits attributes in any order, so every field is collected
// independently and assembled at the end.
type elementBuilder struct {
	kind     byte
	offset   int64
	layer    *int16
	datatype *int16
	texttype *int16
	nodetype *int16
	boxtype  *int16
	pathtype *int16
	presenta *int16
	width    *int32
	beginExt *int32
	endExt   *int32
	elflags  *int16
	plex     *int32
	xy       []Point
	sname    string
	text     string
	strans   *STrans
	cols     int16
	rows     int16
	propAttr *int16
	props    []Property
}

func (d *decoder) run() error {
	for d.state != stateDone {
		rec, err := d.r.Next()
		if err == io.EOF {
			return errors.UnexpectedEOF(errors.FormatGDSII, "ENDLIB", d.r.Position())
		}
		if err != nil {
			return err
		}
		debugf("record %s length=%d offset=%d", RecordName(rec.Type), len(rec.Data), rec.Offset)
		if err := d.record(rec); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) record(rec binary.Record) error {
	switch d.state {
	case stateHeader:
		return d.headerRecord(rec)
	case stateLibrary:
		return d.libraryRecord(rec)
	case stateStructure:
		return d.structureRecord(rec)
	case stateElement:
		return d.elementRecord(rec)
	}
	return errors.UnexpectedRecord(errors.FormatGDSII, RecordName(rec.Type), rec.Offset, d.state.String())
}

func (d *decoder) unexpected(rec binary.Record) error {
	return errors.UnexpectedRecord(errors.FormatGDSII, RecordName(rec.Type), rec.Offset, d.state.String())
}

func (d *decoder) headerRecord(rec binary.Record) error {
	if rec.Type != RecHeader {
		return d.unexpected(rec)
	}
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	d.lib.Version = v
	d.state = stateLibrary
	return nil
}

func (d *decoder) libraryRecord(rec binary.Record) (err error) {
	switch rec.Type {
	case RecBgnLib:
		d.lib.ModTime, d.lib.AccessTime, err = parseTimes(rec)
	case RecLibName:
		d.lib.Name, err = rec.String()
	case RecUnits:
		d.lib.UserUnit, d.lib.DatabaseUnit, err = parseUnits(rec)
	case RecRefLibs:
		var s string
		if s, err = rec.String(); err == nil {
			d.lib.RefLibs = append(d.lib.RefLibs, s)
		}
	case RecFonts:
		err = parseFonts(rec, d.lib)
	case RecGenerations:
		var g int16
		if g, err = rec.Int16(); err == nil {
			d.lib.Generations = &g
		}
	case RecAttrTable:
		d.lib.AttrTable, err = rec.String()
	case RecBgnStr:
		d.str = &Structure{}
		d.str.Created, d.str.Modified, err = parseTimes(rec)
		d.state = stateStructure
	case RecEndLib:
		d.state = stateDone
	case RecHeader, RecEndStr, RecEndEl:
		err = d.unexpected(rec)
	default:
		// Forward compatibility: unknown records between recognized
		// ones are skipped.
		debugf("skipping unknown record 0x%02X at library level", rec.Type)
	}
	return err
}

func (d *decoder) structureRecord(rec binary.Record) (err error) {
	switch rec.Type {
	case RecStrName:
		d.str.Name, err = rec.String()
	case RecStrClass:
		var c int16
		if c, err = rec.Int16(); err == nil {
			d.str.Class = &c
		}
	case RecBoundary, RecPath, RecSRef, RecARef, RecText, RecNode, RecBox:
		d.el = &elementBuilder{kind: rec.Type, offset: rec.Offset}
		d.state = stateElement
	case RecEndStr:
		d.lib.Structures = append(d.lib.Structures, d.str)
		d.str = nil
		d.state = stateLibrary
	case RecHeader, RecBgnLib, RecBgnStr, RecEndLib, RecEndEl:
		err = d.unexpected(rec)
	default:
		debugf("skipping unknown record 0x%02X at structure level", rec.Type)
	}
	return err
}

func (d *decoder) elementRecord(rec binary.Record) error {
	b := d.el
	switch rec.Type {
	case RecLayer:
		return setInt16(rec, &b.layer)
	case RecDatatype:
		return setInt16(rec, &b.datatype)
	case RecTextType:
		return setInt16(rec, &b.texttype)
	case RecNodeType:
		return setInt16(rec, &b.nodetype)
	case RecBoxType:
		return setInt16(rec, &b.boxtype)
	case RecPathType:
		return setInt16(rec, &b.pathtype)
	case RecPresentation:
		return setInt16(rec, &b.presenta)
	case RecElFlags:
		return setInt16(rec, &b.elflags)
	case RecWidth:
		return setInt32(rec, &b.width)
	case RecBgnExtn:
		return setInt32(rec, &b.beginExt)
	case RecEndExtn:
		return setInt32(rec, &b.endExt)
	case RecPlex:
		return setInt32(rec, &b.plex)
	case RecXY:
		vs, err := rec.Int32s()
		if err != nil {
			return err
		}
		if len(vs)%2 != 0 {
			return errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
				Format(errors.FormatGDSII).
				Record("XY").
				Offset(rec.Offset).
				Detail("odd coordinate count %d", len(vs)).
				Build()
		}
		b.xy = make([]Point, len(vs)/2)
		for i := range b.xy {
			b.xy[i] = Point{X: vs[2*i], Y: vs[2*i+1]}
		}
		return nil
	case RecSName:
		s, err := rec.String()
		b.sname = s
		return err
	case RecString:
		s, err := rec.String()
		b.text = s
		return err
	case RecColRow:
		vs, err := rec.Int16s()
		if err != nil {
			return err
		}
		if len(vs) != 2 {
			return errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
				Format(errors.FormatGDSII).
				Record("COLROW").
				Offset(rec.Offset).
				Detail("expected 2 values, got %d", len(vs)).
				Build()
		}
		b.cols, b.rows = vs[0], vs[1]
		return nil
	case RecSTrans:
		flags, err := rec.Bits()
		if err != nil {
			return err
		}
		st := b.ensureStrans()
		st.Reflect = flags&stransReflect != 0
		st.AbsMag = flags&stransAbsMag != 0
		st.AbsAngle = flags&stransAbsAngle != 0
		return nil
	case RecMag:
		v, err := parseReal8Record(rec)
		if err != nil {
			return err
		}
		b.ensureStrans().Mag = &v
		return nil
	case RecAngle:
		v, err := parseReal8Record(rec)
		if err != nil {
			return err
		}
		b.ensureStrans().Angle = &v
		return nil
	case RecPropAttr:
		return setInt16(rec, &b.propAttr)
	case RecPropValue:
		s, err := rec.String()
		if err != nil {
			return err
		}
		attr := int16(0)
		if b.propAttr != nil {
			attr = *b.propAttr
			b.propAttr = nil
		}
		b.props = append(b.props, Property{Attr: attr, Value: s})
		return nil
	case RecEndEl:
		el, err := b.build()
		if err != nil {
			return err
		}
		d.str.Elements = append(d.str.Elements, el)
		d.el = nil
		d.state = stateStructure
		return nil
	case RecHeader, RecBgnLib, RecBgnStr, RecEndStr, RecEndLib,
		RecBoundary, RecPath, RecSRef, RecARef, RecText, RecNode, RecBox:
		return d.unexpected(rec)
	default:
		// Unlike the library and structure levels, an unknown record
		// inside an element body is fatal.
		return errors.UnknownRecord(errors.FormatGDSII, rec.Type, rec.Offset)
	}
}

func (b *elementBuilder) ensureStrans() *STrans {
	if b.strans == nil {
		b.strans = &STrans{}
	}
	return b.strans
}

// build assembles the accumulated records into a concrete element.
// Missing optional attributes default to zero values; the reader is
// deliberately tolerant here and leaves invariant checking to Validate.
func (b *elementBuilder) build() (Element, error) {
	switch b.kind {
	case RecBoundary:
		return &Boundary{
			Layer:      deref(b.layer),
			Datatype:   deref(b.datatype),
			XY:         b.xy,
			ElFlags:    b.elflags,
			Plex:       b.plex,
			Properties: b.props,
		}, nil
	case RecPath:
		return &Path{
			Layer:      deref(b.layer),
			Datatype:   deref(b.datatype),
			PathType:   deref(b.pathtype),
			Width:      b.width,
			BeginExt:   b.beginExt,
			EndExt:     b.endExt,
			XY:         b.xy,
			ElFlags:    b.elflags,
			Plex:       b.plex,
			Properties: b.props,
		}, nil
	case RecText:
		t := &Text{
			Layer:        deref(b.layer),
			TextType:     deref(b.texttype),
			Presentation: b.presenta,
			Width:        b.width,
			Strans:       b.strans,
			String:       b.text,
			ElFlags:      b.elflags,
			Plex:         b.plex,
			Properties:   b.props,
		}
		if len(b.xy) > 0 {
			t.XY = b.xy[0]
		}
		return t, nil
	case RecSRef:
		s := &StructRef{
			StructureName: b.sname,
			Strans:        b.strans,
			ElFlags:       b.elflags,
			Plex:          b.plex,
			Properties:    b.props,
		}
		if len(b.xy) > 0 {
			s.XY = b.xy[0]
		}
		return s, nil
	case RecARef:
		a := &ArrayRef{
			StructureName: b.sname,
			Columns:       b.cols,
			Rows:          b.rows,
			Strans:        b.strans,
			ElFlags:       b.elflags,
			Plex:          b.plex,
			Properties:    b.props,
		}
		for i := 0; i < len(b.xy) && i < 3; i++ {
			a.XY[i] = b.xy[i]
		}
		return a, nil
	case RecNode:
		return &Node{
			Layer:      deref(b.layer),
			NodeType:   deref(b.nodetype),
			XY:         b.xy,
			ElFlags:    b.elflags,
			Plex:       b.plex,
			Properties: b.props,
		}, nil
	case RecBox:
		return &Box{
			Layer:      deref(b.layer),
			BoxType:    deref(b.boxtype),
			XY:         b.xy,
			ElFlags:    b.elflags,
			Plex:       b.plex,
			Properties: b.props,
		}, nil
	}
	return nil, errors.UnknownRecord(errors.FormatGDSII, b.kind, b.offset)
}

func deref(p *int16) int16 {
	if p == nil {
		return 0
	}
	return *p
}

func setInt16(rec binary.Record, dst **int16) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

func setInt32(rec binary.Record, dst **int32) error {
	v, err := rec.Int32()
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

func parseTimes(rec binary.Record) (Time, Time, error) {
	vs, err := rec.Int16s()
	if err != nil {
		return Time{}, Time{}, err
	}
	if len(vs) < 12 {
		return Time{}, Time{}, errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
			Format(errors.FormatGDSII).
			Record(RecordName(rec.Type)).
			Offset(rec.Offset).
			Detail("timestamp pair needs 12 values, got %d", len(vs)).
			Build()
	}
	return timeFrom(vs[0:6]), timeFrom(vs[6:12]), nil
}

func timeFrom(vs []int16) Time {
	return Time{Year: vs[0], Month: vs[1], Day: vs[2], Hour: vs[3], Minute: vs[4], Second: vs[5]}
}

func parseUnits(rec binary.Record) (float64, float64, error) {
	rs, err := rec.Real8s()
	if err != nil {
		return 0, 0, err
	}
	if len(rs) < 2 {
		return 0, 0, errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
			Format(errors.FormatGDSII).
			Record("UNITS").
			Offset(rec.Offset).
			Detail("expected 2 reals, got %d", len(rs)).
			Build()
	}
	return DecodeReal8(rs[0]), DecodeReal8(rs[1]), nil
}

func parseReal8Record(rec binary.Record) (float64, error) {
	rs, err := rec.Real8s()
	if err != nil {
		return 0, err
	}
	if len(rs) < 1 {
		return 0, errors.New(errors.PhaseDecode, errors.KindBadRecordLength).
			Format(errors.FormatGDSII).
			Record(RecordName(rec.Type)).
			Offset(rec.Offset).
			Detail("empty real payload").
			Build()
	}
	return DecodeReal8(rs[0]), nil
}

// parseFonts splits a FONTS payload into its fixed-width name slots,
// dropping empty entries.
func parseFonts(rec binary.Record, lib *Library) error {
	data := rec.Data
	for i := 0; i+fontEntrySize <= len(data); i += fontEntrySize {
		name := binary.TrimString(data[i : i+fontEntrySize])
		if name != "" {
			lib.Fonts = append(lib.Fonts, name)
		}
	}
	return nil
}
