package gdsii

import (
	"bytes"
	"io"

	"github.com/wippyai/laykit/gdsii/internal/binary"
)

// Encode encodes the library to GDSII binary.
func (l *Library) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := l.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the library onto a byte sink. Records are emitted in
// canonical order; elements keep their file order.
func (l *Library) Write(dst io.Writer) error {
	w := binary.NewWriter(dst)

	if err := w.Int16(RecHeader, l.Version); err != nil {
		return err
	}
	if err := w.Int16s(RecBgnLib, timePair(l.ModTime, l.AccessTime)); err != nil {
		return err
	}
	if err := w.String(RecLibName, l.Name); err != nil {
		return err
	}
	units, err := encodeUnits(l.UserUnit, l.DatabaseUnit)
	if err != nil {
		return err
	}
	if err := w.Real8s(RecUnits, units); err != nil {
		return err
	}
	for _, ref := range l.RefLibs {
		if err := w.String(RecRefLibs, ref); err != nil {
			return err
		}
	}
	if len(l.Fonts) > 0 {
		if err := w.Record(RecFonts, DataASCII, fontsPayload(l.Fonts)); err != nil {
			return err
		}
	}
	if l.Generations != nil {
		if err := w.Int16(RecGenerations, *l.Generations); err != nil {
			return err
		}
	}
	if l.AttrTable != "" {
		if err := w.String(RecAttrTable, l.AttrTable); err != nil {
			return err
		}
	}

	for _, s := range l.Structures {
		if err := s.write(w); err != nil {
			return err
		}
	}

	return w.Empty(RecEndLib)
}

func (s *Structure) write(w *binary.Writer) error {
	if err := w.Int16s(RecBgnStr, timePair(s.Created, s.Modified)); err != nil {
		return err
	}
	if err := w.String(RecStrName, s.Name); err != nil {
		return err
	}
	if s.Class != nil {
		if err := w.Int16(RecStrClass, *s.Class); err != nil {
			return err
		}
	}
	for _, el := range s.Elements {
		if err := writeElement(w, el); err != nil {
			return err
		}
	}
	return w.Empty(RecEndStr)
}

func writeElement(w *binary.Writer, el Element) error {
	switch e := el.(type) {
	case *Boundary:
		return e.write(w)
	case *Path:
		return e.write(w)
	case *Text:
		return e.write(w)
	case *StructRef:
		return e.write(w)
	case *ArrayRef:
		return e.write(w)
	case *Node:
		return e.write(w)
	case *Box:
		return e.write(w)
	}
	return nil
}

func (b *Boundary) write(w *binary.Writer) error {
	if err := w.Empty(RecBoundary); err != nil {
		return err
	}
	if err := writeFlags(w, b.ElFlags, b.Plex); err != nil {
		return err
	}
	if err := w.Int16(RecLayer, b.Layer); err != nil {
		return err
	}
	if err := w.Int16(RecDatatype, b.Datatype); err != nil {
		return err
	}
	if err := writeXY(w, b.XY); err != nil {
		return err
	}
	return endElement(w, b.Properties)
}

func (p *Path) write(w *binary.Writer) error {
	if err := w.Empty(RecPath); err != nil {
		return err
	}
	if err := writeFlags(w, p.ElFlags, p.Plex); err != nil {
		return err
	}
	if err := w.Int16(RecLayer, p.Layer); err != nil {
		return err
	}
	if err := w.Int16(RecDatatype, p.Datatype); err != nil {
		return err
	}
	if err := w.Int16(RecPathType, p.PathType); err != nil {
		return err
	}
	if p.Width != nil {
		if err := w.Int32(RecWidth, *p.Width); err != nil {
			return err
		}
	}
	if p.BeginExt != nil {
		if err := w.Int32(RecBgnExtn, *p.BeginExt); err != nil {
			return err
		}
	}
	if p.EndExt != nil {
		if err := w.Int32(RecEndExtn, *p.EndExt); err != nil {
			return err
		}
	}
	if err := writeXY(w, p.XY); err != nil {
		return err
	}
	return endElement(w, p.Properties)
}

func (t *Text) write(w *binary.Writer) error {
	if err := w.Empty(RecText); err != nil {
		return err
	}
	if err := writeFlags(w, t.ElFlags, t.Plex); err != nil {
		return err
	}
	if err := w.Int16(RecLayer, t.Layer); err != nil {
		return err
	}
	if err := w.Int16(RecTextType, t.TextType); err != nil {
		return err
	}
	if t.Presentation != nil {
		if err := w.Int16(RecPresentation, *t.Presentation); err != nil {
			return err
		}
	}
	if t.Width != nil {
		if err := w.Int32(RecWidth, *t.Width); err != nil {
			return err
		}
	}
	if err := writeStrans(w, t.Strans); err != nil {
		return err
	}
	if err := writeXY(w, []Point{t.XY}); err != nil {
		return err
	}
	if err := w.String(RecString, t.String); err != nil {
		return err
	}
	return endElement(w, t.Properties)
}

func (s *StructRef) write(w *binary.Writer) error {
	if err := w.Empty(RecSRef); err != nil {
		return err
	}
	if err := writeFlags(w, s.ElFlags, s.Plex); err != nil {
		return err
	}
	if err := w.String(RecSName, s.StructureName); err != nil {
		return err
	}
	if err := writeStrans(w, s.Strans); err != nil {
		return err
	}
	if err := writeXY(w, []Point{s.XY}); err != nil {
		return err
	}
	return endElement(w, s.Properties)
}

func (a *ArrayRef) write(w *binary.Writer) error {
	if err := w.Empty(RecARef); err != nil {
		return err
	}
	if err := writeFlags(w, a.ElFlags, a.Plex); err != nil {
		return err
	}
	if err := w.String(RecSName, a.StructureName); err != nil {
		return err
	}
	if err := writeStrans(w, a.Strans); err != nil {
		return err
	}
	if err := w.Int16s(RecColRow, []int16{a.Columns, a.Rows}); err != nil {
		return err
	}
	if err := writeXY(w, a.XY[:]); err != nil {
		return err
	}
	return endElement(w, a.Properties)
}

func (n *Node) write(w *binary.Writer) error {
	if err := w.Empty(RecNode); err != nil {
		return err
	}
	if err := writeFlags(w, n.ElFlags, n.Plex); err != nil {
		return err
	}
	if err := w.Int16(RecLayer, n.Layer); err != nil {
		return err
	}
	if err := w.Int16(RecNodeType, n.NodeType); err != nil {
		return err
	}
	if err := writeXY(w, n.XY); err != nil {
		return err
	}
	return endElement(w, n.Properties)
}

func (b *Box) write(w *binary.Writer) error {
	if err := w.Empty(RecBox); err != nil {
		return err
	}
	if err := writeFlags(w, b.ElFlags, b.Plex); err != nil {
		return err
	}
	if err := w.Int16(RecLayer, b.Layer); err != nil {
		return err
	}
	if err := w.Int16(RecBoxType, b.BoxType); err != nil {
		return err
	}
	if err := writeXY(w, b.XY); err != nil {
		return err
	}
	return endElement(w, b.Properties)
}

func writeFlags(w *binary.Writer, elflags *int16, plex *int32) error {
	if elflags != nil {
		if err := w.Int16(RecElFlags, *elflags); err != nil {
			return err
		}
	}
	if plex != nil {
		if err := w.Int32(RecPlex, *plex); err != nil {
			return err
		}
	}
	return nil
}

func writeStrans(w *binary.Writer, st *STrans) error {
	if st == nil {
		return nil
	}
	var flags uint16
	if st.Reflect {
		flags |= stransReflect
	}
	if st.AbsMag {
		flags |= stransAbsMag
	}
	if st.AbsAngle {
		flags |= stransAbsAngle
	}
	if err := w.Bits(RecSTrans, flags); err != nil {
		return err
	}
	if st.Mag != nil {
		b, err := EncodeReal8(*st.Mag)
		if err != nil {
			return err
		}
		if err := w.Real8s(RecMag, [][8]byte{b}); err != nil {
			return err
		}
	}
	if st.Angle != nil {
		b, err := EncodeReal8(*st.Angle)
		if err != nil {
			return err
		}
		if err := w.Real8s(RecAngle, [][8]byte{b}); err != nil {
			return err
		}
	}
	return nil
}

func writeXY(w *binary.Writer, pts []Point) error {
	vs := make([]int32, 0, 2*len(pts))
	for _, p := range pts {
		vs = append(vs, p.X, p.Y)
	}
	return w.Int32s(RecXY, vs)
}

func endElement(w *binary.Writer, props []Property) error {
	for _, p := range props {
		if err := w.Int16(RecPropAttr, p.Attr); err != nil {
			return err
		}
		if err := w.String(RecPropValue, p.Value); err != nil {
			return err
		}
	}
	return w.Empty(RecEndEl)
}

func timePair(a, b Time) []int16 {
	return []int16{
		a.Year, a.Month, a.Day, a.Hour, a.Minute, a.Second,
		b.Year, b.Month, b.Day, b.Hour, b.Minute, b.Second,
	}
}

func encodeUnits(user, db float64) ([][8]byte, error) {
	u, err := EncodeReal8(user)
	if err != nil {
		return nil, err
	}
	d, err := EncodeReal8(db)
	if err != nil {
		return nil, err
	}
	return [][8]byte{u, d}, nil
}

func fontsPayload(fonts []string) []byte {
	data := make([]byte, 0, fontEntrySize*len(fonts))
	for _, f := range fonts {
		entry := make([]byte, fontEntrySize)
		copy(entry, f)
		data = append(data, entry...)
	}
	return data
}
