package oasis

import "github.com/wippyai/laykit/errors"

// modalState is the per-cell sliding default set. Element records flag
// which fields travel in the payload; the rest come from here. The whole
// set resets at every CELL record. It is explicit codec state, never
// part of the in-memory model.
type modalState struct {
	xyRelative bool

	layer      uint64
	layerOK    bool
	datatype   uint64
	datatypeOK bool

	textLayer   uint64
	textLayerOK bool
	textType    uint64
	textTypeOK  bool

	geometryX  int64
	geometryY  int64
	placementX int64
	placementY int64
	textX      int64
	textY      int64

	width    uint64
	widthOK  bool
	height   uint64
	heightOK bool

	polygonPoints   []Delta
	polygonPointsOK bool
	pathPoints      []Delta
	pathPointsOK    bool

	halfWidth   uint64
	halfWidthOK bool
	startExt    PathExtension
	endExt      PathExtension
	extOK       bool

	ctrapType   uint64
	ctrapTypeOK bool
	radius      uint64
	radiusOK    bool

	repetition   *Repetition
	repetitionOK bool

	// Name slots carry either a resolved string or a pending table
	// reference; pending references resolve after the stream scan.
	placementCell    string
	placementCellRef *uint64
	placementCellOK  bool
	textString       string
	textStringRef    *uint64
	textStringOK     bool

	lastProperty    *Property
	lastPropertyRef *uint64
	lastPropertyOK  bool
}

// reset clears every slot. Position modals restart at the origin in
// absolute mode.
func (m *modalState) reset() {
	*m = modalState{}
}

// undefinedModal builds the error for an element that inherits a modal
// slot nothing has set yet.
func undefinedModal(record, slot string, offset int64) error {
	return errors.New(errors.PhaseDecode, errors.KindUnexpectedRecord).
		Format(errors.FormatOASIS).
		Record(record).
		Offset(offset).
		Detail("field omitted but modal %s is undefined", slot).
		Build()
}
