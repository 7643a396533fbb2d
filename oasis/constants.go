package oasis

// Magic is the byte sequence every OASIS stream begins with.
const Magic = "%SEMI-OASIS\r\n"

// Record ids.
const (
	RecPad           byte = 0
	RecStart         byte = 1
	RecEnd           byte = 2
	RecCellNameImpl  byte = 3
	RecCellNameRef   byte = 4
	RecTextStrImpl   byte = 5
	RecTextStrRef    byte = 6
	RecPropNameImpl  byte = 7
	RecPropNameRef   byte = 8
	RecPropStrImpl   byte = 9
	RecPropStrRef    byte = 10
	RecLayerNameImpl byte = 11
	RecLayerNameRef  byte = 12
	RecCellRef       byte = 13 // cell begin, name by reference number
	RecCellName      byte = 14 // cell begin, name inline
	RecXYAbsolute    byte = 15
	RecXYRelative    byte = 16
	RecPlacement     byte = 17
	RecPlacementMag  byte = 18 // with magnification and angle reals
	RecText          byte = 19
	RecRectangle     byte = 20
	RecPolygon       byte = 21
	RecPath          byte = 22
	RecTrapezoidAB   byte = 23 // both deltas
	RecTrapezoidA    byte = 24 // single delta
	RecCTrapezoid    byte = 25
	RecCircle        byte = 26
	RecProperty      byte = 28
	RecPropertyLast  byte = 29 // repeat the modal last property
	RecXNameImpl     byte = 30
	RecXNameRef      byte = 31
	RecXElement      byte = 32
	RecXGeometry     byte = 33
	RecCBlock        byte = 34
)

// Info-byte presence bits, element specific. Named by the field each bit
// gates, most significant bit first.
const (
	// RECTANGLE: S W H X Y R D L
	rectSquare byte = 0x80
	rectWidth  byte = 0x40
	rectHeight byte = 0x20
	// POLYGON: 0 0 P X Y R D L
	polyPoints byte = 0x20
	// PATH: E W P X Y R D L
	pathExtensions byte = 0x80
	pathHalfWidth  byte = 0x40
	pathPoints     byte = 0x20
	// TRAPEZOID: O W H X Y R D L
	trapVertical byte = 0x80
	trapWidth    byte = 0x40
	trapHeight   byte = 0x20
	// CTRAPEZOID: T W H X Y R D L
	ctrapType   byte = 0x80
	ctrapWidth  byte = 0x40
	ctrapHeight byte = 0x20
	// CIRCLE: 0 0 r X Y R D L
	circleRadius byte = 0x20
	// TEXT: 0 C N X Y R T L
	textExplicit byte = 0x40
	textByRef    byte = 0x20
	textType     byte = 0x02
	// PLACEMENT 17: C N X Y R aa aa F; PLACEMENT 18: C N X Y R M A F.
	placeExplicit byte = 0x80
	placeByRef    byte = 0x40
	placeX        byte = 0x20
	placeY        byte = 0x10
	placeR        byte = 0x08
	placeMag      byte = 0x04 // record 18 only
	placeAngle    byte = 0x02 // record 18 only
	placeMirror   byte = 0x01
	// Shared low bits: X Y R D L positions for geometry and text records.
	bitX byte = 0x10
	bitY byte = 0x08
	bitR byte = 0x04
	bitD byte = 0x02
	bitL byte = 0x01
	// PROPERTY: 0 0 0 0 V C N S
	propValues   byte = 0x08
	propExplicit byte = 0x04
	propByRef    byte = 0x02
	propElement  byte = 0x01
)

// Placement record 17 packs the rotation into two info bits, in
// quarter turns.
const placeAngleMask byte = 0x06

// Path extension schemes, two bits each in the extension byte.
const (
	extReuse     byte = 0
	extFlush     byte = 1
	extHalfWidth byte = 2
	extExplicit  byte = 3
)

// Repetition type tags.
const (
	repReuse          = 0
	repMatrix         = 1
	repHorizontal     = 2
	repVertical       = 3
	repIrregularX     = 4
	repIrregularXGrid = 5
	repIrregularY     = 6
	repIrregularYGrid = 7
	repDiagonalMatrix = 8
	repDiagonal       = 9
	repArbitrary      = 10
	repArbitraryGrid  = 11
)

// Property value tags.
const (
	propValInt    = 0
	propValReal   = 1
	propValString = 2
	propValBool   = 3
)

// CTrapezoidTypeCount bounds the constrained trapezoid type byte; types
// 0 through 25 are defined.
const CTrapezoidTypeCount = 26

var recordNames = map[byte]string{
	RecPad:           "PAD",
	RecStart:         "START",
	RecEnd:           "END",
	RecCellNameImpl:  "CELLNAME",
	RecCellNameRef:   "CELLNAME",
	RecTextStrImpl:   "TEXTSTRING",
	RecTextStrRef:    "TEXTSTRING",
	RecPropNameImpl:  "PROPNAME",
	RecPropNameRef:   "PROPNAME",
	RecPropStrImpl:   "PROPSTRING",
	RecPropStrRef:    "PROPSTRING",
	RecLayerNameImpl: "LAYERNAME",
	RecLayerNameRef:  "LAYERNAME",
	RecCellRef:       "CELL",
	RecCellName:      "CELL",
	RecXYAbsolute:    "XYABSOLUTE",
	RecXYRelative:    "XYRELATIVE",
	RecPlacement:     "PLACEMENT",
	RecPlacementMag:  "PLACEMENT",
	RecText:          "TEXT",
	RecRectangle:     "RECTANGLE",
	RecPolygon:       "POLYGON",
	RecPath:          "PATH",
	RecTrapezoidAB:   "TRAPEZOID",
	RecTrapezoidA:    "TRAPEZOID",
	RecCTrapezoid:    "CTRAPEZOID",
	RecCircle:        "CIRCLE",
	RecProperty:      "PROPERTY",
	RecPropertyLast:  "PROPERTY",
	RecXNameImpl:     "XNAME",
	RecXNameRef:      "XNAME",
	RecXElement:      "XELEMENT",
	RecXGeometry:     "XGEOMETRY",
	RecCBlock:        "CBLOCK",
}

// RecordName returns the mnemonic for a record id.
func RecordName(id byte) string {
	if n, ok := recordNames[id]; ok {
		return n
	}
	return "UNKNOWN"
}
