package gdsii

// Record types of the GDSII stream format.
const (
	RecHeader       byte = 0x00
	RecBgnLib       byte = 0x01
	RecLibName      byte = 0x02
	RecUnits        byte = 0x03
	RecEndLib       byte = 0x04
	RecBgnStr       byte = 0x05
	RecStrName      byte = 0x06
	RecEndStr       byte = 0x07
	RecBoundary     byte = 0x08
	RecPath         byte = 0x09
	RecSRef         byte = 0x0A
	RecARef         byte = 0x0B
	RecText         byte = 0x0C
	RecLayer        byte = 0x0D
	RecDatatype     byte = 0x0E
	RecWidth        byte = 0x0F
	RecXY           byte = 0x10
	RecEndEl        byte = 0x11
	RecSName        byte = 0x12
	RecColRow       byte = 0x13
	RecNode         byte = 0x15
	RecTextType     byte = 0x16
	RecPresentation byte = 0x17
	RecString       byte = 0x19
	RecSTrans       byte = 0x1A
	RecMag          byte = 0x1B
	RecAngle        byte = 0x1C
	RecRefLibs      byte = 0x1F
	RecPathType     byte = 0x21
	RecElFlags      byte = 0x26
	RecFonts        byte = 0x29
	RecNodeType     byte = 0x2A
	RecPropAttr     byte = 0x2B
	RecPropValue    byte = 0x2C
	RecBox          byte = 0x2D
	RecBoxType      byte = 0x2E
	RecPlex         byte = 0x2F
	RecBgnExtn      byte = 0x30
	RecEndExtn      byte = 0x31
	RecStrClass     byte = 0x34
	RecGenerations  byte = 0x3C
	RecAttrTable    byte = 0x3D
)

// Data type codes carried in the fourth header byte of every record.
const (
	DataNone    byte = 0
	DataBits    byte = 1
	DataInt16   byte = 2
	DataInt32   byte = 3
	DataReal4   byte = 4 // unused in practice
	DataReal8   byte = 5
	DataASCII   byte = 6
	dataTypeMax byte = 6
)

// STRANS flag bits.
const (
	stransReflect  uint16 = 0x8000
	stransAbsMag   uint16 = 0x0004
	stransAbsAngle uint16 = 0x0002
)

// Path type codes.
const (
	PathFlush  int16 = 0 // ends flush at the endpoints
	PathRound  int16 = 1 // round ends extending half the width
	PathSquare int16 = 2 // square ends extending half the width
	PathCustom int16 = 4 // explicit begin/end extensions
)

// fontEntrySize is the fixed width of each name in a FONTS record.
const fontEntrySize = 44

var recordNames = map[byte]string{
	RecHeader:       "HEADER",
	RecBgnLib:       "BGNLIB",
	RecLibName:      "LIBNAME",
	RecUnits:        "UNITS",
	RecEndLib:       "ENDLIB",
	RecBgnStr:       "BGNSTR",
	RecStrName:      "STRNAME",
	RecEndStr:       "ENDSTR",
	RecBoundary:     "BOUNDARY",
	RecPath:         "PATH",
	RecSRef:         "SREF",
	RecARef:         "AREF",
	RecText:         "TEXT",
	RecLayer:        "LAYER",
	RecDatatype:     "DATATYPE",
	RecWidth:        "WIDTH",
	RecXY:           "XY",
	RecEndEl:        "ENDEL",
	RecSName:        "SNAME",
	RecColRow:       "COLROW",
	RecNode:         "NODE",
	RecTextType:     "TEXTTYPE",
	RecPresentation: "PRESENTATION",
	RecString:       "STRING",
	RecSTrans:       "STRANS",
	RecMag:          "MAG",
	RecAngle:        "ANGLE",
	RecRefLibs:      "REFLIBS",
	RecPathType:     "PATHTYPE",
	RecElFlags:      "ELFLAGS",
	RecFonts:        "FONTS",
	RecNodeType:     "NODETYPE",
	RecPropAttr:     "PROPATTR",
	RecPropValue:    "PROPVALUE",
	RecBox:          "BOX",
	RecBoxType:      "BOXTYPE",
	RecPlex:         "PLEX",
	RecBgnExtn:      "BGNEXTN",
	RecEndExtn:      "ENDEXTN",
	RecStrClass:     "STRCLASS",
	RecGenerations:  "GENERATIONS",
	RecAttrTable:    "ATTRTABLE",
}

// RecordName returns the mnemonic for a record type, or a hex form for
// types outside the known set.
func RecordName(t byte) string {
	if n, ok := recordNames[t]; ok {
		return n
	}
	return "0x" + hexByte(t)
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
