package fit

// Record header bit layout (spec §4.D).
const (
	headerCompressedMask      = 0x80
	headerCompressedLocalMask = 0x60
	headerCompressedTimeMask  = 0x1F
	headerTypeMask            = 0x40 // 1 = definition, 0 = data
	headerDevDataMask         = 0x20
	headerLocalMask           = 0x0F
)

// recordKind classifies a single record header byte.
type recordKind int

const (
	recordDefinition recordKind = iota
	recordData
	recordCompressedData
)

// classifyHeader decodes a record header byte per spec §4.D. For a
// compressed-timestamp header, localTag is in 0-3 and offset holds the
// 5-bit timestamp offset; for a normal header, localTag is in 0-15 and
// hasDevFields reflects bit 5.
func classifyHeader(b byte) (kind recordKind, localTag uint8, hasDevFields bool, offset uint8) {
	if b&headerCompressedMask == headerCompressedMask {
		return recordCompressedData, (b & headerCompressedLocalMask) >> 5, false, b & headerCompressedTimeMask
	}
	if b&headerTypeMask == headerTypeMask {
		return recordDefinition, b & headerLocalMask, b&headerDevDataMask == headerDevDataMask, 0
	}
	return recordData, b & headerLocalMask, b&headerDevDataMask == headerDevDataMask, 0
}
