package fit

import (
	"encoding/binary"

	"github.com/lucasjlepore/fitdecode/basetype"
)

// fieldDef is one (field number, byte size, base type) triple from a
// definition record (spec §4.E).
type fieldDef struct {
	Num  uint8
	Size uint8
	Type basetype.BaseType
}

// devFieldDef is one developer-field triple from a definition record.
type devFieldDef struct {
	Num      uint8
	Size     uint8
	DevIndex uint8
}

// localDefinition is a definition record's effect: the schema that
// subsequent data records for its local tag must follow until overwritten
// (spec §3 "Local definition (per file)").
type localDefinition struct {
	GlobalMesgNum uint16
	Arch          binary.ByteOrder
	Fields        []fieldDef
	DevFields     []devFieldDef
}

// decodeDefinitionRecord reads one definition record's body (the header
// byte itself has already been consumed and classified by the caller).
func decodeDefinitionRecord(r *byteReader, hasDevFields bool) (*localDefinition, error) {
	def := &localDefinition{}

	// Reserved byte.
	if _, err := r.readByte(); err != nil {
		return nil, err
	}

	archByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch archByte {
	case 0:
		def.Arch = binary.LittleEndian
	case 1:
		def.Arch = binary.BigEndian
	default:
		return nil, newErr(InvalidDefinition, r.offset(), "architecture byte was %#x, want 0 or 1", archByte)
	}

	gmnBuf := make([]byte, 2)
	if err := r.readFull(gmnBuf); err != nil {
		return nil, err
	}
	def.GlobalMesgNum = def.Arch.Uint16(gmnBuf)

	nFields, err := r.readByte()
	if err != nil {
		return nil, err
	}
	def.Fields = make([]fieldDef, 0, nFields)
	for i := 0; i < int(nFields); i++ {
		raw := make([]byte, 3)
		if err := r.readFull(raw); err != nil {
			return nil, err
		}
		fd := fieldDef{Num: raw[0], Size: raw[1], Type: basetype.BaseType(raw[2])}
		if fd.Size == 0 {
			return nil, newErr(InvalidDefinition, r.offset(), "field %d declares zero byte size", fd.Num)
		}
		// A declared size that is not a multiple of the base type's
		// element size is not rejected here: Open Question #1 (spec.md §9)
		// resolves it as a single named fallback in data.go's
		// decodeElements, which reads the bytes back unsplit rather than
		// scattering the special case across the decoder.
		def.Fields = append(def.Fields, fd)
	}

	if hasDevFields {
		nDev, err := r.readByte()
		if err != nil {
			return nil, err
		}
		def.DevFields = make([]devFieldDef, 0, nDev)
		for i := 0; i < int(nDev); i++ {
			raw := make([]byte, 3)
			if err := r.readFull(raw); err != nil {
				return nil, err
			}
			def.DevFields = append(def.DevFields, devFieldDef{Num: raw[0], Size: raw[1], DevIndex: raw[2]})
		}
	}

	return def, nil
}
