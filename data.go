package fit

import (
	"encoding/binary"
	"math"

	"github.com/lucasjlepore/fitdecode/basetype"
)

// RawField is one field as it comes off the wire, before profile-driven
// expansion (subfields, components, scale/offset, enum names) is applied
// (spec §4.F "Data record decode").
type RawField struct {
	Num       uint8
	Type      basetype.BaseType
	RawBytes  []byte
	Value     any
	None      bool
	Developer bool
	DevIndex  uint8
	// DevName and DevUnits carry the file-supplied name/units for a
	// developer field (from its field_description message); empty when no
	// descriptor has been seen for this field.
	DevName  string
	DevUnits string
}

// decodeElements decodes raw as a sequence of bt elements in arch byte
// order. A scalar field decodes to a bare Go value; a field with more than
// one element decodes to a slice. A byte field always decodes to a []byte,
// whatever its length. When len(raw) is not a multiple of bt's
// element size, or bt is outside the closed base-type set, decodeElements
// falls back to returning raw unsplit (Open Question #1, spec.md §9) rather
// than guessing a split.
func decodeElements(raw []byte, bt basetype.BaseType, arch binary.ByteOrder) (value any, none bool, err error) {
	if bt == basetype.String {
		return decodeString(raw), false, nil
	}

	spec, ok := basetype.Lookup(bt)
	if !ok || len(raw) == 0 || len(raw)%spec.Size != 0 {
		return append([]byte(nil), raw...), false, nil
	}

	n := len(raw) / spec.Size
	if bt == basetype.Byte {
		allInvalid := true
		for _, b := range raw {
			if b != 0xFF {
				allInvalid = false
				break
			}
		}
		return append([]byte(nil), raw...), allInvalid, nil
	}

	elems := make([]any, n)
	allNone := true
	for i := 0; i < n; i++ {
		e := raw[i*spec.Size : (i+1)*spec.Size]
		v, isInvalid := decodeOneElement(e, spec, arch)
		elems[i] = v
		if !isInvalid {
			allNone = false
		}
	}

	if n == 1 {
		return elems[0], allNone, nil
	}
	return collapseSlice(elems, spec), allNone, nil
}

// decodeOneElement decodes a single spec.Size-byte element and reports
// whether it equals the base type's invalid sentinel.
func decodeOneElement(e []byte, spec basetype.Spec, arch binary.ByteOrder) (value any, isInvalid bool) {
	var bits uint64
	switch spec.Size {
	case 1:
		bits = uint64(e[0])
	case 2:
		bits = uint64(arch.Uint16(e))
	case 4:
		bits = uint64(arch.Uint32(e))
	case 8:
		bits = arch.Uint64(e)
	}

	if spec.ZIsInval {
		isInvalid = bits == 0
	} else {
		isInvalid = bits == spec.Invalid
	}

	if spec.Float {
		switch spec.Size {
		case 4:
			return math.Float32frombits(uint32(bits)), isInvalid
		case 8:
			return math.Float64frombits(bits), isInvalid
		}
	}

	if spec.Signed {
		switch spec.Size {
		case 1:
			return int8(bits), isInvalid
		case 2:
			return int16(bits), isInvalid
		case 4:
			return int32(bits), isInvalid
		case 8:
			return int64(bits), isInvalid
		}
	}

	switch spec.Size {
	case 1:
		return uint8(bits), isInvalid
	case 2:
		return uint16(bits), isInvalid
	case 4:
		return uint32(bits), isInvalid
	case 8:
		return bits, isInvalid
	}
	return bits, isInvalid
}

// collapseSlice turns a []any of homogeneous decoded elements into a typed
// slice, so callers see e.g. []uint16 rather than []any.
func collapseSlice(elems []any, spec basetype.Spec) any {
	if spec.Float {
		switch spec.Size {
		case 4:
			out := make([]float32, len(elems))
			for i, v := range elems {
				out[i] = v.(float32)
			}
			return out
		case 8:
			out := make([]float64, len(elems))
			for i, v := range elems {
				out[i] = v.(float64)
			}
			return out
		}
	}
	if spec.Signed {
		switch spec.Size {
		case 1:
			out := make([]int8, len(elems))
			for i, v := range elems {
				out[i] = v.(int8)
			}
			return out
		case 2:
			out := make([]int16, len(elems))
			for i, v := range elems {
				out[i] = v.(int16)
			}
			return out
		case 4:
			out := make([]int32, len(elems))
			for i, v := range elems {
				out[i] = v.(int32)
			}
			return out
		case 8:
			out := make([]int64, len(elems))
			for i, v := range elems {
				out[i] = v.(int64)
			}
			return out
		}
	}
	switch spec.Size {
	case 1:
		out := make([]uint8, len(elems))
		for i, v := range elems {
			out[i] = v.(uint8)
		}
		return out
	case 2:
		out := make([]uint16, len(elems))
		for i, v := range elems {
			out[i] = v.(uint16)
		}
		return out
	case 4:
		out := make([]uint32, len(elems))
		for i, v := range elems {
			out[i] = v.(uint32)
		}
		return out
	default:
		out := make([]uint64, len(elems))
		for i, v := range elems {
			out[i] = v.(uint64)
		}
		return out
	}
}

// decodeString trims a fixed-width FIT string field at its first NUL, per
// spec §4.B: the field may be padded past the logical string's end.
func decodeString(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// decodeDataRecord reads one data record's body for localTag under def (the
// header byte has already been consumed and classified by the caller).
// compressedTimestamp, when non-nil, supplies a synthetic field-253
// timestamp for a compressed-header data record that does not itself
// redeclare one. Fields are returned native-first, developer-second (Open
// Question #2, spec.md §9): this matches the order definition records
// declare them, native then developer triples.
func decodeDataRecord(r *byteReader, def *localDefinition, devIndex map[devKey]devFieldDescriptor, compressedTimestamp *uint32) ([]RawField, error) {
	fields := make([]RawField, 0, len(def.Fields)+len(def.DevFields)+1)

	hasTimestamp := false
	for _, fd := range def.Fields {
		raw := make([]byte, fd.Size)
		if err := r.readFull(raw); err != nil {
			return nil, err
		}
		value, none, err := decodeElements(raw, fd.Type, def.Arch)
		if err != nil {
			return nil, err
		}
		if fd.Num == fieldNumTimestamp {
			hasTimestamp = true
		}
		fields = append(fields, RawField{
			Num:      fd.Num,
			Type:     fd.Type,
			RawBytes: raw,
			Value:    value,
			None:     none,
		})
	}

	for _, dfd := range def.DevFields {
		raw := make([]byte, dfd.Size)
		if err := r.readFull(raw); err != nil {
			return nil, err
		}
		key := devKey{DevDataIndex: dfd.DevIndex, FieldNum: dfd.Num}
		desc, known := devIndex[key]
		var value any
		none := false
		if known {
			var err error
			value, none, err = decodeElements(raw, desc.Base, def.Arch)
			if err != nil {
				return nil, err
			}
			if !none && (desc.HasScale || desc.HasOffset) {
				if f, ok := toFloat64(value); ok {
					scale := desc.Scale
					if !desc.HasScale {
						scale = 1
					}
					value = f/scale - desc.Offset
				}
			}
		} else {
			// No field_description seen yet (or ever) for this key: keep the
			// raw bytes rather than dropping the field (spec §6, "unknown
			// developer field" edge case).
			value = append([]byte(nil), raw...)
		}
		fields = append(fields, RawField{
			Num:       dfd.Num,
			Type:      desc.Base,
			RawBytes:  raw,
			Value:     value,
			None:      none,
			Developer: true,
			DevIndex:  dfd.DevIndex,
			DevName:   desc.Name,
			DevUnits:  desc.Units,
		})
	}

	if compressedTimestamp != nil && !hasTimestamp {
		fields = append([]RawField{{
			Num:   fieldNumTimestamp,
			Type:  basetype.Uint32,
			Value: *compressedTimestamp,
		}}, fields...)
	}

	return fields, nil
}

const fieldNumTimestamp = 253
