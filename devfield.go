package fit

import "github.com/lucasjlepore/fitdecode/basetype"

// devKey identifies a developer field by (developer-data-index, field
// number), the two-part key a field_description message describes (spec §6
// "Developer data").
type devKey struct {
	DevDataIndex uint8
	FieldNum     uint8
}

// devFieldDescriptor is the schema for one developer field, learned from a
// field_description data message.
type devFieldDescriptor struct {
	Name string
	Base basetype.BaseType
	ScaleOffset
	Units string
}

// ScaleOffset mirrors profile.ScaleOffset for developer-field descriptors,
// which are supplied by the file itself rather than the bundled profile.
type ScaleOffset struct {
	Scale     float64
	Offset    float64
	HasScale  bool
	HasOffset bool
}

// recordFieldDescription updates idx from a decoded field_description
// message's resolved fields.
func recordFieldDescription(idx map[devKey]devFieldDescriptor, msg Message) {
	devIdx, ok := fieldUint(msg, "developer_data_index")
	if !ok {
		return
	}
	fieldNum, ok := fieldUint(msg, "field_definition_number")
	if !ok {
		return
	}
	baseID, _ := fieldUint(msg, "fit_base_type_id")
	name, _ := fieldString(msg, "field_name")
	units, _ := fieldString(msg, "units")

	desc := devFieldDescriptor{
		Name:  name,
		Base:  basetype.BaseType(baseID),
		Units: units,
	}
	if scale, ok := fieldUint(msg, "scale"); ok {
		desc.Scale = float64(scale)
		desc.HasScale = true
	}
	if offset, ok := fieldInt(msg, "offset"); ok {
		desc.Offset = float64(offset)
		desc.HasOffset = true
	}

	idx[devKey{DevDataIndex: uint8(devIdx), FieldNum: uint8(fieldNum)}] = desc
}

// recordDeveloperDataID updates appIDs from a decoded developer_data_id
// message's resolved fields.
func recordDeveloperDataID(appIDs map[uint8][]byte, msg Message) {
	devIdx, ok := fieldUint(msg, "developer_data_index")
	if !ok {
		return
	}
	if f, ok := msg.Field("application_id"); ok && !f.None {
		if b, ok := f.Value.([]byte); ok {
			appIDs[uint8(devIdx)] = b
		}
	}
}

func fieldUint(msg Message, name string) (uint64, bool) {
	f, ok := msg.Field(name)
	if !ok || f.None {
		return 0, false
	}
	switch v := f.Value.(type) {
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case int8:
		return uint64(v), true
	case int16:
		return uint64(v), true
	case int32:
		return uint64(v), true
	case int64:
		return uint64(v), true
	default:
		return 0, false
	}
}

func fieldInt(msg Message, name string) (int64, bool) {
	f, ok := msg.Field(name)
	if !ok || f.None {
		return 0, false
	}
	switch v := f.Value.(type) {
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func fieldString(msg Message, name string) (string, bool) {
	f, ok := msg.Field(name)
	if !ok || f.None {
		return "", false
	}
	s, ok := f.Value.(string)
	return s, ok
}
