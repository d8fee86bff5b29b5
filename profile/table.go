package profile

import "github.com/lucasjlepore/fitdecode/basetype"

// DeveloperDataIDMesgNum and FieldDescriptionMesgNum are the two reserved
// global message numbers that carry developer-field schema (spec §6
// "Developer data"). The decoder special-cases messages with these numbers
// after ordinary expansion to populate its developer-field index.
const (
	DeveloperDataIDMesgNum    uint16 = 207
	FieldDescriptionMesgNum   uint16 = 206
	FileIDMesgNum             uint16 = 0
	RecordMesgNum             uint16 = 20
	EventMesgNum              uint16 = 21
	FieldNumTimestamp         uint8  = 253
)

// Types holds the named type overlays known to this profile subset: three
// enums used by the bundled messages, and the two well-known scalar
// overlays the default processor converts (date_time, local_date_time).
var Types = map[string]TypeDef{
	"file": {
		Name: "file",
		Base: basetype.Enum,
		Values: map[uint64]string{
			4: "activity",
		},
	},
	"event": {
		Name: "event",
		Base: basetype.Enum,
		Values: map[uint64]string{
			0: "timer",
		},
	},
	"event_type": {
		Name: "event_type",
		Base: basetype.Enum,
		Values: map[uint64]string{
			0: "start",
			1: "stop",
		},
	},
	"date_time":       {Name: "date_time", Base: basetype.Uint32},
	"local_date_time": {Name: "local_date_time", Base: basetype.Uint32},
}

// Messages holds the bundled message schemas. This is intentionally a small
// illustrative subset of the real vendor profile (file_id, record, event,
// and the two developer-data descriptor messages) sufficient to exercise
// every decoder behavior in spec.md §8; generating the full ~250-message
// table from the vendor SDK is explicitly out of scope (spec.md §1, §6).
var Messages = map[uint16]MessageDef{
	FileIDMesgNum: {
		Num:  FileIDMesgNum,
		Name: "file_id",
		Fields: map[uint8]FieldDef{
			0: {Num: 0, Name: "type", Type: TypeRef{Base: basetype.Enum, TypeName: "file"}},
			1: {Num: 1, Name: "manufacturer", Type: TypeRef{Base: basetype.Uint16}},
			2: {Num: 2, Name: "product", Type: TypeRef{Base: basetype.Uint16}},
			3: {Num: 3, Name: "serial_number", Type: TypeRef{Base: basetype.Uint32z}},
			4: {Num: 4, Name: "time_created", Type: TypeRef{Base: basetype.Uint32, TypeName: "date_time"}},
			5: {Num: 5, Name: "number", Type: TypeRef{Base: basetype.Uint16}},
			8: {Num: 8, Name: "product_name", Type: TypeRef{Base: basetype.String}},
		},
	},
	RecordMesgNum: {
		Num:  RecordMesgNum,
		Name: "record",
		Fields: map[uint8]FieldDef{
			0:   {Num: 0, Name: "position_lat", Type: TypeRef{Base: basetype.Sint32}, Units: "semicircles"},
			1:   {Num: 1, Name: "position_long", Type: TypeRef{Base: basetype.Sint32}, Units: "semicircles"},
			2:   {Num: 2, Name: "altitude", Type: TypeRef{Base: basetype.Uint16}, Units: "m", ScaleOffset: ScaleOffset{Scale: 5, HasScale: true, Offset: 500, HasOffset: true}},
			3:   {Num: 3, Name: "heart_rate", Type: TypeRef{Base: basetype.Uint8}, Units: "bpm"},
			4:   {Num: 4, Name: "cadence", Type: TypeRef{Base: basetype.Uint8}, Units: "rpm"},
			5:   {Num: 5, Name: "distance", Type: TypeRef{Base: basetype.Uint32}, Units: "m", ScaleOffset: ScaleOffset{Scale: 100, HasScale: true}},
			6:   {Num: 6, Name: "speed", Type: TypeRef{Base: basetype.Uint16}, Units: "m/s", ScaleOffset: ScaleOffset{Scale: 1000, HasScale: true}},
			7:   {Num: 7, Name: "power", Type: TypeRef{Base: basetype.Uint16}, Units: "watts"},
			FieldNumTimestamp: {Num: FieldNumTimestamp, Name: "timestamp", Type: TypeRef{Base: basetype.Uint32, TypeName: "date_time"}},
		},
	},
	EventMesgNum: {
		Num:  EventMesgNum,
		Name: "event",
		Fields: map[uint8]FieldDef{
			0: {Num: 0, Name: "event", Type: TypeRef{Base: basetype.Enum, TypeName: "event"}},
			1: {
				Num: 1, Name: "event_type", Type: TypeRef{Base: basetype.Enum, TypeName: "event_type"},
				Components: []ComponentDef{
					{TargetFieldNum: 10, BitWidth: 4, ScaleOffset: ScaleOffset{Scale: 1, HasScale: true}},
					{TargetFieldNum: 11, BitWidth: 4, ScaleOffset: ScaleOffset{Scale: 1, HasScale: true}},
				},
			},
			10: {Num: 10, Name: "event_group_low", Type: TypeRef{Base: basetype.Uint8}},
			11: {Num: 11, Name: "event_group_high", Type: TypeRef{Base: basetype.Uint8}},
			FieldNumTimestamp: {Num: FieldNumTimestamp, Name: "timestamp", Type: TypeRef{Base: basetype.Uint32, TypeName: "date_time"}},
		},
	},
	DeveloperDataIDMesgNum: {
		Num:  DeveloperDataIDMesgNum,
		Name: "developer_data_id",
		Fields: map[uint8]FieldDef{
			0: {Num: 0, Name: "application_id", Type: TypeRef{Base: basetype.Byte}},
			1: {Num: 1, Name: "manufacturer_id", Type: TypeRef{Base: basetype.Uint16}},
			3: {Num: 3, Name: "developer_data_index", Type: TypeRef{Base: basetype.Uint8}},
		},
	},
	FieldDescriptionMesgNum: {
		Num:  FieldDescriptionMesgNum,
		Name: "field_description",
		Fields: map[uint8]FieldDef{
			0:   {Num: 0, Name: "developer_data_index", Type: TypeRef{Base: basetype.Uint8}},
			1:   {Num: 1, Name: "field_definition_number", Type: TypeRef{Base: basetype.Uint8}},
			2:   {Num: 2, Name: "fit_base_type_id", Type: TypeRef{Base: basetype.Uint8}},
			3:   {Num: 3, Name: "field_name", Type: TypeRef{Base: basetype.String}},
			6:   {Num: 6, Name: "scale", Type: TypeRef{Base: basetype.Uint8}},
			7:   {Num: 7, Name: "offset", Type: TypeRef{Base: basetype.Sint8}},
			8:   {Num: 8, Name: "units", Type: TypeRef{Base: basetype.String}},
			200: {Num: 200, Name: "native_mesg_num", Type: TypeRef{Base: basetype.Uint16}},
			201: {Num: 201, Name: "native_field_num", Type: TypeRef{Base: basetype.Uint8}},
		},
	},
}
