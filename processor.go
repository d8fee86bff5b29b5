package fit

import "time"

// garminEpoch is the FIT date_time epoch: 1989-12-31T00:00:00Z. A date_time
// value under 0x10000000 is instead seconds since the Unix epoch (spec §4.G.3
// "well-known types"); that distinction is handled in convertDateTime.
var garminEpoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

const dateTimeUnixCutoff = 0x10000000

// Processor post-processes each resolved field as it is produced, letting a
// caller override or annotate values beyond what the profile tables
// describe (spec §4.G.4 "pluggable post-decode hooks"). ProcessField may
// mutate field in place; mesgName is the owning message's name. A non-nil
// error aborts the decode in progress and surfaces from Next/Messages as a
// *DecodeError of kind ProcessorError.
type Processor interface {
	ProcessField(mesgName string, field *ResolvedField) error
}

// FieldHook, TypeHook, and MessageHook are the three hook granularities
// DefaultProcessor dispatches to, most specific first: a field hook keyed by
// "message.field", then a message hook keyed by the message name, then a
// type hook keyed by the field's well-known type name. A hook's error return
// propagates straight out of ProcessField.
type FieldHook func(field *ResolvedField) error
type MessageHook func(mesgName string, field *ResolvedField) error
type TypeHook func(field *ResolvedField) error

// DefaultProcessor performs the built-in well-known-type conversions
// (currently date_time/local_date_time -> time.Time) and then runs at most
// one user-registered hook: the field hook if one matches, else the message
// hook, else the type hook (spec §4.G.5).
type DefaultProcessor struct {
	FieldHooks   map[string]FieldHook
	MessageHooks map[string]MessageHook
	TypeHooks    map[string]TypeHook

	// fieldTypes records, per "message.field" key, the well-known type name
	// declared in the profile for that field; populated by the decoder at
	// expansion time since ResolvedField itself carries no type name.
	fieldTypes map[string]string
}

// NewDefaultProcessor returns a DefaultProcessor ready to accept hook
// registrations.
func NewDefaultProcessor() *DefaultProcessor {
	return &DefaultProcessor{
		FieldHooks:   make(map[string]FieldHook),
		MessageHooks: make(map[string]MessageHook),
		TypeHooks:    make(map[string]TypeHook),
		fieldTypes:   make(map[string]string),
	}
}

// noteFieldType lets the decoder record a field's well-known type name so
// ProcessField can both convert it and look up a type hook for it.
func (p *DefaultProcessor) noteFieldType(mesgName, fieldName, typeName string) {
	p.fieldTypes[mesgName+"."+fieldName] = typeName
}

func (p *DefaultProcessor) ProcessField(mesgName string, field *ResolvedField) error {
	if field.None {
		return nil
	}

	key := mesgName + "." + field.Name
	typeName := p.fieldTypes[key]
	if typeName == "" {
		typeName = wellKnownTypeName(field.Name)
	}
	if typeName == "date_time" || typeName == "local_date_time" {
		convertDateTime(field, typeName == "local_date_time")
	}

	if hook, ok := p.FieldHooks[key]; ok {
		return hook(field)
	}
	if hook, ok := p.MessageHooks[mesgName]; ok {
		return hook(mesgName, field)
	}
	if typeName != "" {
		if hook, ok := p.TypeHooks[typeName]; ok {
			return hook(field)
		}
	}
	return nil
}

// wellKnownTypeName is a fallback for fields whose type name wasn't
// registered via noteFieldType (e.g. synthetic/compressed-timestamp
// fields), keyed on the profile's well-known field-name convention.
func wellKnownTypeName(fieldName string) string {
	switch fieldName {
	case "timestamp", "time_created":
		return "date_time"
	default:
		return ""
	}
}

// convertDateTime replaces field.Value (a raw uint32 seconds count) with its
// time.Time per spec §4.G.3: values below dateTimeUnixCutoff are seconds
// since the Unix epoch; local is ignored today (no timezone offset is
// applied for local_date_time, matching the FIT SDK's own UTC-faced
// behavior) but kept as a parameter for a future distinct conversion.
func convertDateTime(field *ResolvedField, local bool) {
	raw, ok := toUint64(field.Value)
	if !ok {
		return
	}
	if raw < dateTimeUnixCutoff {
		field.Value = time.Unix(int64(raw), 0).UTC()
		return
	}
	field.Value = garminEpoch.Add(time.Duration(raw) * time.Second)
}
