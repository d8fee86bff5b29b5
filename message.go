package fit

// ResolvedField is one field of a decoded Message after subfield
// resolution, component expansion, scale/offset, enum resolution, and the
// processor hook have all run (spec §4.G).
type ResolvedField struct {
	Num   uint8
	Name  string
	Units string
	// Value holds the final value: a numeric type, a string (enum name or
	// profile string field), or the well-known overlay's Go representation
	// (time.Time for date_time/local_date_time, set by the processor).
	Value any
	// None reports a field whose raw value was entirely sentinel bytes
	// (spec §3 invariant 5, §8 property 5).
	None bool
	// Developer is true for a field whose schema came from the file's own
	// developer-data descriptors rather than the built-in profile.
	Developer bool
}

// Message is one decoded, named FIT data record (spec §3 "Data message").
type Message struct {
	Num    uint16
	Name   string
	Fields []ResolvedField
	// LocalTag is the local message tag (0-15) the record carried.
	LocalTag uint8
	// Offset is the absolute byte offset of the record's header byte.
	Offset int64
}

// Field returns the first field named name, if present.
func (m Message) Field(name string) (ResolvedField, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ResolvedField{}, false
}
