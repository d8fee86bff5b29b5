package profile

import "fmt"

// LookupMessage returns the schema for global message num. ok is false for
// message numbers this profile subset does not carry; the decoder falls
// back to UnknownMessageName rather than failing (spec §4.C, §7).
func LookupMessage(num uint16) (MessageDef, bool) {
	m, ok := Messages[num]
	return m, ok
}

// LookupField returns the field schema for (mesgNum, fieldNum).
func LookupField(mesgNum uint16, fieldNum uint8) (FieldDef, bool) {
	m, ok := Messages[mesgNum]
	if !ok {
		return FieldDef{}, false
	}
	f, ok := m.Fields[fieldNum]
	return f, ok
}

// LookupType returns the named type overlay t.
func LookupType(name string) (TypeDef, bool) {
	t, ok := Types[name]
	return t, ok
}

// UnknownMessageName synthesizes a name for a message number this profile
// subset does not recognize.
func UnknownMessageName(num uint16) string {
	return fmt.Sprintf("unknown_%d", num)
}

// UnknownFieldName synthesizes a name for a field number not present in a
// known message's schema.
func UnknownFieldName(num uint8) string {
	return fmt.Sprintf("unknown_%d", num)
}
