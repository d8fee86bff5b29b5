// Package profile holds the global message/field schema that gives FIT's
// binary records their names, scales, units, enums, subfields, and
// component decompositions (spec §4.C). It is a data package: nothing here
// reads bytes. It is a small, hand-authored illustrative subset of the real
// vendor Profile.xlsx-derived table — generating the full table is out of
// scope (see spec.md §1, §6 "Profile input").
package profile

import "github.com/lucasjlepore/fitdecode/basetype"

// TypeRef names a field's type: either a plain base type (TypeName == "")
// or a named overlay resolved through Types (an enum table or a well-known
// scalar such as date_time).
type TypeRef struct {
	Base     basetype.BaseType
	TypeName string
}

// ScaleOffset is embedded wherever a scale/offset pair may or may not be
// present; HasScale distinguishes "no scaling" from "scale of 1".
type ScaleOffset struct {
	Scale     float64
	Offset    float64
	HasScale  bool
	HasOffset bool
}

// ComponentDef projects a bit-packed sub-value of a field's raw integer onto
// another field in the same message (spec §4.G.2).
type ComponentDef struct {
	TargetFieldNum uint8
	BitWidth       uint8
	ScaleOffset
	Units      string
	Accumulate bool
}

// SubfieldDef is one alternative interpretation of a field, selected by the
// value of another field in the same message (spec §4.G.1).
type SubfieldDef struct {
	Name        string
	RefFieldNum uint8
	RefValues   map[uint64]struct{}
	Type        TypeRef
	Units       string
	ScaleOffset
	Components []ComponentDef
}

// Matches reports whether refValue (the raw value of the referenced field)
// selects this subfield.
func (s SubfieldDef) Matches(refValue uint64) bool {
	_, ok := s.RefValues[refValue]
	return ok
}

// FieldDef describes one field of a message.
type FieldDef struct {
	Num   uint8
	Name  string
	Type  TypeRef
	Units string
	ScaleOffset
	Components []ComponentDef
	Subfields  []SubfieldDef
}

// MessageDef describes one global message's schema.
type MessageDef struct {
	Num    uint16
	Name   string
	Fields map[uint8]FieldDef
}

// TypeDef is a named type overlay: an enum's int->name table, or a
// well-known scalar (Values == nil) such as date_time/local_date_time that
// the processor, not the expander, gives meaning to.
type TypeDef struct {
	Name   string
	Base   basetype.BaseType
	Values map[uint64]string
}
