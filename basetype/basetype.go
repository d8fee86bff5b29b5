// Package basetype describes the fixed set of FIT base types: their wire
// size, endianness sensitivity, and invalid sentinel value. It is shared by
// the decoder and the profile tables so neither has to duplicate the FIT
// base type catalog.
package basetype

import "fmt"

// BaseType identifies one of the FIT wire-level element types. The numeric
// values match the base-type byte used in FIT definition records.
type BaseType uint8

// The closed set of FIT base types (FIT SDK Profile.xlsx "Types" tab).
const (
	Enum    BaseType = 0x00
	Sint8   BaseType = 0x01
	Uint8   BaseType = 0x02
	Sint16  BaseType = 0x83
	Uint16  BaseType = 0x84
	Sint32  BaseType = 0x85
	Uint32  BaseType = 0x86
	String  BaseType = 0x07
	Float32 BaseType = 0x88
	Float64 BaseType = 0x89
	Uint8z  BaseType = 0x0A
	Uint16z BaseType = 0x8B
	Uint32z BaseType = 0x8C
	Byte    BaseType = 0x0D
	Sint64  BaseType = 0x8E
	Uint64  BaseType = 0x8F
	Uint64z BaseType = 0x90
)

// Spec describes one base type's decode rules.
type Spec struct {
	Name     string
	Size     int  // element size in bytes
	Signed   bool // two's-complement integer
	Float    bool
	Endian   bool   // multi-byte value honors the definition's byte order
	Invalid  uint64 // sentinel bit pattern for integer/float types (as raw bits)
	ZIsInval bool   // "...z" variant: zero (not max) is the sentinel
}

var specs = map[BaseType]Spec{
	Enum:    {Name: "enum", Size: 1, Invalid: 0xFF},
	Sint8:   {Name: "sint8", Size: 1, Signed: true, Invalid: 0x7F},
	Uint8:   {Name: "uint8", Size: 1, Invalid: 0xFF},
	Sint16:  {Name: "sint16", Size: 2, Signed: true, Endian: true, Invalid: 0x7FFF},
	Uint16:  {Name: "uint16", Size: 2, Endian: true, Invalid: 0xFFFF},
	Sint32:  {Name: "sint32", Size: 4, Signed: true, Endian: true, Invalid: 0x7FFFFFFF},
	Uint32:  {Name: "uint32", Size: 4, Endian: true, Invalid: 0xFFFFFFFF},
	String:  {Name: "string", Size: 1},
	Float32: {Name: "float32", Size: 4, Float: true, Endian: true, Invalid: 0xFFFFFFFF},
	Float64: {Name: "float64", Size: 8, Float: true, Endian: true, Invalid: 0xFFFFFFFFFFFFFFFF},
	Uint8z:  {Name: "uint8z", Size: 1, ZIsInval: true},
	Uint16z: {Name: "uint16z", Size: 2, Endian: true, ZIsInval: true},
	Uint32z: {Name: "uint32z", Size: 4, Endian: true, ZIsInval: true},
	Byte:    {Name: "byte", Size: 1, Invalid: 0xFF},
	Sint64:  {Name: "sint64", Size: 8, Signed: true, Endian: true, Invalid: 0x7FFFFFFFFFFFFFFF},
	Uint64:  {Name: "uint64", Size: 8, Endian: true, Invalid: 0xFFFFFFFFFFFFFFFF},
	Uint64z: {Name: "uint64z", Size: 8, Endian: true, ZIsInval: true},
}

func init() {
	// Init-time guard against a typo'd map literal above; cheap enough
	// to run always instead of gating it behind a build tag.
	if _, ok := specs[Enum]; !ok {
		panic("basetype: registry not initialized")
	}
}

// Lookup returns the Spec for bt. ok is false for codes outside the closed
// set (§4.B): callers must fall back to treating the field as an opaque
// byte blob rather than failing the decode.
func Lookup(bt BaseType) (Spec, bool) {
	s, ok := specs[bt]
	return s, ok
}

// Name returns bt's canonical name, or a synthetic name for unknown codes.
func Name(bt BaseType) string {
	if s, ok := specs[bt]; ok {
		return s.Name
	}
	return fmt.Sprintf("unknown_base_0x%02X", uint8(bt))
}
