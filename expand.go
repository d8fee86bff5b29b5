package fit

import (
	"github.com/lucasjlepore/fitdecode/profile"
)

// accKey identifies one component accumulator's rolling state: the target
// field a run of component values is written into within one message type.
type accKey struct {
	MesgNum  uint16
	FieldNum uint8
}

// accumulator tracks the last reconstructed value per accKey so wrapping
// component values (spec §4.G.2 "rolling accumulation") can be unwrapped
// across successive messages of the same type.
type accumulator struct {
	values map[accKey]uint64
}

func newAccumulator() *accumulator {
	return &accumulator{values: make(map[accKey]uint64)}
}

// apply folds the bitWidth-wide raw component reading into the accumulator
// for key, extending it past its bit width using the previous reading as a
// high-bits reference, and returns the reconstructed value.
func (a *accumulator) apply(key accKey, bitWidth uint8, raw uint64) uint64 {
	mask := uint64(1)<<bitWidth - 1
	prev, ok := a.values[key]
	var val uint64
	if !ok {
		val = raw
	} else {
		val = (prev &^ mask) | (raw & mask)
		if val < prev {
			val += mask + 1
		}
	}
	a.values[key] = val
	return val
}

// expandMessage turns one data record's raw fields into a named Message:
// subfield resolution, component bit-stream expansion, scale/offset,
// enum/well-known-type resolution, and the processor hook, in that order
// (spec §4.G). A non-nil error comes from a Processor hook (spec §7
// ProcessorError) and aborts expansion of the remaining fields.
func expandMessage(mesgNum uint16, localTag uint8, offset int64, raw []RawField, acc *accumulator, proc Processor) (Message, error) {
	mesgDef, known := profile.LookupMessage(mesgNum)
	mesgName := mesgDef.Name
	if !known {
		mesgName = profile.UnknownMessageName(mesgNum)
	}

	rawByNum := make(map[uint8]RawField, len(raw))
	for _, rf := range raw {
		rawByNum[rf.Num] = rf
	}

	out := make([]ResolvedField, 0, len(raw)+2)
	for _, rf := range raw {
		if rf.Developer {
			out = append(out, expandDeveloperField(rf))
			continue
		}

		fieldDef, hasFieldDef := profile.FieldDef{}, false
		if known {
			fieldDef, hasFieldDef = mesgDef.Fields[rf.Num]
		}
		if !hasFieldDef {
			rf2 := ResolvedField{Num: rf.Num, Name: profile.UnknownFieldName(rf.Num), Value: rf.Value, None: rf.None}
			if err := proc.ProcessField(mesgName, &rf2); err != nil {
				return Message{}, err
			}
			out = append(out, rf2)
			continue
		}

		effective := fieldDef
		if sub, ok := selectSubfield(fieldDef, rawByNum); ok {
			effective = profile.FieldDef{
				Num:         fieldDef.Num,
				Name:        sub.Name,
				Type:        sub.Type,
				Units:       sub.Units,
				ScaleOffset: sub.ScaleOffset,
				Components:  sub.Components,
			}
		}

		if dp, ok := proc.(*DefaultProcessor); ok {
			dp.noteFieldType(mesgName, effective.Name, effective.Type.TypeName)
		}
		resolved := resolveScalarField(rf, effective)
		if err := proc.ProcessField(mesgName, &resolved); err != nil {
			return Message{}, err
		}
		out = append(out, resolved)

		if len(effective.Components) > 0 && !rf.None {
			comps, err := expandComponents(mesgNum, mesgName, rf, effective.Components, acc, proc)
			if err != nil {
				return Message{}, err
			}
			out = append(out, comps...)
		}
	}

	return Message{
		Num:      mesgNum,
		Name:     mesgName,
		Fields:   out,
		LocalTag: localTag,
		Offset:   offset,
	}, nil
}

// selectSubfield returns the first subfield (declaration order) whose
// reference field matches its declared values (spec §4.G.1, first match
// wins).
func selectSubfield(fieldDef profile.FieldDef, rawByNum map[uint8]RawField) (profile.SubfieldDef, bool) {
	for _, sub := range fieldDef.Subfields {
		ref, ok := rawByNum[sub.RefFieldNum]
		if !ok {
			continue
		}
		refVal, ok := toUint64(ref.Value)
		if !ok {
			continue
		}
		if sub.Matches(refVal) {
			return sub, true
		}
	}
	return profile.SubfieldDef{}, false
}

// resolveScalarField applies scale/offset and enum/well-known-type
// resolution to a single (non-component) field's raw value.
func resolveScalarField(rf RawField, def profile.FieldDef) ResolvedField {
	out := ResolvedField{Num: rf.Num, Name: def.Name, Units: def.Units, None: rf.None}
	if rf.None {
		return out
	}

	value := rf.Value
	if def.HasScale || def.HasOffset {
		if f, ok := toFloat64(rf.Value); ok {
			scale := def.Scale
			if !def.HasScale {
				scale = 1
			}
			value = f/scale - def.Offset
		}
	}

	if def.Type.TypeName != "" {
		if td, ok := profile.LookupType(def.Type.TypeName); ok && td.Values != nil {
			if raw, ok := toUint64(rf.Value); ok {
				if name, ok := td.Values[raw]; ok {
					value = name
				}
			}
		}
	}

	out.Value = value
	return out
}

// expandComponents bit-splits rf's raw integer value LSB-first into one
// resolved field per ComponentDef, applying accumulation and scale/offset
// per component, and naming each from its own field definition when the
// message declares one (spec §4.G.2).
func expandComponents(mesgNum uint16, mesgName string, rf RawField, components []profile.ComponentDef, acc *accumulator, proc Processor) ([]ResolvedField, error) {
	raw, ok := toUint64(rf.Value)
	if !ok {
		return nil, nil
	}

	out := make([]ResolvedField, 0, len(components))
	var bitOffset uint8
	for _, comp := range components {
		mask := uint64(1)<<comp.BitWidth - 1
		bits := (raw >> bitOffset) & mask
		bitOffset += comp.BitWidth

		var value uint64 = bits
		if comp.Accumulate {
			value = acc.apply(accKey{MesgNum: mesgNum, FieldNum: comp.TargetFieldNum}, comp.BitWidth, bits)
		}

		name := profile.UnknownFieldName(comp.TargetFieldNum)
		units := comp.Units
		targetDef, hasTarget := profile.LookupField(mesgNum, comp.TargetFieldNum)
		if hasTarget {
			name = targetDef.Name
			if targetDef.Units != "" {
				units = targetDef.Units
			}
		}

		var scaled any = value
		if comp.HasScale || comp.HasOffset {
			scale := comp.Scale
			if !comp.HasScale {
				scale = 1
			}
			scaled = float64(value)/scale - comp.Offset
		}

		resolved := ResolvedField{Num: comp.TargetFieldNum, Name: name, Units: units, Value: scaled}
		if err := proc.ProcessField(mesgName, &resolved); err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// expandDeveloperField resolves a developer field. Developer field schemas
// never carry subfields, components, or enum overlays (spec §6); scale and
// offset are already applied by the time the value reaches here, in
// data.go's developer-field decode.
func expandDeveloperField(rf RawField) ResolvedField {
	name := rf.DevName
	if name == "" {
		name = profile.UnknownFieldName(rf.Num)
	}
	return ResolvedField{
		Num:       rf.Num,
		Name:      name,
		Units:     rf.DevUnits,
		Value:     rf.Value,
		None:      rf.None,
		Developer: true,
	}
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int8:
		return uint64(n), true
	case int16:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
