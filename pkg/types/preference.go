package types

import (
	"fmt"
	"strconv"
)

// ValueType is the serialization type an OS preference backend expects
type ValueType string

const (
	TypeBool   ValueType = "bool"
	TypeInt    ValueType = "int"
	TypeString ValueType = "string"

	// TypeUnsupported marks a value of a kind the preference store cannot write
	// (floats, arrays, tables). It never equals anything.
	TypeUnsupported ValueType = "unsupported"
)

// ParseValueType maps a document type name to a ValueType.
func ParseValueType(s string) (ValueType, bool) {
	switch s {
	case "bool", "boolean":
		return TypeBool, true
	case "int", "integer":
		return TypeInt, true
	case "string":
		return TypeString, true
	}
	return "", false
}

// PreferenceKey identifies a preference by its defaults domain and key
type PreferenceKey struct {
	Domain string
	Key    string
}

func (k PreferenceKey) String() string {
	return k.Domain + " " + k.Key
}

// Less orders keys by domain, then key.
func (k PreferenceKey) Less(other PreferenceKey) bool {
	if k.Domain != other.Domain {
		return k.Domain < other.Domain
	}
	return k.Key < other.Key
}

// PreferenceValue is a typed scalar preference value
type PreferenceValue struct {
	Type ValueType
	Bool bool
	Int  int64
	Str  string
}

// BoolValue returns a boolean preference value.
func BoolValue(b bool) PreferenceValue {
	return PreferenceValue{Type: TypeBool, Bool: b}
}

// IntValue returns an integer preference value.
func IntValue(i int64) PreferenceValue {
	return PreferenceValue{Type: TypeInt, Int: i}
}

// StringValue returns a string preference value.
func StringValue(s string) PreferenceValue {
	return PreferenceValue{Type: TypeString, Str: s}
}

// ValueOf converts a decoded document value into a PreferenceValue. Values the
// store cannot hold come back as TypeUnsupported with their printed form.
func ValueOf(v interface{}) PreferenceValue {
	switch val := v.(type) {
	case bool:
		return BoolValue(val)
	case int64:
		return IntValue(val)
	case int:
		return IntValue(int64(val))
	case string:
		return StringValue(val)
	default:
		return PreferenceValue{Type: TypeUnsupported, Str: fmt.Sprint(v)}
	}
}

// Equal compares two values with type awareness. Values of the same type compare
// by value. A bool and an int are equal only when the int is 0 or 1 and matches
// the bool, since the preference store reports booleans written with -int that
// way. Every other cross-type pair is unequal.
func (v PreferenceValue) Equal(other PreferenceValue) bool {
	if v.Type == TypeUnsupported || other.Type == TypeUnsupported {
		return false
	}

	if v.Type == other.Type {
		switch v.Type {
		case TypeBool:
			return v.Bool == other.Bool
		case TypeInt:
			return v.Int == other.Int
		case TypeString:
			return v.Str == other.Str
		}
		return false
	}

	b, i := v, other
	if b.Type == TypeInt {
		b, i = i, b
	}
	if b.Type != TypeBool || i.Type != TypeInt {
		return false
	}
	switch i.Int {
	case 0:
		return !b.Bool
	case 1:
		return b.Bool
	}
	return false
}

func (v PreferenceValue) String() string {
	switch v.Type {
	case TypeBool:
		return strconv.FormatBool(v.Bool)
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeString:
		return strconv.Quote(v.Str)
	}
	return v.Str
}

// Preference is a desired preference setting
type Preference struct {
	Key PreferenceKey

	// Type is the type the backend expects for this key
	Type ValueType

	// Value is the desired value as written in the document. Its type may
	// disagree with Type, in which case applying it fails.
	Value PreferenceValue

	// Restart names an application to restart after the value is written
	Restart string

	// Label is the document name of the setting, e.g. "dock.orientation"
	Label string
}

// TypeMatches reports whether the desired value has the type the backend expects.
func (p Preference) TypeMatches() bool {
	return p.Value.Type == p.Type
}

// Name returns the document label when known, or the key.
func (p Preference) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Key.String()
}
