package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// ValueType identifies the dynamic type held by a [Value].
type ValueType uint8

const (
	TypeInvalid ValueType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeColor
)

var valueTypeNames = map[ValueType]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeColor:   "color",
}

func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// ParseValueType is the inverse of ValueType.String.
func ParseValueType(s string) (ValueType, error) {
	for t, name := range valueTypeNames {
		if t != TypeInvalid && name == s {
			return t, nil
		}
	}
	return TypeInvalid, errors.New(errors.ErrCodeInvalidFormat, "unknown value type %q", s)
}

// Color is a packed 0xRRGGBBAA color.
type Color uint32

// RGBA builds a Color from its components.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". Colors without an alpha
// component are opaque.
func ParseColor(s string) (Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid color %q", s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color(v), nil
}

// String formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) String() string {
	if c&0xff == 0xff {
		return fmt.Sprintf("#%06x", uint32(c)>>8)
	}
	return fmt.Sprintf("#%08x", uint32(c))
}

// Value is a typed property value. The zero Value is invalid.
type Value struct {
	typ ValueType
	s   string
	n   int64
	f   float64
	b   bool
	c   Color
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{typ: TypeString, s: s} }

// IntValue returns an integer Value.
func IntValue(n int64) Value { return Value{typ: TypeInt, n: n} }

// FloatValue returns a floating point Value.
func FloatValue(f float64) Value { return Value{typ: TypeFloat, f: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{typ: TypeBool, b: b} }

// ColorValue returns a color Value.
func ColorValue(c Color) Value { return Value{typ: TypeColor, c: c} }

// ValueOf converts a decoded document scalar into a Value. Strings that parse
// as "#rrggbb[aa]" colors become color values.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		if strings.HasPrefix(x, "#") {
			if c, err := ParseColor(x); err == nil {
				return ColorValue(c), nil
			}
		}
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint64:
		return IntValue(int64(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case Color:
		return ColorValue(x), nil
	}
	return Value{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported property value %T", v)
}

// Type returns the dynamic type of the value.
func (v Value) Type() ValueType { return v.typ }

// IsValid reports whether the value holds data.
func (v Value) IsValid() bool { return v.typ != TypeInvalid }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.typ == TypeString }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.n, v.typ == TypeInt }

// AsFloat returns the number held by v. Integers are converted.
func (v Value) AsFloat() (float64, bool) {
	switch v.typ {
	case TypeFloat:
		return v.f, true
	case TypeInt:
		return float64(v.n), true
	}
	return 0, false
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

// AsColor returns the color held by v.
func (v Value) AsColor() (Color, bool) { return v.c, v.typ == TypeColor }

// Interface returns the value as a plain Go scalar (Color for colors).
func (v Value) Interface() any {
	switch v.typ {
	case TypeString:
		return v.s
	case TypeInt:
		return v.n
	case TypeFloat:
		return v.f
	case TypeBool:
		return v.b
	case TypeColor:
		return v.c
	}
	return nil
}

// String formats the value for display and for DOT attributes.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.s
	case TypeInt:
		return strconv.FormatInt(v.n, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeColor:
		return v.c.String()
	}
	return "<invalid>"
}

// Equal reports whether two values have the same type and content.
func (v Value) Equal(o Value) bool { return v == o }
