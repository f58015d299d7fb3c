package cli

import (
	"strconv"
	"strings"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// parseProperty parses a --prop flag value.
//
// The form is name=value or name:type=value. Without a type the value is
// inferred: true/false are bools, integers and decimals are numbers, #rrggbb
// and #rrggbbaa are colors, everything else is a string.
func parseProperty(s string) (string, style.Value, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", style.Value{}, errors.New(errors.ErrCodeInvalidInput, "property %q: want name=value", s)
	}
	name, typ, typed := strings.Cut(key, ":")
	if err := errors.ValidatePropertyName(name); err != nil {
		return "", style.Value{}, err
	}
	if !typed {
		return name, inferValue(raw), nil
	}

	t, err := style.ParseValueType(typ)
	if err != nil {
		return "", style.Value{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "property %q", name)
	}
	v, err := parseTyped(raw, t)
	if err != nil {
		return "", style.Value{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "property %q: %q is not a %s", name, raw, t)
	}
	return name, v, nil
}

func inferValue(raw string) style.Value {
	if raw == "true" || raw == "false" {
		return style.BoolValue(raw == "true")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return style.IntValue(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return style.FloatValue(f)
	}
	if c, err := style.ParseColor(raw); err == nil {
		return style.ColorValue(c)
	}
	return style.StringValue(raw)
}

func parseTyped(raw string, t style.ValueType) (style.Value, error) {
	switch t {
	case style.TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		return style.IntValue(n), err
	case style.TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		return style.FloatValue(f), err
	case style.TypeBool:
		b, err := strconv.ParseBool(raw)
		return style.BoolValue(b), err
	case style.TypeColor:
		c, err := style.ParseColor(raw)
		return style.ColorValue(c), err
	}
	return style.StringValue(raw), nil
}

// parseProperties parses repeated --prop flags in order.
func parseProperties(flags []string) (style.Properties, error) {
	var p style.Properties
	for _, f := range flags {
		name, v, err := parseProperty(f)
		if err != nil {
			return p, err
		}
		if err := p.Set(name, v); err != nil {
			return p, err
		}
	}
	return p, nil
}
