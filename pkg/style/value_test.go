package style

import (
	"math"
	"slices"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		str     string
		wantErr bool
	}{
		{in: "#ff8800", want: 0xff8800ff, str: "#ff8800"},
		{in: "#ff880080", want: 0xff880080, str: "#ff880080"},
		{in: "#FFFFFF", want: 0xffffffff, str: "#ffffff"},
		{in: "ff8800", wantErr: true},
		{in: "#ff88", wantErr: true},
		{in: "#gg0000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if c != tt.want {
				t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, uint32(c), uint32(tt.want))
			}
			if c.String() != tt.str {
				t.Errorf("String() = %q, want %q", c.String(), tt.str)
			}
		})
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		typ  ValueType
		str  string
	}{
		{"string", "rounded", TypeString, "rounded"},
		{"color string", "#00ff00", TypeColor, "#00ff00"},
		{"hash but not color", "#tag", TypeString, "#tag"},
		{"int", 3, TypeInt, "3"},
		{"int64", int64(-7), TypeInt, "-7"},
		{"float", 1.5, TypeFloat, "1.5"},
		{"bool", true, TypeBool, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.in)
			if err != nil {
				t.Fatalf("ValueOf(%v) error = %v", tt.in, err)
			}
			if v.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", v.Type(), tt.typ)
			}
			if v.String() != tt.str {
				t.Errorf("String() = %q, want %q", v.String(), tt.str)
			}
		})
	}

	if _, err := ValueOf([]int{1}); err == nil {
		t.Error("ValueOf(slice) should fail")
	}
}

func TestValueAccessors(t *testing.T) {
	if f, ok := IntValue(4).AsFloat(); !ok || f != 4 {
		t.Errorf("IntValue.AsFloat() = %v, %v", f, ok)
	}
	if _, ok := StringValue("x").AsInt(); ok {
		t.Error("StringValue.AsInt() should fail")
	}
	if (Value{}).IsValid() {
		t.Error("zero Value should be invalid")
	}
	if !FloatValue(0.5).Equal(FloatValue(0.5)) || FloatValue(0.5).Equal(StringValue("0.5")) {
		t.Error("Equal mismatch")
	}
	for _, typ := range []ValueType{TypeString, TypeInt, TypeFloat, TypeBool, TypeColor} {
		got, err := ParseValueType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseValueType(%q) = %v, %v", typ.String(), got, err)
		}
	}
}

func TestProperties(t *testing.T) {
	var p Properties

	_ = p.Set("fill", StringValue("red"))
	_ = p.Set("border.width", IntValue(2))
	_ = p.Set("shape", StringValue("box"))
	_ = p.Set("fill", StringValue("blue")) // keeps position

	if got := p.Keys(); !slices.Equal(got, []string{"fill", "border.width", "shape"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := p.Get("fill"); v.String() != "blue" {
		t.Errorf("fill = %v, want blue", v)
	}

	if err := p.Set("bad name", IntValue(1)); err == nil {
		t.Error("Set with invalid name should fail")
	}
	if err := p.Set("empty", Value{}); err == nil {
		t.Error("Set with invalid value should fail")
	}
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := p.Set("opacity", FloatValue(f)); err == nil {
			t.Errorf("Set(%v) should fail", f)
		}
	}

	c := p.Clone()
	if !p.Delete("border.width") || p.Delete("border.width") {
		t.Error("Delete should report presence once")
	}
	if c.Len() != 3 || p.Len() != 2 {
		t.Errorf("clone not independent: clone %d, orig %d", c.Len(), p.Len())
	}
	if p.Equal(&c) {
		t.Error("Equal should detect removed key")
	}

	var keys []string
	for k := range c.All() {
		keys = append(keys, k)
		if k == "border.width" {
			break
		}
	}
	if !slices.Equal(keys, []string{"fill", "border.width"}) {
		t.Errorf("All() early stop = %v", keys)
	}
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindNode, KindEdge} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("group"); err == nil {
		t.Error("ParseKind(group) should fail")
	}
}
