package io

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded wire field. Varint and fixed-width values land in v,
// length-delimited payloads in b.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

// fields iterates over the top-level fields of a message. Group-typed fields
// are skipped. Iteration stops after the first error.
func fields(b []byte) iter.Seq2[field, error] {
	return func(yield func(field, error) bool) {
		for len(b) > 0 {
			num, typ, n := protowire.ConsumeTag(b)
			if n < 0 {
				yield(field{}, fmt.Errorf("tag: %w", protowire.ParseError(n)))
				return
			}
			b = b[n:]

			f := field{num: num, typ: typ}
			switch typ {
			case protowire.VarintType:
				f.v, n = protowire.ConsumeVarint(b)
			case protowire.Fixed32Type:
				var v uint32
				v, n = protowire.ConsumeFixed32(b)
				f.v = uint64(v)
			case protowire.Fixed64Type:
				f.v, n = protowire.ConsumeFixed64(b)
			case protowire.BytesType:
				f.b, n = protowire.ConsumeBytes(b)
			default:
				n = protowire.ConsumeFieldValue(num, typ, b)
			}
			if n < 0 {
				yield(field{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n)))
				return
			}
			b = b[n:]

			if typ == protowire.StartGroupType {
				continue
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

func (f field) want(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

func (f field) int32() (int32, error) {
	if err := f.want(protowire.VarintType); err != nil {
		return 0, err
	}
	return int32(f.v), nil
}

func (f field) string() (string, error) {
	if err := f.want(protowire.BytesType); err != nil {
		return "", err
	}
	if !utf8.Valid(f.b) {
		return "", fmt.Errorf("field %d: invalid UTF-8", f.num)
	}
	return string(f.b), nil
}

func (f field) bytes() ([]byte, error) {
	if err := f.want(protowire.BytesType); err != nil {
		return nil, err
	}
	return f.b, nil
}

// int32s decodes a repeated int32 field in either packed or unpacked form.
func (f field) int32s() ([]int32, error) {
	if f.typ == protowire.VarintType {
		return []int32{int32(f.v)}, nil
	}
	if err := f.want(protowire.BytesType); err != nil {
		return nil, err
	}
	var out []int32
	for b := f.b; len(b) > 0; {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
		}
		out = append(out, int32(v))
		b = b[n:]
	}
	return out, nil
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendPacked[T ~int32](b []byte, num protowire.Number, ids []T) []byte {
	if len(ids) == 0 {
		return b
	}
	var packed []byte
	for _, id := range ids {
		packed = protowire.AppendVarint(packed, uint64(int64(id)))
	}
	return appendMessage(b, num, packed)
}
