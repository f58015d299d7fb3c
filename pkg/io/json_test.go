package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

func TestJSONRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	decoded, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	assertGraphsEqual(t, g, decoded)

	// JSON and binary agree on content.
	fromJSON, err := Encode(decoded)
	if err != nil {
		t.Fatal(err)
	}
	fromOrig, err := Encode(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fromJSON, fromOrig) {
		t.Error("binary encoding of the JSON round trip differs from the original")
	}
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleGraph(t), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{`"type": "color"`, `"value": "#ff8800"`, `"Task": 1`, `"Flow": 3`} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteJSON() output missing %s", want)
		}
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"syntax", `{"nodes": [`, errors.ErrCodeInvalidFormat},
		{"dangling default", `{"nodes": [], "edges": [], "styles": [], "defaults": {"node": {"Task": 99}}}`, errors.ErrCodeCorruptGraph},
		{"dangling node style", `{"nodes": [{"id": 1, "style": 4}], "edges": [], "styles": []}`, errors.ErrCodeCorruptGraph},
		{"unknown property type", `{"nodes": [], "edges": [], "styles": [{"id": 1, "properties": [{"name": "x", "type": "matrix", "value": 1}]}]}`, errors.ErrCodeCorruptGraph},
		{"bad color", `{"nodes": [], "edges": [], "styles": [{"id": 1, "properties": [{"name": "fill", "type": "color", "value": "red"}]}]}`, errors.ErrCodeCorruptGraph},
		{"duplicate default key", `{"nodes": [], "edges": [], "styles": [{"id": 1}, {"id": 2}], "defaults": {"node": {"Task": 1, "Task": 2}}}`, errors.ErrCodeCorruptGraph},
		{"default table not an object", `{"nodes": [], "edges": [], "styles": [], "defaults": {"edge": [1]}}`, errors.ErrCodeInvalidFormat},
		{"non-finite float", `{"nodes": [], "edges": [], "styles": [{"id": 1, "properties": [{"name": "opacity", "type": "float", "value": 1e999}]}]}`, errors.ErrCodeCorruptGraph},
		{"edge to missing node", `{"nodes": [{"id": 1}], "edges": [{"id": 1, "from": 1, "to": 2}], "styles": []}`, errors.ErrCodeCorruptGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadJSON(strings.NewReader(tt.input))
			if g != nil {
				t.Error("ReadJSON() returned a partial graph")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ReadJSON() code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestReadJSONDefaultsResolve(t *testing.T) {
	input := `{
	  "nodes": [{"id": 1, "meta_target": "Task"}],
	  "edges": [],
	  "styles": [{"id": 1, "meta_target": "Task", "name": "Default Task"}],
	  "defaults": {"node": {"Task": 1}}
	}`
	g, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	s := g.Resolve(style.KindNode, 1)
	if s == nil || s.Name != "Default Task" {
		t.Errorf("Resolve(node 1) = %+v, want Default Task", s)
	}
}
