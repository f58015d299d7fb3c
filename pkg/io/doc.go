// Package io encodes and decodes styled graphs.
//
// # Overview
//
// Two codecs share one validation path:
//
//   - Binary ([Encode], [Decode]): the protobuf wire format, written with
//     protowire so no generated code is needed. This is the persisted form.
//   - JSON ([WriteJSON], [ReadJSON]): a readable interchange form for tools
//     and hand editing.
//
// [ImportFile] and [ExportFile] pick the codec from the file extension
// (".sgb" for binary, ".json" for JSON).
//
// # Binary Layout
//
// Field numbers are stable:
//
//	Graph        { 1 topology Topology, 2 style_manager StyleManager }
//	Topology     { 1 nodes Node[], 2 edges Edge[], 3 groups TopoGroup[] }
//	Node         { 1 base TopoNode, 2 style_id int32 }
//	Edge         { 1 base TopoEdge, 2 style_id int32 }
//	TopoNode     { 1 id, 2 meta_target, 3 label, 4 meta map<string,string> }
//	TopoEdge     { 1 id, 2 src, 3 dst, 4 meta_target, 5 label }
//	TopoGroup    { 1 id, 2 label, 3 node_ids packed }
//	StyleManager { 1 style_count, 2 styles Style[],
//	               3 default_node_styles map<string,int32>,
//	               4 default_edge_styles map<string,int32> }
//	Style        { 1 id, 2 meta_target, 3 name, 4 target,
//	               5 properties Property[], 6 node_ids packed, 7 edge_ids packed }
//	Property     { 1 name, oneof value { 2 string, 3 sint64, 4 double,
//	               5 bool, 6 color fixed32 } }
//
// A style_id of 0 means the entity has no explicit style.
//
// # Determinism
//
// Encoding the same graph twice yields identical bytes. Repeated fields keep
// insertion order and map entries are sorted by key.
//
// # Validation
//
// Decoders skip unknown fields and ignore the transmitted style count. Any
// malformed field, duplicate id or dangling reference fails the whole decode
// with CORRUPT_GRAPH:
//
//	g, err := io.Decode(data)
//	if errors.Is(err, errors.ErrCodeCorruptGraph) {
//	    // discard data
//	}
//
// # Concurrency
//
// Encoding reads the graph without locking. Callers sharing a graph across
// goroutines must hold their own lock while encoding.
package io
