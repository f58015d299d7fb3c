// Package style provides the style repository of a styled graph.
//
// # Overview
//
// A [Style] is a named, identified bag of visual properties (fill color,
// border width, shape ...) together with the set of topology nodes and edges
// it currently applies to. A [Manager] owns all styles of one graph plus two
// default tables, one for nodes and one for edges, mapping a meta-target
// (the semantic type of an entity, such as "Task") to a style id.
//
// # Resolution
//
// [Manager.Resolve] computes the effective style of an [Entity]:
//
//  1. its explicitly assigned style, when set and still present
//  2. otherwise the default style registered for its meta-target
//  3. otherwise [NoStyle]
//
// NoStyle is not an error. Hosts are expected to have a built-in fallback
// look for unstyled entities.
//
// # Errors
//
// Repository operations return coded errors from package errors:
// DUPLICATE_ID from [Manager.AddStyle], NOT_FOUND for unknown ids, and
// IN_USE_AS_DEFAULT from [Manager.RemoveStyle] when a default entry still
// points at the style. All of them leave the Manager unchanged and are
// recoverable by retrying with corrected arguments.
//
// # Change notification
//
// Every mutation emits a [ChangeEvent] to the listeners registered with
// [Manager.Subscribe]. Rendering layers subscribe instead of polling:
//
//	cancel := m.Subscribe(func(ev style.ChangeEvent) {
//	    if ev.Type == style.EventStyleUpdated {
//	        repaint(ev.StyleID)
//	    }
//	})
//	defer cancel()
//
// Operations that change nothing (detaching an absent id, clearing a missing
// default) emit nothing.
//
// # Handles
//
// Style ids are plain integers and can dangle once a style is removed.
// [Manager.Handle] returns a generation-checked [Handle]; [Manager.Lookup]
// reports STALE_HANDLE when the style behind it has been removed, even if
// the id was reused afterwards.
//
// # Concurrency
//
// Manager is designed for single-threaded use on a host's event loop. It has
// no internal locking; share it across goroutines only under an external
// mutex.
package style
