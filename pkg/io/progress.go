package io

import "context"

// ProgressFunc receives codec progress. done counts the nodes, edges, groups
// and styles handled so far; total is the number the graph holds. The last
// call has done == total.
type ProgressFunc func(done, total int)

type progressKey struct{}

// WithProgress returns a context that makes [Marshal], [Unmarshal],
// [ImportFile] and [ExportFile] report progress to fn. Decoding reports while
// the parsed parts are assembled into a graph, so a payload that fails to
// parse reports nothing.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return fn
}

type progress struct {
	fn    ProgressFunc
	done  int
	total int
}

// tracker returns a progress counter over a's parts. It is nil-safe to step.
func (a *assembly) tracker(fn ProgressFunc) *progress {
	if fn == nil {
		return nil
	}
	return &progress{fn: fn, total: len(a.nodes) + len(a.edges) + len(a.groups) + len(a.styles)}
}

func (p *progress) step() {
	if p == nil {
		return
	}
	p.done++
	p.fn(p.done, p.total)
}
