package store

import (
	"context"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	gio "github.com/matzehuels/stylegraph/pkg/io"
)

// Save encodes g in the binary format and stores it under name.
func Save(ctx context.Context, s Store, name string, g *graph.Graph) (Snapshot, error) {
	data, err := gio.Marshal(ctx, g, gio.FormatBinary)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Put(ctx, name, data)
}

// Load fetches a snapshot, verifies its digest and decodes it. A digest
// mismatch fails with CORRUPT_GRAPH.
func Load(ctx context.Context, s Store, name string) (*graph.Graph, Snapshot, error) {
	snap, data, err := s.Get(ctx, name)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if got := Digest(data); got != snap.Digest {
		return nil, snap, errors.New(errors.ErrCodeCorruptGraph,
			"snapshot %q digest mismatch: stored %s, computed %s", name, snap.Digest, got)
	}
	g, err := gio.Unmarshal(ctx, data, gio.FormatBinary)
	if err != nil {
		return nil, snap, err
	}
	return g, snap, nil
}
