// Package store persists encoded graph snapshots under human-readable names.
//
// A [Store] holds opaque byte payloads, normally produced by the binary graph
// codec, together with [Snapshot] metadata. Backends:
//
//   - [FileStore]: one file per snapshot under a directory (CLI default)
//   - [MemoryStore]: in-process, for tests and the HTTP server
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: Redis hashes plus a name index set
//   - [MongoStore]: one MongoDB document per snapshot
//
// Use [Save] and [Load] to store graphs rather than raw bytes; Load verifies
// the payload digest before decoding.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// Snapshot describes one stored payload. ID changes on every Put, Name is the
// stable key.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Digest    string    `json:"digest"` // hex SHA-256 of the payload
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a named snapshot repository.
type Store interface {
	// Put stores data under name, replacing any snapshot with that name.
	Put(ctx context.Context, name string, data []byte) (Snapshot, error)

	// Get returns a snapshot and its payload. Returns NOT_FOUND if absent.
	Get(ctx context.Context, name string) (Snapshot, []byte, error)

	// List returns all snapshots sorted by name.
	List(ctx context.Context) ([]Snapshot, error)

	// Delete removes a snapshot. Returns NOT_FOUND if absent.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Digest computes the hex SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// newSnapshot validates name and builds metadata for data.
func newSnapshot(name string, data []byte) (Snapshot, error) {
	if err := errors.ValidateSnapshotName(name); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:        uuid.New(),
		Name:      name,
		Digest:    Digest(data),
		Size:      len(data),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "snapshot %q not found", name)
}
