package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileStore keeps one JSON file per snapshot. Files are spread over
// subdirectories named by the first two hex digits of the name's hash.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps a payload with its metadata.
type fileEntry struct {
	Snapshot
	Data []byte `json:"data"`
}

// Put writes the snapshot atomically via a temporary file.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	snap, err := newSnapshot(name, data)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := json.Marshal(fileEntry{Snapshot: snap, Data: data})
	if err != nil {
		return Snapshot{}, err
	}

	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Snapshot{}, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return Snapshot{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Snapshot{}, err
	}
	return snap, nil
}

// Get reads a snapshot.
func (s *FileStore) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	entry, err := s.read(s.path(name))
	if os.IsNotExist(err) {
		return Snapshot{}, nil, notFound(name)
	}
	if err != nil {
		return Snapshot{}, nil, err
	}
	return entry.Snapshot, entry.Data, nil
}

func (s *FileStore) read(path string) (fileEntry, error) {
	var entry fileEntry
	raw, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, fmt.Errorf("read %s: %w", path, err)
	}
	return entry, nil
}

// List walks the store directory.
func (s *FileStore) List(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := s.read(path)
		if err != nil {
			return err
		}
		out = append(out, entry.Snapshot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Snapshot) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete removes a snapshot file.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// path converts a snapshot name to a file path.
func (s *FileStore) path(name string) string {
	hash := Digest([]byte(name))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
