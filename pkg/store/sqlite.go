package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates its schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		digest TEXT NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		data BLOB NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts a snapshot row.
func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	snap, err := newSnapshot(name, data)
	if err != nil {
		return Snapshot{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, id, digest, size, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			digest = excluded.digest,
			size = excluded.size,
			created_at = excluded.created_at,
			data = excluded.data
	`, snap.Name, snap.ID.String(), snap.Digest, snap.Size, snap.CreatedAt.UnixMilli(), data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, data *[]byte) (Snapshot, error) {
	var (
		snap    Snapshot
		id      string
		created int64
	)
	dest := []any{&snap.Name, &id, &snap.Digest, &snap.Size, &created}
	if data != nil {
		dest = append(dest, data)
	}
	if err := row.Scan(dest...); err != nil {
		return Snapshot{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: %w", snap.Name, err)
	}
	snap.ID = parsed
	snap.CreatedAt = time.UnixMilli(created).UTC()
	return snap, nil
}

// Get reads one snapshot row.
func (s *SQLiteStore) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, id, digest, size, created_at, data
		FROM snapshots WHERE name = ?
	`, name)
	var data []byte
	snap, err := scanSnapshot(row, &data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, notFound(name)
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, data, nil
}

// List returns metadata for every row without loading payloads.
func (s *SQLiteStore) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, id, digest, size, created_at
		FROM snapshots ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot row.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
