package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`     // directory (file) or database file (sqlite)
	URL      string `toml:"url"`      // redis or mongo connection string
	Database string `toml:"database"` // mongo database name
}

// Open creates the configured backend, wrapped with [Instrument].
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendFile, "":
		s, err = NewFileStore(cfg.Path)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendSQLite:
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "snapshots.db")
		}
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			s, err = NewSQLiteStore(path)
		}
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.URL)
	case BackendMongo:
		db := cfg.Database
		if db == "" {
			db = "stylegraph"
		}
		s, err = NewMongoStore(ctx, cfg.URL, db)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		code := errors.ErrCodeInternal
		if cfg.Backend == BackendRedis || cfg.Backend == BackendMongo {
			code = errors.ErrCodeNetwork
		}
		return nil, errors.Wrap(code, err, "open %s store", backendName(cfg.Backend))
	}
	return Instrument(s, backendName(cfg.Backend)), nil
}

func backendName(b string) string {
	if b == "" {
		return BackendFile
	}
	return b
}
