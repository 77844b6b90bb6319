package store

import (
	"context"
	"fmt"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBrowser  = "browser"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Path        string
	PostgresDSN string
	Browser     BrowserOptions
}

// Open returns the Store for opts.Backend. An empty backend means SQLite.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		s, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		s, err := OpenPostgres(opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBrowser:
		s, err := OpenBrowser(ctx, opts.Browser)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", opts.Backend)
	}
}
