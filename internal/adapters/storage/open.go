// Package storage implements the persisted session key/value store on
// memory, SQL (sqlite3 or postgres) and Redis backends.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/taskboard/client/internal/infrastructure/config"
	"github.com/taskboard/client/internal/ports"
)

// Store is a session storage that holds a connection.
type Store interface {
	ports.SessionStorage
	io.Closer
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendSQLite, config.BackendPostgres:
		dialect := DialectSQLite
		if cfg.Backend == config.BackendPostgres {
			dialect = DialectPostgres
		}
		s, err := OpenSQL(ctx, dialect, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		s, err := NewRedisStorage(ctx, cfg.Redis.GetAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
