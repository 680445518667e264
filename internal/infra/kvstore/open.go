package kvstore

import (
	"context"
	"fmt"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Store is a KeyValueStore that owns a connection.
type Store interface {
	port.KeyValueStore
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string // memory, redis or sqlite
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return DialRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "sqlite":
		return OpenSQLite(opts.SQLitePath)
	}
	return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
}
