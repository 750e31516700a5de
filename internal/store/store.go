// Package store provides the durable key/value storage used by the catalog
// caches, the search history and the favorites list.
//
// All values are strings. Callers must tolerate write failures: a full store
// returns ErrQuotaExceeded and keeps the previous value.
package store

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned by Set when the write would exceed the byte quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a synchronous string key/value store
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	Close() error
}

// Clearer is implemented by stores that can drop every key
type Clearer interface {
	Clear() error
}

// Backend names accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// quotaError reports the attempted size against the limit
func quotaError(key string, size, limit int64) error {
	return fmt.Errorf("set %q: %d bytes over limit of %d: %w", key, size, limit, ErrQuotaExceeded)
}

// entrySize is the accounted size of a single entry
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// Options selects and configures a backend for Open
type Options struct {
	Backend  string
	Path     string // SQLite database file
	MaxBytes int64  // Quota for sqlite and memory backends, 0 = unlimited
	Redis    RedisOptions
}

// Open creates the Store named by opts.Backend. An empty backend means sqlite.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		s, err := NewSQLite(opts.Path, opts.MaxBytes)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemory(opts.MaxBytes), nil
	case BackendRedis:
		r, err := NewRedis(opts.Redis)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
