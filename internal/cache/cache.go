// Package cache stores serialized API responses for a fixed TTL.
// Only successful responses are ever written.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Zachkp/zach-dev/internal/config"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// ErrUnknownDriver is returned by New for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown cache driver")

// Store is a byte-oriented TTL cache.
type Store interface {
	// Get returns the value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// New builds the Store selected by cfg.Driver. db backs the sqlite driver.
func New(cfg config.CacheConfig, db *sql.DB) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLite(db), nil
	case DriverRedis:
		client, err := NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, DefaultPrefix), nil
	case DriverNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Close() error { return nil }
