package app

import (
	"context"
	"fmt"

	"github.com/accountd/accountd/internal/platform/db"
	"github.com/accountd/accountd/internal/users"
)

type migratingStore interface {
	users.UserStore
	Migrate(ctx context.Context) error
}

// Store is the configured UserStore plus its connection cleanup.
type Store struct {
	users.UserStore
	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStore connects to the configured driver and ensures the schema exists.
func OpenStore(ctx context.Context, cfg *Config) (*Store, error) {
	var (
		store   migratingStore
		closeFn func()
	)
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		store, closeFn = users.NewPGStore(pool), pool.Close
	case StoreDriverSQLite:
		bunDB, err := db.NewSQLite(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		store, closeFn = users.NewBunStore(bunDB), func() { _ = bunDB.Close() }
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if err := store.Migrate(ctx); err != nil {
		closeFn()
		return nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
	}
	return &Store{UserStore: store, close: closeFn}, nil
}
