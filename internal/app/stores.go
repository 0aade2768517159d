package app

import (
	"context"
	"fmt"

	"github.com/guttosm/freightrates/config"
	"github.com/guttosm/freightrates/internal/storage"
)

// Stores bundles the persistence handles for the configured driver.
type Stores struct {
	Prices    storage.PriceStore
	Locations storage.LocationStore
	Ping      func(ctx context.Context) error
	Close     func() error
}

// sqliteOpener is overridden in tests.
var sqliteOpener = storage.NewSQLite

// OpenStores connects the backend selected by cfg.Storage.Driver. The
// postgres schema is expected to be migrated already (--mode migrate); the
// sqlite store creates its own.
func OpenStores(cfg config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case "postgres", "":
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return &Stores{
			Prices:    storage.NewPriceStore(db),
			Locations: storage.NewLocationStore(db),
			Ping:      db.PingContext,
			Close:     db.Close,
		}, nil

	case "sqlite":
		s, err := sqliteOpener(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		return &Stores{
			Prices:    s,
			Locations: s,
			Ping:      s.DB().PingContext,
			Close:     s.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
