// Package store persists product records as documents and reads them back.
package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/config"
	"github.com/laxmi8801/data-extractor/internal/domain"
)

// Supported drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is a document store holding product records
type Store interface {
	domain.DocumentSink
	domain.ProductRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the configured store. Connection failures wrap
// domain.ErrStoreUnavailable. The caller owns the returned store and must
// Close it.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.L()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case DriverMongo:
		s, err = NewMongo(ctx, cfg.URI, cfg.Database, cfg.Collection)
	case DriverPostgres:
		var pg *PostgresStore
		pg, err = NewPostgres(ctx, cfg.URI)
		if err == nil {
			err = pg.Migrate(ctx)
			if err != nil {
				pg.Close(ctx)
			}
		}
		s = pg
	case DriverSQLite:
		var lite *SQLiteStore
		lite, err = NewSQLite(cfg.URI)
		if err == nil {
			err = lite.Migrate(ctx)
			if err != nil {
				lite.Close(ctx)
			}
		}
		s = lite
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("store.opened", zap.String("driver", cfg.Driver), zap.String("database", cfg.Database), zap.String("collection", cfg.Collection))
	return s, nil
}
