// Package repo stores calculation session snapshots. Snapshots are opaque
// byte blobs keyed by the host-supplied session code; Load returns nil data
// and no error when nothing is stored.
package repo

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"Drivecalc/internal/config"
)

type Repository interface {
	Save(ctx context.Context, code string, snapshot []byte) error
	Load(ctx context.Context, code string) ([]byte, error)
	Delete(ctx context.Context, code string) error
	io.Closer
}

// Open builds the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Store) (Repository, error) {
	log := logrus.WithField("driver", cfg.Driver)
	switch cfg.Driver {
	case config.DriverMemory, "":
		log.Info("sessions kept in memory")
		return NewMemorySnapshotRepository(cfg.TTL), nil
	case config.DriverSQLite:
		db, err := InitSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("sqlite store opened")
		return NewSQLiteSnapshotDB(db), nil
	case config.DriverPostgres:
		db, err := InitPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("postgres store connected")
		return NewPostgresSnapshotDB(db), nil
	case config.DriverRedis:
		r, err := NewRedisSnapshotRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.WithField("address", cfg.RedisAddr).Info("redis store connected")
		return r, nil
	}
	return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
}
