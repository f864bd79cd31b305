package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natah-genesis/portfolio-api/config"
	httpapi "github.com/natah-genesis/portfolio-api/internal/api/http"
	"github.com/natah-genesis/portfolio-api/internal/projects/repository"
)

// Store is an opened project store with its health probe and cleanup.
type Store struct {
	repository.Store
	Probe httpapi.StoreProbe
	Close func() error
}

// OpenStore builds the backend selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.StoreFile:
		fs := repository.NewFileStore(cfg.DataFile)
		return &Store{
			Store: fs,
			Probe: func(ctx context.Context) error {
				return checkDataDir(filepath.Dir(fs.Path()))
			},
			Close: func() error { return nil },
		}, nil

	case config.StoreRedis:
		client, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Store: repository.NewRedisStore(client),
			Probe: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close: client.Close,
		}, nil

	case config.StorePostgres:
		db, err := OpenDB(ctx, DBOptions{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{
			Store: pg,
			Probe: db.PingContext,
			Close: db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// checkDataDir reports a missing directory as healthy; the first write creates it.
func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
