package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/account"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/shop"
	"github.com/nikolayk812/storefront/internal/writeback"
	"github.com/sirupsen/logrus"
)

// Options configure Open.
type Options struct {
	ConfigPath string
	Config     *config.Config // overrides ConfigPath when set
	LogOutput  io.Writer      // stderr when nil
}

type App struct {
	Config config.Config
	Log    *logrus.Logger

	// DeviceID namespaces rows in the shared Postgres table; uuid.Nil for
	// device-local drivers.
	DeviceID uuid.UUID

	Store   port.KVStore
	Shop    *shop.Manager
	Catalog *catalog.Client
	Account *account.Service

	writer *writeback.Writer
	pool   *pgxpool.Pool
}

// Open builds every component and hydrates the shopping state. A failed
// hydration is logged and does not fail Open.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, opts.LogOutput)
	if err != nil {
		return nil, fmt.Errorf("logging.New: %w", err)
	}

	a := &App{Config: cfg, Log: log}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.writer = writeback.New(a.Store,
		writeback.WithLogger(logging.Component(log, "writeback")),
		writeback.WithTimeout(cfg.Storage.WriteTimeout),
		writeback.WithRetries(cfg.Storage.WriteRetries),
	)

	a.Shop = shop.New(a.Store,
		shop.WithLogger(logging.Component(log, "shop")),
		shop.WithWriter(a.writer),
		shop.WithRecentLimit(cfg.RecentlyViewedLimit),
		shop.WithCurrency(cfg.Currency),
	)

	a.Catalog, err = catalog.NewClient(cfg.BaseURL,
		catalog.WithLogger(logging.Component(log, "catalog")),
		catalog.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		a.release()
		return nil, fmt.Errorf("catalog.NewClient: %w", err)
	}

	a.Account, err = account.New(a.Catalog, a.Store, account.WithLogger(logging.Component(log, "account")))
	if err != nil {
		a.release()
		return nil, fmt.Errorf("account.New: %w", err)
	}

	if err := a.Shop.Initialize(ctx); err != nil {
		logging.Component(log, "app").WithError(err).Warn("shopping state started empty")
	}

	return a, nil
}

// Close waits for queued writes, bounded by ctx, and releases the store.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}

	var errs []error
	if a.Shop != nil {
		if err := a.Shop.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shop.Close: %w", err))
		}
	}
	if a.writer != nil {
		if err := a.writer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("writer.Close: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

func resolveConfig(opts Options) (config.Config, error) {
	if opts.Config != nil {
		return *opts.Config, nil
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func (a *App) openStore(ctx context.Context) error {
	storage := a.Config.Storage
	log := logging.Component(a.Log, "app").WithField("driver", storage.Driver)

	switch storage.Driver {
	case config.DriverMemory:
		a.Store = repository.NewMemory()

	case config.DriverFile:
		store, err := repository.NewFile(storage.Dir)
		if err != nil {
			return fmt.Errorf("repository.NewFile: %w", err)
		}
		a.Store = store

	case config.DriverPostgres:
		deviceID, err := resolveDeviceID(storage)
		if err != nil {
			return err
		}

		pool, err := pgxpool.New(ctx, storage.DSN)
		if err != nil {
			return fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := migrations.Up(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("migrations.Up: %w", err)
		}

		store, err := repository.NewKV(pool, deviceID)
		if err != nil {
			pool.Close()
			return fmt.Errorf("repository.NewKV: %w", err)
		}
		a.DeviceID, a.pool, a.Store = deviceID, pool, store
		log = log.WithField("device_id", deviceID)

	default:
		return fmt.Errorf("unknown storage driver %q", storage.Driver)
	}

	log.Debug("store opened")
	return nil
}

func (a *App) release() {
	if a.writer != nil {
		_ = a.writer.Close(context.Background())
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// resolveDeviceID returns the configured device id, or the one kept in the
// data directory, generating and saving a new one when neither exists.
func resolveDeviceID(storage config.Storage) (uuid.UUID, error) {
	if storage.DeviceID != "" {
		id, err := uuid.Parse(storage.DeviceID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse device_id: %w", err)
		}
		return id, nil
	}

	path := storage.DeviceIDPath()
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		id, err := uuid.Parse(strings.TrimSpace(string(raw)))
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return id, nil
	case !errors.Is(err, os.ErrNotExist):
		return uuid.Nil, fmt.Errorf("read device id: %w", err)
	}

	id := uuid.New()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return uuid.Nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id.String()+"\n"), 0o600); err != nil {
		return uuid.Nil, fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}
