// Command vault is the CLI surface (C10) over the three core engines:
// the streaming AEAD codec, the parallel compute fabric, and the sync
// reconciler. Built on github.com/spf13/cobra paired with
// github.com/spf13/viper (internal/config), adopted from the wider
// example pack since the teacher itself is an HTTP service with no CLI
// of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	vaultcache "github.com/prn-tf/vault/internal/cache"
	cachememory "github.com/prn-tf/vault/internal/cache/memory"
	cacheredis "github.com/prn-tf/vault/internal/cache/redis"
	"github.com/prn-tf/vault/internal/config"
	"github.com/prn-tf/vault/internal/lock"
	lockredis "github.com/prn-tf/vault/internal/lock/redis"
	"github.com/prn-tf/vault/internal/metrics"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/repository/sqlite"
	"github.com/prn-tf/vault/internal/sync"
	"github.com/prn-tf/vault/internal/verrors"
)

// runLockTTL bounds how long a mutating verb may hold the advisory
// run-lock before it is considered abandoned.
const runLockTTL = 10 * time.Minute

// app bundles everything a subcommand needs, built by bootstrap at the
// start of each subcommand's RunE and torn down by its deferred Close.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	db          *sqlite.DB
	files       repository.FileRepository
	devices     repository.DeviceRepository
	deviceCfgs  repository.DeviceConfigRepository
	fileDevices repository.FileDeviceRepository
	keys        repository.KeyRepository

	reconciler *sync.Reconciler
	hashCache  *vaultcache.HashCache
	locker     lock.Locker
	metrics    *metrics.SyncMetrics

	redisClient *cacheredis.Client
}

func newLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// bootstrap resolves configuration, opens the metadata store, and wires
// every repository, the hash cache, the run-lock, and the reconciler.
func bootstrap(cmd *cobra.Command) (*app, error) {
	logger := newLogger()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := sqlite.Open(cfg.DatabaseFile, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		files:       sqlite.NewFileRepository(db),
		devices:     sqlite.NewDeviceRepository(db),
		deviceCfgs:  sqlite.NewDeviceConfigRepository(db),
		fileDevices: sqlite.NewFileDeviceRepository(db),
		keys:        sqlite.NewKeyRepository(db),
		metrics:     metrics.New(),
	}
	a.reconciler = sync.New(a.files, a.devices, a.fileDevices, logger)

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cacheredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect hash cache / run-lock backend: %w", err)
		}
		a.redisClient = client
		a.hashCache = vaultcache.NewHashCache(cacheredis.NewCache(client))
		a.locker = lockredis.NewLocker(client.Raw, logger)
	} else {
		a.hashCache = vaultcache.NewHashCache(cachememory.NewCache())
		a.locker = lock.NewMemoryLocker()
	}
	a.reconciler.WithHashCache(a.hashCache)

	return a, nil
}

func (a *app) Close() error {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	return a.db.Close()
}

// storeLockKey is the run-lock key (§11.6): the absolute path of the
// metadata store file, so two invocations against different vaults never
// contend with each other.
func (a *app) storeLockKey() string {
	abs, err := filepath.Abs(a.cfg.DatabaseFile)
	if err != nil {
		return a.cfg.DatabaseFile
	}
	return abs
}

// withRunLock acquires the advisory run-lock before fn and releases it
// after, regardless of fn's outcome. Every mutating CLI verb wraps its
// body in this; read-only verbs never call it.
func (a *app) withRunLock(ctx context.Context, fn func() error) error {
	key := a.storeLockKey()
	acquired, err := a.locker.Acquire(ctx, key, runLockTTL)
	if err != nil {
		return fmt.Errorf("acquire run-lock: %w", err)
	}
	if !acquired {
		return &verrors.LockHeld{StorePath: key}
	}
	defer func() { _, _ = a.locker.Release(ctx, key) }()
	return fn()
}

// resolvePaths resolves the effective locked/unlocked paths for the
// current device: the per-device DeviceConfig overrides the config-file/
// flag-level default (spec.md §6).
func (a *app) resolvePaths(ctx context.Context) (locked, unlocked string, err error) {
	device, err := a.devices.FindOrCreateCurrent(ctx)
	if err != nil {
		return "", "", err
	}
	locked, unlocked = a.cfg.LockedPath, a.cfg.UnlockedPath

	cfg, err := a.deviceCfgs.Get(ctx, device.ID)
	if err != nil && err != verrors.ErrNotFound {
		return "", "", err
	}
	if cfg != nil {
		if cfg.HasLockedPath() {
			locked = *cfg.LockedPath
		}
		if cfg.HasUnlockedPath() {
			unlocked = *cfg.UnlockedPath
		}
	}

	if locked == "" {
		return "", "", &verrors.ConfigMissing{Field: "locked_path"}
	}
	if unlocked == "" {
		return "", "", &verrors.ConfigMissing{Field: "unlocked_path"}
	}
	return locked, unlocked, nil
}
