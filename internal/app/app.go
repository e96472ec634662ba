// Package app assembles the idmint process from config: storage, the shard
// authority, the partition issuer and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/project-idmint/internal/actor"
	"github.com/aevon-lab/project-idmint/internal/core/config"
	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/aevon-lab/project-idmint/internal/core/partition"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
	"github.com/aevon-lab/project-idmint/internal/core/storage/memory"
	pebblestore "github.com/aevon-lab/project-idmint/internal/core/storage/pebble"
	"github.com/aevon-lab/project-idmint/internal/core/storage/postgres"
	"github.com/aevon-lab/project-idmint/internal/counter"
	"github.com/aevon-lab/project-idmint/internal/encoding"
	"github.com/aevon-lab/project-idmint/internal/issuance"
	"github.com/aevon-lab/project-idmint/internal/migrations"
	"github.com/aevon-lab/project-idmint/internal/server"
	"github.com/aevon-lab/project-idmint/internal/sharder"
)

// App is a fully wired process. Close releases everything Build opened.
type App struct {
	Server *server.Server
	Issuer *counter.Issuer

	store   storage.Store
	closers []func() error
}

// Build opens storage and wires every component described by cfg.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	mode := cfg.Generator.ParsedShardMode()
	if err := storage.EnsureScheme(ctx, store, mode.Scheme()); err != nil {
		a.Close()
		return nil, err
	}

	actorOpts := actor.Options{
		MailboxSize: cfg.Generator.MailboxSize,
		IdleTimeout: cfg.Generator.IdleTimeoutDuration(),
	}

	var (
		authority sharder.Authority
		local     *sharder.Local
	)
	if mode == partition.ShardModeAuthority {
		authority, local, err = buildAuthority(cfg.Authority, store, actorOpts)
		if err != nil {
			a.Close()
			return nil, err
		}
		if local != nil {
			a.closers = append(a.closers, local.Close)
		}
	}

	var codec encoding.Codec
	if cfg.Generator.EncodingSalt == "" {
		slog.Warn("[App] No encoding salt configured, every issue request will fail",
			"setting", "generator.encoding_salt")
	} else {
		h, err := encoding.NewHashids(cfg.Generator.EncodingSalt, cfg.Generator.MinLength)
		if err != nil {
			a.Close()
			return nil, err
		}
		codec = h
	}

	iss, err := counter.New(store, authority, codec, counter.Config{
		MaxCount:  cfg.Generator.MaxCount,
		ShardMode: mode,
		Debug:     cfg.Generator.Debug,
		Actor:     actorOpts,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Issuer = iss
	a.closers = append(a.closers, iss.Close)

	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode)
	issuance.NewService(iss, codec, issuance.GeoResolver{TrustOverride: cfg.Server.TrustPartitionHeader}, cfg.Generator.Debug).
		RegisterRoutes(srv.Engine)
	if cfg.Authority.Expose && authority != nil {
		sharder.NewService(authority).RegisterRoutes(srv.Engine)
		slog.Info("[App] Serving shard authority to peers", "path", sharder.AllocatePath)
	}
	a.Server = srv

	slog.Info("[App] Initialized",
		"storage", cfg.Storage.Type,
		"shard_mode", mode,
		"authority", authorityLabel(cfg, mode),
		"max_count", iss.MaxCount(),
		"debug", cfg.Generator.Debug,
	)
	return a, nil
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "memory":
		slog.Warn("[App] Using in-memory storage, counters are lost on restart and ids will repeat")
		return memory.New(), nil
	case "pebble":
		fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
		if err != nil {
			return nil, &iderr.ConfigError{Setting: "storage.fsync", Reason: err.Error()}
		}
		return pebblestore.Open(pebblestore.Options{
			DataDir:       cfg.Path,
			Fsync:         fsync,
			FsyncInterval: cfg.FsyncIntervalDuration(),
		})
	case "postgres":
		db, err := postgres.Connect(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunMigrations(db, cfg.AutoMigrate); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return adapter, nil
	default:
		return nil, &iderr.ConfigError{Setting: "storage.type", Reason: fmt.Sprintf("unsupported storage type %q", cfg.Type)}
	}
}

// buildAuthority returns the authority and, for local mode, the actor to close.
func buildAuthority(cfg config.AuthorityConfig, store storage.Store, opts actor.Options) (sharder.Authority, *sharder.Local, error) {
	switch cfg.Mode {
	case "local":
		next, ok := store.(storage.NextShardStore)
		if !ok {
			return nil, nil, &iderr.ConfigError{Setting: "authority.mode", Reason: "storage backend cannot host a local authority"}
		}
		l := sharder.NewLocal(next, opts)
		return l, l, nil
	case "remote":
		return sharder.NewRemote(cfg.URL, cfg.TimeoutDuration()), nil, nil
	case "store":
		alloc, ok := store.(sharder.Authority)
		if !ok {
			return nil, nil, &iderr.ConfigError{Setting: "authority.mode", Reason: "storage backend has no shard sequence"}
		}
		return alloc, nil, nil
	default:
		return nil, nil, &iderr.ConfigError{Setting: "authority.mode", Reason: fmt.Sprintf("unknown authority mode %q", cfg.Mode)}
	}
}

func authorityLabel(cfg *config.Config, mode partition.ShardMode) string {
	if mode == partition.ShardModeHash {
		return "none"
	}
	return cfg.Authority.Mode
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx)
}

// Close releases components in reverse order of construction.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
