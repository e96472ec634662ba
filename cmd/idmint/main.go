package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aevon-lab/project-idmint/internal/app"
	corecfg "github.com/aevon-lab/project-idmint/internal/core/config"
	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
	"github.com/aevon-lab/project-idmint/internal/core/storage/postgres"
	"github.com/aevon-lab/project-idmint/internal/encoding"
	"github.com/aevon-lab/project-idmint/internal/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, logLevel string

	rootCmd := &cobra.Command{
		Use:          "idmint",
		Short:        "Distributed unique id issuer",
		Long:         "idmint issues short, unique, non-sequential-looking ids from per-partition counters.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("IDMINT_CONFIG"), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")

	load := func() (*corecfg.Config, error) {
		cfg, err := corecfg.Load(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Generator.Debug && logLevel == "info" {
			_ = setupLogger("debug")
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newDecodeCmd(load),
		newComposeCmd(),
		newMigrateCmd(load),
		newConfigCmd(load),
	)
	return rootCmd
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
	return nil
}

type loader func() (*corecfg.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP id issuer",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			slog.Info("Loaded config", "config", cfg.Redacted())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					slog.Error("Shutdown error", "error", err)
				}
				slog.Info("Shutdown complete")
			}()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return a.Run(gctx) })
			return g.Wait()
		},
	}
}

func newDecodeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <id>",
		Short: "Decode an encoded id into its numeric value and fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			codec, err := encoding.NewHashids(cfg.Generator.EncodingSalt, cfg.Generator.MinLength)
			if err != nil {
				return err
			}
			id, err := codec.Decode(args[0])
			if err != nil {
				return err
			}
			p := idlayout.Decompose(id)
			fmt.Fprintf(cmd.OutOrStdout(), "id=%d counter=%d shard=%d slot=%d\n", id, p.Counter, p.Shard, p.Slot)
			return nil
		},
	}
}

func newComposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose <counter> <shard> <slot>",
		Short: "Compose a numeric id from its fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields [3]uint64
			for i, a := range args {
				v, err := strconv.ParseUint(a, 10, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				fields[i] = v
			}
			if fields[1] > idlayout.MaxShard || fields[2] > idlayout.MaxSlot {
				return errors.New("shard must be < 512 and slot < 128")
			}
			id, err := idlayout.Compose(fields[0], uint16(fields[1]), uint8(fields[2]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newMigrateCmd(load loader) *cobra.Command {
	migrateCmd := &cobra.Command{Use: "migrate", Short: "PostgreSQL schema migrations"}

	withDB := func(fn func(cfg *corecfg.Config, cmd *cobra.Command, db *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Storage.Type != "postgres" {
				return fmt.Errorf("migrations apply to postgres storage only, configured type is %q", cfg.Storage.Type)
			}
			db, err := postgres.Connect(cfg.Storage.DSN, 2, 1)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(cfg, cmd, db)
		}
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(_ *corecfg.Config, _ *cobra.Command, db *sql.DB) error {
				return migrations.RunMigrations(db, true)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withDB(func(_ *corecfg.Config, _ *cobra.Command, db *sql.DB) error {
				return migrations.Rollback(db)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			RunE: withDB(func(_ *corecfg.Config, cmd *cobra.Command, db *sql.DB) error {
				v, dirty, err := migrations.Version(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			}),
		},
	)
	return migrateCmd
}

func newConfigCmd(load loader) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return configCmd
}
