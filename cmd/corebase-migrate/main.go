// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Corebase-migrate is a standalone operator CLI around the corebase migration
engine: the same Up/Down/Reset operations cmd/api runs automatically at
startup, exposed for manual use (inspecting what would run, reverting a bad
deploy, scaffolding a new migration file) without starting the HTTP server.

Usage:

	corebase-migrate up [toName]
	corebase-migrate down [toName]
	corebase-migrate reset [toName]
	corebase-migrate create <slug>

Configuration is read from the environment the same way cmd/api reads it
(internal/platform/config), so the two binaries stay in agreement about
which database they point at.
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corebase/corebase/internal/platform/config"
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/internal/platform/migration"
	"github.com/corebase/corebase/internal/platform/mongostore"
	pgstore "github.com/corebase/corebase/internal/platform/postgres"
	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
	"github.com/corebase/corebase/pkg/corebase/storage/document"
	"github.com/corebase/corebase/pkg/corebase/storage/relational"
)

var allTables = []string{
	"authorizations", "user_roles", "features", "roles",
	"product_tags", "tags", "products", "categories", "testitems",
	"refresh_tokens", "users", "organizations",
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "corebase-migrate",
		Short:         "Run and inspect corebase schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUpCmd(),
		newDownCmd(),
		newResetCmd(),
		newCreateCmd(),
	)
	return root
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up [toName]",
		Short: "Apply every pending migration (or up to and including toName)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, engine *corebase.Engine) error {
				return engine.Up(ctx, toNameArg(args))
			})
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [toName]",
		Short: "Revert the last applied migration (or back to and excluding toName)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, engine *corebase.Engine) error {
				return engine.Down(ctx, toNameArg(args))
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [toName]",
		Short: "Drop the whole schema and rerun every migration from scratch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, engine *corebase.Engine) error {
				return engine.Reset(ctx, toNameArg(args))
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <slug>",
		Short: "Scaffold a new timestamped .sql migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			path, err := scaffoldMigration(cfg.MigrationPath, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created", path)
			return nil
		},
	}
}

func toNameArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// withEngine builds the same migration engine cmd/api wires at startup
// (storage adapter + synthetic bootstrap + demo SQL file source) and hands
// it to fn, tearing the connection down afterward.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, engine *corebase.Engine) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var (
		migStore corebase.MigrationStore
		ddl      corebase.SQLExecutor
		dropper  corebase.SchemaDropper
		storage  corebase.Storage
	)

	switch cfg.StorageBackend {
	case "relational":
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		adapter := relational.NewAdapter(pool, schema.Registry)
		storage, ddl, dropper = adapter, adapter, adapter
		migStore = migration.NewRelationalStore(pool, allTables)

	case "document":
		db, client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return fmt.Errorf("connect to mongo: %w", err)
		}
		defer client.Disconnect(context.Background())
		adapter := document.NewAdapter(db)
		storage, dropper = adapter, adapter
		migStore = migration.NewDocumentStore(db, allTables)

	default:
		return fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if !cfg.MultiTenantEnabled && !corebase.IsSystemUserContextInitialized() {
		corebase.InitializeSystemUserContext(corebase.UserContext{})
	}

	synthetic := corebase.BuildSyntheticMigrations(corebase.SyntheticConfig{
		MultiTenantEnabled: cfg.MultiTenantEnabled,
		MetaOrgName:        cfg.MetaOrgName,
		MetaOrgCode:        cfg.MetaOrgCode,
		AdminEmail:         cfg.AdminEmail,
		AdminPasswordPlain: cfg.AdminPassword,
		HashPassword:       sec.HashPassword,
	}, ddl, dropper, storage)

	sources := []corebase.MigrationSource{synthetic}
	if cfg.StorageBackend == "relational" {
		sources = append(sources, corebase.FileMigrationSource{Dir: cfg.MigrationPath, Exec: ddl})
	}

	engine := corebase.NewEngine(migStore, sources...)
	return fn(ctx, engine)
}
