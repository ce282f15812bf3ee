// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Api is the entry point for the corebase demo HTTP API server.

The server exercises corebase end to end over a small set of demo entities
(organization, account, product, testitem), wired against either a
PostgreSQL or MongoDB storage backend depending on STORAGE_BACKEND.

Usage:

	go run cmd/api/main.go [flags]

The flags/environment variables are:

	SERVER_PORT       Port to listen on (default: 8080)
	ENVIRONMENT       deployment environment (development, production)
	STORAGE_BACKEND   "relational" or "document" (default: relational)
	DATABASE_URL      Postgres connection string (required for relational)
	MONGO_URI         Mongo connection string (required for document)
	REDIS_URL         Redis connection string (required)

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres/Mongo and Redis.
 4. Migration: Run the corebase migration engine (synthetic + file sources).
 5. Wiring: Inject dependencies into demo entity services/controllers.
 6. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebase/corebase/internal/api"
	"github.com/corebase/corebase/internal/demo/account"
	"github.com/corebase/corebase/internal/demo/authorization"
	"github.com/corebase/corebase/internal/demo/feature"
	"github.com/corebase/corebase/internal/demo/organization"
	"github.com/corebase/corebase/internal/demo/product"
	"github.com/corebase/corebase/internal/demo/role"
	"github.com/corebase/corebase/internal/demo/testitem"
	"github.com/corebase/corebase/internal/platform/authn"
	"github.com/corebase/corebase/internal/platform/config"
	"github.com/corebase/corebase/internal/platform/constants"
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/internal/platform/migration"
	"github.com/corebase/corebase/internal/platform/mongostore"
	pgstore "github.com/corebase/corebase/internal/platform/postgres"
	redisstore "github.com/corebase/corebase/internal/platform/redis"
	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
	"github.com/corebase/corebase/pkg/corebase/storage/document"
	"github.com/corebase/corebase/pkg/corebase/storage/relational"
)

// allTables lists every table name the migration engine's
// bookkeeping store (and Reset) must know about, leaf-first where foreign
// keys matter.
var allTables = []string{
	"authorizations", "user_roles", "features", "roles",
	"product_tags", "tags", "products", "categories", "testitems",
	"refresh_tokens", "users", "organizations",
}

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", "corebase"))
	slog.SetDefault(log)

	log.Info("corebase_service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "corebase"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. Storage backend (relational or document)
	var (
		storage      corebase.Storage
		migStore     corebase.MigrationStore
		ddl          corebase.SQLExecutor
		dropper      corebase.SchemaDropper
		pool         *pgxpool.Pool
		mongoClient  *mongo.Client
		checkStorage func() error
	)

	switch cfg.StorageBackend {
	case "relational":
		pgPool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		pool = pgPool
		adapter := relational.NewAdapter(pgPool, schema.Registry)
		storage = adapter
		ddl = adapter
		dropper = adapter
		migStore = migration.NewRelationalStore(pgPool, allTables)
		checkStorage = func() error { return pgstore.Ping(context.Background(), pgPool) }

	case "document":
		db, client, err := mongostore.Connect(startupCtx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return fmt.Errorf("connect to mongo: %w", err)
		}
		mongoClient = client
		adapter := document.NewAdapter(db)
		storage = adapter
		dropper = adapter
		migStore = migration.NewDocumentStore(db, allTables)
		checkStorage = func() error { return mongostore.Ping(context.Background(), client) }

	default:
		return fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if pool != nil {
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()
	}
	if mongoClient != nil {
		defer func() {
			log.Info("closing mongo client")
			if cerr := mongoClient.Disconnect(context.Background()); cerr != nil {
				log.Error("mongo disconnect error", slog.Any("error", cerr))
			}
		}()
	}

	idSchema := storage.IdSchema()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	// Single-tenant deployments must initialize the system context before
	// the admin-user migration runs; multi-tenant deployments get theirs
	// from the meta-org bootstrap migration itself.
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

	// The demo migration file is relational DDL; the document backend needs
	// none of it since Mongo collections are implicit on first write.
	sources := []corebase.MigrationSource{synthetic}
	if cfg.StorageBackend == "relational" {
		sources = append(sources, corebase.FileMigrationSource{Dir: cfg.MigrationPath, Exec: ddl})
	}

	engine := corebase.NewEngine(migStore, sources...)
	if err := engine.Up(startupCtx, ""); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	metaOrgId := corebase.Id{}
	if corebase.IsSystemUserContextInitialized() {
		metaOrgId = corebase.SystemUserContext().OrgId
	}

	// # 6. Platform services
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}
	authenticator := authn.NewAuthenticator(jwtSvc, idSchema)

	var sessions authn.SessionStore
	if pool != nil {
		sessions = authn.NewCachedSessionStore(authn.NewPostgresSessionStore(pool), rdb)
	}
	authSvc := authn.NewService(jwtSvc, sessions)

	// # 7. Health wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: checkStorage,
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 8. Demo entity wiring
	orgSvc := organization.NewService(storage, idSchema)
	orgCtrl := organization.NewController(orgSvc, idSchema, authenticator)

	accountSvc := account.NewService(storage, idSchema, metaOrgId)
	accountCtrl := account.NewController(accountSvc, idSchema, authenticator)

	productSvc := product.NewService(storage, idSchema, metaOrgId)
	productCtrl := product.NewController(productSvc, idSchema, authenticator)

	testitemSvc := testitem.NewService(storage, idSchema, metaOrgId)
	testitemCtrl := testitem.NewController(testitemSvc, idSchema, authenticator)

	roleSvc := role.NewService(storage, idSchema, metaOrgId)
	roleCtrl := role.NewController(roleSvc, idSchema, authenticator)

	featureSvc := feature.NewService(storage, idSchema)
	featureCtrl := feature.NewController(featureSvc, idSchema, authenticator)

	authorizationSvc := authorization.NewService(storage, idSchema)
	authorizationCtrl := authorization.NewController(authorizationSvc, idSchema, authenticator)

	authHdl := api.NewAuthHandler(accountSvc, authSvc, log)

	// # 9. API assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHdl,
		Entities: []api.ControllerRoutes{
			orgCtrl, accountCtrl, productCtrl, testitemCtrl, roleCtrl, featureCtrl, authorizationCtrl,
		},
	}

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 10. Lifecycle handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("corebase_api_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel() // Signal background workers to stop

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
