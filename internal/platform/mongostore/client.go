// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mongostore provides a managed client for the document storage
backend, the MongoDB counterpart to internal/platform/postgres.

Architecture:

  - Connect: validates connectivity at startup via Ping, mirroring postgres.NewPool.
  - Tuning: opinionated pool sizing and timeouts for the corebase workload.
*/
package mongostore

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
	maxPoolSize    = 25
)

// Connect dials uri and returns the named database, validated with a Ping.
func Connect(ctx stdctx.Context, uri, database string, logger *slog.Logger) (*mongo.Database, *mongo.Client, error) {
	connectCtx, cancel := stdctx.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetMaxPoolSize(maxPoolSize))
	if err != nil {
		return nil, nil, fmt.Errorf("mongostore: failed to connect: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	logger.Info("mongo client connected", slog.String("database", database))
	return client.Database(database), client, nil
}

// Ping verifies that client can reach the primary.
func Ping(ctx stdctx.Context, client *mongo.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongostore: ping failed: %w", err)
	}
	return nil
}
