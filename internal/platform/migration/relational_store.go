// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration backs corebase.Engine's bookkeeping for both storage
// backends. Engine merges synthetic and file-sourced migrations into one
// ordered run, which needs its own applied-names bookkeeping store per
// backend rather than delegating to a single SQL-only migrations table
// (see DESIGN.md).
package migration

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebase/corebase/internal/platform/dberr"
)

const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// RelationalStore implements corebase.MigrationStore over the same
// Postgres pool the relational storage adapter uses.
type RelationalStore struct {
	pool   *pgxpool.Pool
	tables []string // every table DropAll must remove, in drop order
}

// NewRelationalStore builds a RelationalStore. tables lists every table
// (in an order respecting foreign keys, leaf tables first) that Reset
// must drop; DropAll runs CASCADE regardless, but an explicit order
// keeps the drop sequence readable in logs.
func NewRelationalStore(pool *pgxpool.Pool, tables []string) *RelationalStore {
	return &RelationalStore{pool: pool, tables: tables}
}

func (s *RelationalStore) ensureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createMigrationsTableSQL)
	if err != nil {
		return dberr.Wrap(err, "ensure_migrations_table")
	}
	return nil
}

func (s *RelationalStore) AppliedNames(ctx context.Context) ([]string, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT name FROM migrations`)
	if err != nil {
		return nil, dberr.Wrap(err, "applied_names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, dberr.Wrap(err, "applied_names")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *RelationalStore) Record(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO migrations (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
	if err != nil {
		return dberr.Wrap(err, "record_migration")
	}
	return nil
}

func (s *RelationalStore) Unrecord(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM migrations WHERE name = $1`, name)
	if err != nil {
		return dberr.Wrap(err, "unrecord_migration")
	}
	return nil
}

// DropAll drops every table this deployment knows about, including its
// own bookkeeping table, for a full Reset.
func (s *RelationalStore) DropAll(ctx context.Context) error {
	for _, t := range s.tables {
		if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS "`+t+`" CASCADE`); err != nil {
			return dberr.Wrap(err, "drop_all")
		}
	}
	_, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS migrations CASCADE`)
	if err != nil {
		return dberr.Wrap(err, "drop_all")
	}
	return nil
}
