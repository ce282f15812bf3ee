package corebase

import (
	"context"
	"fmt"
	"sort"
)

// Migration is one schema change: a sortable name and an idempotent pair
// of up/down functions. Names sort lexicographically (a 14-digit
// timestamp prefix keeps them in creation order) and are recorded, once
// applied, in the migrations bookkeeping table/collection.
type Migration struct {
	Name string
	Up   func(ctx context.Context) error
	Down func(ctx context.Context) error
}

// MigrationStore records which migration names have already run. The
// engine calls Record after a migration's Up succeeds and Unrecord after
// its Down succeeds, as separate writes outside the migration's own
// statements. The relational and document
// adapters each provide one, backed by the `migrations` table/collection.
type MigrationStore interface {
	// AppliedNames returns every migration name already recorded, in no
	// particular order.
	AppliedNames(ctx context.Context) ([]string, error)
	// Record marks name as applied.
	Record(ctx context.Context, name string) error
	// Unrecord removes name from the applied set (used by down/reset).
	Unrecord(ctx context.Context, name string) error
	// DropAll drops every table/collection the engine knows about,
	// including its own bookkeeping store, for Reset.
	DropAll(ctx context.Context) error
}

// Engine orders and runs synthetic + file migrations idempotently. It
// merges whatever MigrationSources it's given (a synthetic builder, a
// file loader) into one ordered set keyed by name.
type Engine struct {
	Store   MigrationStore
	Sources []MigrationSource
}

// MigrationSource produces a set of migrations. Synthetic sources build
// theirs in-process from config; file sources parse a directory.
type MigrationSource interface {
	Migrations() ([]Migration, error)
}

// NewEngine builds a migration engine against store, merging migrations
// from every source in order. Sources are expected not to declare
// colliding names; a later source's migration silently wins if they do,
// since sources are merged in the caller-supplied priority order (synthetic
// first, then file, matching the bootstrap-ordering requirement that
// synthetic tenancy/user/admin migrations run before hand-authored ones).
func NewEngine(store MigrationStore, sources ...MigrationSource) *Engine {
	return &Engine{Store: store, Sources: sources}
}

func (e *Engine) allMigrations() ([]Migration, error) {
	byName := map[string]Migration{}
	var order []string
	for _, src := range e.Sources {
		ms, err := src.Migrations()
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			if _, exists := byName[m.Name]; !exists {
				order = append(order, m.Name)
			}
			byName[m.Name] = m
		}
	}
	sort.Strings(order)
	out := make([]Migration, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// Up runs every pending migration (declared minus already-applied) in
// name order. toName, if non-empty, stops after running that migration.
// On failure the run aborts; prior successes remain recorded — an
// idempotent second invocation of Up over the same set produces zero new
// rows.
func (e *Engine) Up(ctx context.Context, toName string) error {
	all, err := e.allMigrations()
	if err != nil {
		return err
	}
	applied, err := e.Store.AppliedNames(ctx)
	if err != nil {
		return err
	}
	appliedSet := toSet(applied)

	for _, m := range all {
		if appliedSet[m.Name] {
			continue
		}
		if err := m.Up(ctx); err != nil {
			return fmt.Errorf("migration %s: up: %w", m.Name, err)
		}
		if err := e.Store.Record(ctx, m.Name); err != nil {
			return fmt.Errorf("migration %s: record: %w", m.Name, err)
		}
		if toName != "" && m.Name == toName {
			return nil
		}
	}
	return nil
}

// Down reverts the last applied migration, or every migration back to and
// excluding toName when toName is non-empty.
func (e *Engine) Down(ctx context.Context, toName string) error {
	all, err := e.allMigrations()
	if err != nil {
		return err
	}
	applied, err := e.Store.AppliedNames(ctx)
	if err != nil {
		return err
	}
	appliedSet := toSet(applied)

	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if !appliedSet[m.Name] {
			continue
		}
		if toName != "" && m.Name == toName {
			break
		}
		if err := m.Down(ctx); err != nil {
			return fmt.Errorf("migration %s: down: %w", m.Name, err)
		}
		if err := e.Store.Unrecord(ctx, m.Name); err != nil {
			return fmt.Errorf("migration %s: unrecord: %w", m.Name, err)
		}
		if toName == "" {
			return nil // default: revert only the last one
		}
	}
	return nil
}

// Reset drops the schema/database entirely, then runs Up from scratch.
func (e *Engine) Reset(ctx context.Context, toName string) error {
	if err := e.Store.DropAll(ctx); err != nil {
		return err
	}
	return e.Up(ctx, toName)
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
