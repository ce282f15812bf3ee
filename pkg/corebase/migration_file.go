package corebase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^\d{14}_[a-zA-Z0-9_-]+\.sql$`)

// SQLExecutor runs a batch of DDL/DML statements as one unit against the
// relational backend. The relational storage adapter provides the
// concrete implementation (one transaction per migration, when the SQL
// permits).
type SQLExecutor interface {
	ExecBatch(ctx context.Context, sql string) error
}

// FileMigrationSource loads relational migrations from a directory of
// `.sql` files, each split into an `-- up` and `-- down` section (case-
// insensitive delimiter, matching section headers on their own line).
// Filenames must be a 14-digit timestamp prefix followed by an underscore
// and a slug, e.g. `20260115120000_create_products.sql` — the same
// convention golang-migrate's file source uses, reimplemented directly
// here since golang-migrate's runner has no notion of synthetic in-code
// migrations to merge with (see DESIGN.md).
type FileMigrationSource struct {
	Dir  string
	Exec SQLExecutor
}

func (s FileMigrationSource) Migrations() ([]Migration, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", s.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !fileNamePattern.MatchString(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, fname := range names {
		path := filepath.Join(s.Dir, fname)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fname, err)
		}
		up, down, err := splitUpDown(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse migration %s: %w", fname, err)
		}
		name := strings.TrimSuffix(fname, ".sql")
		out = append(out, Migration{
			Name: name,
			Up:   execSQL(s.Exec, up),
			Down: execSQL(s.Exec, down),
		})
	}
	return out, nil
}

func execSQL(exec SQLExecutor, sql string) func(context.Context) error {
	return func(ctx context.Context) error {
		if strings.TrimSpace(sql) == "" {
			return nil
		}
		return exec.ExecBatch(ctx, sql)
	}
}

// splitUpDown splits raw migration content on case-insensitive "-- up" /
// "-- down" section markers. A missing or empty up section is a parse
// error; a missing down section is valid (the migration is irreversible).
func splitUpDown(content string) (up, down string, err error) {
	lines := strings.Split(content, "\n")
	var upLines, downLines []string
	section := ""
	for _, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		switch trimmed {
		case "-- up":
			section = "up"
			continue
		case "-- down":
			section = "down"
			continue
		}
		switch section {
		case "up":
			upLines = append(upLines, line)
		case "down":
			downLines = append(downLines, line)
		}
	}
	up = strings.TrimSpace(strings.Join(upLines, "\n"))
	down = strings.TrimSpace(strings.Join(downLines, "\n"))
	if up == "" {
		return "", "", fmt.Errorf("missing or empty -- up section")
	}
	return up, down, nil
}
