package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const scaffoldTemplate = `-- up


-- down

`

// scaffoldMigration writes a new, empty timestamped .sql file under dir,
// matching the 14-digit-prefix naming corebase.FileMigrationSource expects.
func scaffoldMigration(dir, slug string) (string, error) {
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("slug %q must match %s", slug, slugPattern.String())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format("20060102150405"), strings.ToLower(slug))
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(scaffoldTemplate), 0o644); err != nil {
		return "", fmt.Errorf("write migration file: %w", err)
	}
	return path, nil
}
