// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// seedFile is the shape of categories.yaml.
type seedFile struct {
	Categories []struct {
		Name string `yaml:"name"`
	} `yaml:"categories"`
}

// DefaultCategories returns the category names bundled with the binary.
func DefaultCategories() ([]string, error) {
	return ParseCategories(categoriesYAML)
}

// ParseCategories decodes a category seed document and returns the
// trimmed, de-duplicated names in file order.
func ParseCategories(data []byte) ([]string, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse category seed: %w", err)
	}

	seen := make(map[string]bool, len(f.Categories))
	names := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// SeedCategories inserts the given category names, skipping any that
// already exist. It returns the number of rows actually inserted.
func SeedCategories(ctx context.Context, db *sql.DB, names []string) (int, error) {
	var inserted int
	for _, name := range names {
		res, err := db.ExecContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return inserted, fmt.Errorf("seed category %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// Seed loads the bundled categories. It is safe to run repeatedly.
func Seed(ctx context.Context, db *sql.DB) error {
	names, err := DefaultCategories()
	if err != nil {
		return err
	}

	inserted, err := SeedCategories(ctx, db, names)
	if err != nil {
		slog.Error("error seeding database categories", "error", err)
		return err
	}

	if inserted == 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}
	slog.Info("database seeded with categories", "inserted", inserted)
	return nil
}
