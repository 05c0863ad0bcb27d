// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"learnhub/internal/database"
	"learnhub/internal/store"
)

var errNoDSN = errors.New("no database: pass --dsn or set LEARNHUB_DSN")

// openDB connects to PostgreSQL and applies pending migrations.
func (c *cli) openDB() (*sql.DB, error) {
	dsn := c.v.GetString(keyDSN)
	if dsn == "" {
		return nil, errNoDSN
	}
	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (c *cli) newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load course categories into the database",
		Long: `Load course categories into the database. Without --file the bundled
category list is used. Existing categories are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := loadCategoryNames(file)
			if err != nil {
				return err
			}
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			inserted, err := database.SeedCategories(cmd.Context(), db, names)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d categories inserted\n", inserted, len(names))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "category YAML file")
	return cmd
}

func (c *cli) newCacheLogCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "cache-log",
		Short: "Show recent course cache invalidations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := store.NewCacheLogStore(db).RecentEntries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.InvalidatedAt.Local().Format(time.DateTime), e.EntityType, e.EntityID, e.Action)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func loadCategoryNames(file string) ([]string, error) {
	if file == "" {
		return database.DefaultCategories()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	names, err := database.ParseCategories(data)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s lists no categories", file)
	}
	return names, nil
}
