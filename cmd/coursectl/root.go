// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"learnhub/internal/apiclient"
	"learnhub/internal/identity"
)

const (
	keyAPIURL = "api-url"
	keyUser   = "user"
	keyDSN    = "dsn"
)

var errNoUser = errors.New("no user: pass --user or set LEARNHUB_USER")

// cli holds the resolved settings shared by every subcommand. Flags win
// over LEARNHUB_* environment variables, which win over the config file.
type cli struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}
	var configFile string

	root := &cobra.Command{
		Use:           "coursectl",
		Short:         "Manage learnhub courses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile == "" {
				return nil
			}
			c.v.SetConfigFile(configFile)
			if err := c.v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", configFile, err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String(keyAPIURL, "http://127.0.0.1:8080", "base URL of the course API")
	flags.StringP(keyUser, "u", "", "user id to act as")
	flags.String(keyDSN, "", "PostgreSQL connection string (seed, cache-log)")

	c.v.SetEnvPrefix("learnhub")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(flags)

	root.AddCommand(
		c.newCreateCommand(),
		c.newSetCommand(),
		c.newShowCommand(),
		c.newCategoriesCommand(),
		c.newSeedCommand(),
		c.newCacheLogCommand(),
	)
	return root
}

// client returns an API client and a context carrying the acting user.
func (c *cli) client(ctx context.Context) (*apiclient.Client, context.Context, error) {
	user := strings.TrimSpace(c.v.GetString(keyUser))
	if user == "" {
		return nil, nil, errNoUser
	}
	ctx = identity.WithUser(ctx, &identity.User{ID: user})
	return apiclient.New(c.v.GetString(keyAPIURL), apiclient.WithName("coursectl")), ctx, nil
}
