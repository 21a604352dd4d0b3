// migrate runs DB migrations from embedded SQL: migrate up | down | version.
package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"quiz-arena/backend/internal/config"
	"quiz-arena/backend/internal/db/migrate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the quiz-arena database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newDirectionCmd("up", "Apply all pending migrations"),
		newDirectionCmd("down", "Roll back all migrations"),
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := databaseURL()
				if err != nil {
					return err
				}
				v, dirty, err := migrate.Version(dsn)
				if err != nil {
					return oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
				}
				cmd.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			},
		},
	)
	return root
}

func newDirectionCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			if err := migrate.Run(dsn, direction); err != nil {
				return oops.Code("MIGRATION_FAILED").With("direction", direction).Wrap(err)
			}
			cmd.Printf("migrate %s: done\n", direction)
			return nil
		},
	}
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	return cfg.DatabaseURL, nil
}
