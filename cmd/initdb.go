package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowpilot/flowpilot/internal/config"
	"github.com/flowpilot/flowpilot/internal/store"
)

func newInitDBCmd() *cobra.Command {
	var databasePath string

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the SQLite schema and exit",
		Long: `Create the users and user_credentials tables in the SQLite database.

The serve command creates the schema on startup as well; init-db exists
for provisioning the database file ahead of time, e.g. in a container
init step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := databasePath
			if !cmd.Flags().Changed("db") {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.DatabasePath
			}

			db, err := store.OpenSQLite(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			fmt.Printf("database initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&databasePath, "db", "flowpilot.db", "SQLite database file. Can also use DATABASE_PATH env var.")

	return cmd
}
