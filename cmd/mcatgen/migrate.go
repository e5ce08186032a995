package main

import (
	"fmt"

	"github.com/mcat-prep/backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig(cmd)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}
		version, dirty, err := database.SchemaVersion(db)
		if err != nil {
			return err
		}
		log.WithField("version", version).Info("migrations applied")
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}
