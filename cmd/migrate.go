package main

import (
	"fmt"

	"storefront-service/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		appConfig, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		// InitDB migrates on open
		if err := database.InitDB(appConfig); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("Database schema is up to date")
		return database.Close()
	},
}
