package main

import (
	"fmt"

	"storefront-service/internal/session"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"

	"github.com/spf13/cobra"
)

var purgeSessionsCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete expired anonymous sessions from the database",
	Long:  "Only applies to SESSION_BACKEND=database; Redis expires sessions itself.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		appConfig, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if appConfig.Session.Backend != config.SessionBackendDatabase {
			return fmt.Errorf("purge-sessions needs SESSION_BACKEND=%s, got %s",
				config.SessionBackendDatabase, appConfig.Session.Backend)
		}
		if err := database.InitDB(appConfig); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		defer database.Close()

		store := session.NewDBStore(database.GetDB(), appConfig.Session.TTL, log)
		n, err := store.PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", n)
		return nil
	},
}
