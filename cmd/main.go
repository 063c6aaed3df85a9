package main

import (
	"fmt"
	"os"

	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "storefront-service"

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront catalog and cart API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, purgeSessionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	appConfig, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return appConfig, logger.GetLogger(), nil
}
