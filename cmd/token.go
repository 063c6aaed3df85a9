package main

import (
	"fmt"

	"storefront-service/pkg/jwtutil"

	"github.com/spf13/cobra"
)

var (
	tokenUserID uint
	tokenEmail  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local testing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenUserID == 0 {
			return fmt.Errorf("--user-id is required")
		}
		appConfig, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
			SigningKey:      appConfig.JWT.SigningKey,
			ExpirationHours: appConfig.JWT.ExpirationHours,
		})
		token, err := jwtUtil.GenerateToken(tokenEmail, tokenUserID)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user-id", 0, "user id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "dev@example.com", "email to embed in the token")
}
