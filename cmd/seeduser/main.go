// Command seeduser creates a user, or resets an existing user's password.
//
// Usage:
//
//	seeduser --username admin --password secret --staff
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stockroom/internal/database"
	"stockroom/internal/logger"
	"stockroom/internal/services"
)

var (
	username string
	password string
	isStaff  bool
)

var rootCmd = &cobra.Command{
	Use:   "seeduser",
	Short: "Create or update a Stockroom user",
	Long: `Create a user, or reset the password and staff flag of an existing one.

Only staff users may record, amend or delete sales. The password may also be
given through SEED_PASSWORD so it does not end up in shell history.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "Username to create or update (required)")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $SEED_PASSWORD)")
	rootCmd.Flags().BoolVar(&isStaff, "staff", true, "Grant staff access")
	_ = rootCmd.MarkFlagRequired("username")
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if password == "" {
		password = os.Getenv("SEED_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("--password or SEED_PASSWORD is required")
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	user, err := services.NewUserService(dbManager.DB()).SetPassword(ctx, username, password, isStaff)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	logger.Get().Infow("User saved", "id", user.ID, "username", user.Username, "is_staff", user.IsStaff)
	return nil
}
