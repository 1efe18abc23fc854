// socialctl is the operator CLI: schema migration and dev-data seeding.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), "socialctl.log"); err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer logger.Close()

	rootCmd := &cobra.Command{
		Use:   "socialctl",
		Short: "Tangle backend admin tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return database.Initialize()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return database.Close()
		},
	}

	rootCmd.AddCommand(migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(); err != nil {
				return err
			}
			fmt.Println("migrations complete")
			return nil
		},
	}
}
