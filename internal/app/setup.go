package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talkport/mailfeed/internal/store"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the user-store database schema",
	Long:  "Creates the users table backing the persistent linked-account records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dbURL := viper.GetString("database.url")
		if dbURL == "" {
			return fmt.Errorf("database.url not configured")
		}

		pg, err := store.NewPostgres(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pg.Close()

		fmt.Println("Running migrations...")
		if err := pg.Migrate(ctx); err != nil {
			return err
		}

		fmt.Println("Database setup complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
