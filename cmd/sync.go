package cmd

import (
	"fmt"
	"log"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/core/config"
	"rentalsync-bridge/core/database"
	"rentalsync-bridge/core/logger"
	"rentalsync-bridge/core/secrets"
	"rentalsync-bridge/feature/cloudbeds"
	"rentalsync-bridge/feature/credential"
	"rentalsync-bridge/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs a single synchronization pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-off sync of all enabled properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		key, err := secrets.KeyFromConfig(cfg.Secrets)
		if err != nil {
			return fmt.Errorf("load encryption key: %w", err)
		}

		remote := cloudbeds.NewClient(cfg.Cloudbeds, logg)
		credRepo := credential.NewRepository(db)
		oauth := credential.NewOAuth(credRepo, cfg.Cloudbeds, key, logg)
		service := sync.NewService(db, cache.NewFromConfig(cfg.Cache), remote, oauth, logg)

		counts, err := service.SyncAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Sync complete: %d inserted, %d updated, %d cancelled\n",
			counts.Inserted, counts.Updated, counts.Cancelled)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}
