package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/core/config"
	"rentalsync-bridge/core/database"
	"rentalsync-bridge/core/loader"
	"rentalsync-bridge/core/logger"
	"rentalsync-bridge/core/middleware/auth"
	"rentalsync-bridge/core/middleware/rayid"
	"rentalsync-bridge/core/secrets"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/calendar"
	"rentalsync-bridge/feature/cloudbeds"
	"rentalsync-bridge/feature/credential"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"
	"rentalsync-bridge/feature/scheduler"
	"rentalsync-bridge/feature/settings"
	"rentalsync-bridge/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bridge server",
	Long:  `Starts the HTTP server, the background sync scheduler, and all features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(
			&property.Property{}, &property.Room{},
			&booking.Booking{},
			&fields.AvailableField{}, &fields.CustomField{},
			&credential.Credential{},
			&settings.SystemSettings{},
		); err != nil {
			logg.Fatal("Failed to migrate database schema", zap.Error(err))
		}

		// 4. Core services
		key, err := secrets.KeyFromConfig(cfg.Secrets)
		if err != nil {
			logg.Fatal("Failed to load encryption key", zap.Error(err))
		}
		feedCache := cache.NewFromConfig(cfg.Cache)

		remote := cloudbeds.NewClient(cfg.Cloudbeds, logg)
		credRepo := credential.NewRepository(db)
		oauth := credential.NewOAuth(credRepo, cfg.Cloudbeds, key, logg)
		syncService := sync.NewService(db, feedCache, remote, oauth, logg)

		// 5. Scheduler, with the persisted interval overriding the
		// configured one
		stored, err := settings.NewRepository(db).Get(cmd.Context(), cfg.Scheduler.SyncIntervalMinutes)
		if err != nil {
			logg.Fatal("Failed to load settings", zap.Error(err))
		}
		cfg.Scheduler.SyncIntervalMinutes = stored.SyncIntervalMinutes

		sched := scheduler.New(db, syncService, cfg.Scheduler, logg)
		if err := sched.Start(); err != nil {
			logg.Fatal("Failed to start scheduler", zap.Error(err))
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// RayID first so every request is traceable
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// 7. Public features (calendar feeds)
		public := loader.NewManager(logg)
		public.Register(calendar.NewFeature(db, feedCache, logg))
		if err := public.LoadAll(app); err != nil {
			logg.Fatal("Failed to load public features", zap.Error(err))
		}

		// 8. Admin features behind API-key auth
		adminGroup := app.Group("/admin", auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
		admin := loader.NewManager(logg)
		admin.Register(property.NewFeature(db, logg))
		admin.Register(fields.NewFeature(db, logg))
		admin.Register(sync.NewFeature(syncService, logg))
		admin.Register(credential.NewFeature(credRepo, oauth, key, logg))
		admin.Register(settings.NewFeature(db, sched, logg))
		if err := admin.LoadAll(adminGroup); err != nil {
			logg.Fatal("Failed to load admin features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		sched.Stop()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
