package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/focoapp/foco-backend/config"
	"github.com/focoapp/foco-backend/database"
	"github.com/focoapp/foco-backend/database/repositories"
	"github.com/focoapp/foco-backend/handlers"
	"github.com/focoapp/foco-backend/logger"
	"github.com/focoapp/foco-backend/middleware"
	"github.com/focoapp/foco-backend/migration"
	"github.com/focoapp/foco-backend/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	importLegacy := flag.Bool("import-legacy", false, "import legacy mongo data and exit")
	flag.Parse()

	// Initialize logger first
	customHandler := logger.NewHandler("Foco-Backend")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Foco Backend API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("type", "sys"))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	customHandler.SetLevel(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database connected successfully")

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *importLegacy {
		runLegacyImport(cfg, db)
		db.Close()
		return
	}

	repos := repositories.NewRepositories(db.BunDB())

	var spacesService *services.SpacesService
	if cfg.Spaces.Key != "" {
		spacesService = services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.IconRoot,
		)
	}

	scoringService := services.NewScoringService(repos)
	achievementService := services.NewAchievementService(repos)
	ledgerService := services.NewLedgerService(repos.Reward)
	searchService := services.NewBadgeSearchService(repos.Badge)

	// Initialize Fiber as API-only backend
	app := fiber.New(fiber.Config{
		AppName:      "Foco Backend API",
		ServerHeader: "Foco-Backend",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000,http://localhost:8080",
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		DB:           db,
		Repos:        repos,
		Scoring:      scoringService,
		Achievements: achievementService,
		Ledger:       ledgerService,
		Search:       searchService,
		Spaces:       spacesService,
		Version:      version,
		Commit:       commit,
	}

	setupRoutes(app, webApp)

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	slog.Info("Starting backend server", slog.String("address", address))

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down backend server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	db.Close()

	slog.Info("Backend server shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api/v1")

	api.Post("/xp/award", handlers.AwardXP(webApp))
	api.Post("/badges/check", handlers.CheckBadges(webApp))
	api.Post("/rewards/spend", handlers.RewardsSpend(webApp))

	api.Get("/badges", handlers.BadgesList(webApp))
	api.Get("/badges/search", handlers.BadgesSearch(webApp))

	users := api.Group("/users")
	users.Get("/:id/badges", handlers.UserBadges(webApp))
	users.Get("/:id/profile", handlers.UserProfile(webApp))
	users.Get("/:id/ledger", handlers.UserLedger(webApp))
	users.Get("/:id/ledger/replay", handlers.UserLedgerReplay(webApp))

	admin := app.Group("/admin")
	admin.Post("/badges/:slug/icon", handlers.BadgeIconUpload(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return c.Status(404).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})
}

// runLegacyImport performs a one-shot copy of the pre-rewrite Mongo
// data into Postgres.
func runLegacyImport(cfg *config.Config, db *database.DB) {
	if cfg.Mongo.URI == "" {
		slog.Error("Legacy import requested but mongo.uri is not configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	mongoDB, cleanup, err := migration.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		slog.Error("Failed to connect to mongo", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	importer := migration.NewImporter(db.BunDB(), mongoDB)
	if err := importer.Run(ctx); err != nil {
		slog.Error("Legacy import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
