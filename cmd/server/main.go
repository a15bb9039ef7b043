package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/config"
	"github.com/foxxcyber/shopvoice/internal/database"
	"github.com/foxxcyber/shopvoice/internal/handlers"
	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()
	setupLogging(cfg)

	ctx := context.Background()

	datasets, err := loadDatasets(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load datasets")
	}

	// Persistence: Postgres when configured, otherwise process memory
	var (
		histories services.HistoryStore
		snapshots services.SnapshotStore
	)
	if cfg.UsesDatabase() {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := database.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		histories, snapshots = db, db
	} else {
		log.Warn().Msg("DATABASE_URL not set, history and snapshots are kept in memory")
		store := database.NewMemoryStore()
		histories, snapshots = store, store
	}

	var primary services.PrimaryParser
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiParser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ParserTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini parser unavailable, using fallback parser only")
		} else {
			primary = gemini
		}
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, using fallback parser only")
	}

	search, err := services.NewProductSearch(services.NewSearchParser(), services.NewCatalogMatcher(datasets.Catalog), cfg.SearchCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create product search")
	}

	router := services.NewCommandRouter(primary, datasets, search)
	sessions := services.NewSessionRegistry(router, histories, snapshots, services.LogSpeaker{})
	defer sessions.CloseAll()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	h := handlers.New(cfg, services.DeriveSigningKey(cfg.JWTSecret), sessions, search)
	handlers.SetupRoutes(app, h)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}
}

// loadDatasets reads the reference data from the bucket when configured,
// falling back to the embedded copy if the bucket cannot be reached
func loadDatasets(ctx context.Context, cfg *config.Config) (*models.Datasets, error) {
	if !cfg.UsesDatasetBucket() {
		return services.DefaultDatasets()
	}

	store, err := services.NewDatasetStorage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.DatasetsPrefix, cfg.S3UseSSL)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	datasets, err := store.Load(loadCtx)
	if err != nil {
		log.Warn().Err(err).Str("bucket", cfg.S3Bucket).Msg("could not load datasets from bucket, using embedded defaults")
		return services.DefaultDatasets()
	}
	log.Info().Int("products", len(datasets.Catalog)).Str("bucket", cfg.S3Bucket).Msg("datasets loaded from bucket")
	return datasets, nil
}
