package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/auth"
	"github.com/yardsketch/yardsketch-engine/pkg/config"
	"github.com/yardsketch/yardsketch-engine/pkg/database"
	"github.com/yardsketch/yardsketch-engine/pkg/handlers"
	"github.com/yardsketch/yardsketch-engine/pkg/llm"
	"github.com/yardsketch/yardsketch-engine/pkg/middleware"
	"github.com/yardsketch/yardsketch-engine/pkg/repositories"
	"github.com/yardsketch/yardsketch-engine/pkg/services"
	"github.com/yardsketch/yardsketch-engine/pkg/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Best effort; local development keeps secrets in .env
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.String("storage_bucket", cfg.Storage.Bucket))

	if err := cfg.AI.Validate(); err != nil {
		logger.Fatal("Invalid AI configuration", zap.Error(err))
	}
	if err := cfg.Storage.Validate(); err != nil {
		logger.Fatal("Invalid storage configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	store, err := storage.NewS3Store(ctx, &cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to create object store", zap.Error(err))
	}

	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint:    cfg.AI.Endpoint,
		APIKey:      cfg.AI.APIKey,
		TextModel:   cfg.AI.TextModel,
		VisionModel: cfg.AI.VisionModel,
		ImageModel:  cfg.AI.ImageModel,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create AI client", zap.Error(err))
	}

	validator, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		Issuer:             cfg.Auth.Issuer,
		JWKSURL:            cfg.Auth.JWKSURL,
	})
	if err != nil {
		logger.Fatal("Failed to create token validator", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(validator, logger)

	projectRepo := repositories.NewProjectRepository(db)
	generator := services.NewDesignGenerator(llmClient, cfg.AI.ImageCount, logger)
	estimator := services.NewMaterialEstimator()
	persister := services.NewAssetPersister(store, logger)
	projectService := services.NewProjectService(projectRepo, store, generator, estimator, persister, logger)
	renderer := services.NewReportRenderer(logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	projectsHandler := handlers.NewProjectsHandler(projectService, renderer, logger)
	projectsHandler.RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting yardsketch-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a production logger outside local environments and a
// human-readable development logger otherwise.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
