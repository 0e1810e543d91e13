package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/coverage-api-go/pkg/auth"
	"github.com/arnavshah/coverage-api-go/pkg/config"
	"github.com/arnavshah/coverage-api-go/pkg/database"
	"github.com/arnavshah/coverage-api-go/pkg/handlers"
	"github.com/arnavshah/coverage-api-go/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		logger.Fatal("could not open database", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Error("could not create admin user", zap.Error(err))
	}

	h := handlers.New(db, auth.NewSigner(cfg.JWTSecret, cfg.APIMasterSecret), cfg, logger)
	r := handlers.NewRouter(h)

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("timezone", cfg.Location().String()),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}
