package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/coverage-api-go/pkg/auth"
	"github.com/arnavshah/coverage-api-go/pkg/config"
	"github.com/arnavshah/coverage-api-go/pkg/database"
	"github.com/arnavshah/coverage-api-go/pkg/handlers"
	"github.com/arnavshah/coverage-api-go/pkg/logging"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	logger, err := logging.New(true, cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		logger.Fatal("could not open database", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Error("could not create admin user", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(db, auth.NewSigner(cfg.JWTSecret, cfg.APIMasterSecret), cfg, logger)
	r = handlers.NewRouter(h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
