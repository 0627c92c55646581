package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/router"
	"github.com/wavelink-app/backend/pkg/config"
	"github.com/wavelink-app/backend/pkg/firebase"
	"github.com/wavelink-app/backend/pkg/logger"
	"github.com/wavelink-app/backend/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.CloseDB()

	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Error("failed to initialize Firebase", slog.Any("error", err))
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	router.SetupMiddleware(e)
	if err := router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.AuthClient, cfg, log); err != nil {
		log.Error("failed to set up routes", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("starting server", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
