package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/router"
	"github.com/picstream/backend/pkg/config"
	"github.com/picstream/backend/pkg/firebase"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	store, closeStorage, err := config.InitStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer closeStorage()
	logger.Info("storage initialized", zap.String("driver", cfg.StorageDriver))

	// Firebase login is optional; skipped entirely without credentials.
	var firebaseAuth *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		firebaseAuth = firebaseApp.AuthClient
	}

	// The author-summary cache is optional too.
	var cache *feed.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = feed.NewCache(rdb)
		logger.Info("redis cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	e := echo.New()
	e.HideBanner = true

	router.SetupMiddleware(e)
	router.SetupRoutes(e, router.Deps{
		Store:        store,
		Logger:       logger,
		JWTSecret:    cfg.JWTSecret,
		UploadDir:    cfg.UploadDir,
		FirebaseAuth: firebaseAuth,
		Cache:        cache,
	})

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
