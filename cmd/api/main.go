package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gattaran/lead-intake/internal/bootstrap"
	"github.com/gattaran/lead-intake/internal/infrastructure/db/models"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	port := getEnv("PORT", "8080")

	logger, err := newLogger(getEnv("APP_ENV", "development"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		sugar.Fatalw("invalid APP_TIMEZONE", "error", err)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		sugar.Fatalw("failed to connect database", "error", err)
	}
	if err := db.AutoMigrate(&models.IngestionRun{}); err != nil {
		sugar.Fatalw("failed to migrate ingestion runs", "error", err)
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		sugar.Fatalw("failed to create pgx pool", "error", err)
	}
	defer pool.Close()

	server := bootstrap.NewHTTPServer(pool, db, loc, sugar)

	go func() {
		if err := server.Start(":" + port); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Fatalw("graceful shutdown failed", "error", err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
