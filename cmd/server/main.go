// Package main provides the HumanOrAI prediction and history API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kamilpajak/humanorai/internal/api"
	"github.com/kamilpajak/humanorai/internal/classifier"
	"github.com/kamilpajak/humanorai/internal/database"
	"go.uber.org/zap"
)

func main() {
	var (
		port        = flag.String("port", getEnv("PORT", "8000"), "Server port")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
		migrateDown = flag.Bool("migrate-down", false, "Roll back all migrations and exit")
		dev         = flag.Bool("dev", false, "Human-readable development logging")
	)
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *migrateDown {
		if err := rollback(logger); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		return
	}

	if err := run(logger, *port, *migrateOnly); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func rollback(logger *zap.Logger) error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	logger.Info("rolling back database migrations")
	if err := database.MigrateDown(dbURL); err != nil {
		return err
	}
	logger.Info("rollback complete")
	return nil
}

func run(logger *zap.Logger, port string, migrateOnly bool) error {
	// Required environment variables
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	classifierURL := os.Getenv("CLASSIFIER_URL")
	if classifierURL == "" && !migrateOnly {
		return errors.New("CLASSIFIER_URL is required (e.g., http://localhost:8001)")
	}

	logger.Info("running database migrations")
	if err := database.Migrate(dbURL); err != nil {
		return err
	}
	logger.Info("migrations complete")

	if migrateOnly {
		return nil
	}

	ctx := context.Background()
	db, err := database.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rps, err := strconv.ParseFloat(getEnv("PREDICT_RPS", "0"), 64)
	if err != nil {
		return fmt.Errorf("invalid PREDICT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("PREDICT_BURST", "5"))
	if err != nil {
		return fmt.Errorf("invalid PREDICT_BURST: %w", err)
	}

	server := api.NewServer(api.Config{
		DB:           db,
		Classifier:   classifier.NewClient(classifierURL, &http.Client{Timeout: 60 * time.Second}),
		Logger:       logger,
		PredictRPS:   rps,
		PredictBurst: burst,
	})

	addr := fmt.Sprintf(":%s", port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("classifier", classifierURL))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
