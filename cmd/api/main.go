package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/go-api-checkin/internal/config"
	"github.com/go-api-checkin/internal/infrastructure/dynamo"
	redisinfra "github.com/go-api-checkin/internal/infrastructure/redis"
	"github.com/go-api-checkin/internal/infrastructure/sns"
	transporthttp "github.com/go-api-checkin/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := pflag.String("port", "", "listen port (overrides APP_PORT)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Info("no env file loaded, reading from environment", "path", *envFile)
	}

	cfg := config.Load()
	if *port != "" {
		cfg.AppPort = *port
	}
	if !cfg.IsDevelopment() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	deps := &transporthttp.Deps{
		Cache:    redisinfra.NewCache(redisClient),
		UserRepo: dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
	}
	if cfg.SMSEnabled {
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			return fmt.Errorf("sns sender: %w", err)
		}
		deps.SMSSender = sender
	} else {
		slog.Warn("SMS delivery disabled, verification codes are only logged")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
