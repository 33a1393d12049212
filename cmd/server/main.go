package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/devsync/internal/config"
	"github.com/iudanet/devsync/internal/logging"
	"github.com/iudanet/devsync/internal/server"
	"github.com/iudanet/devsync/internal/server/handlers"
	"github.com/iudanet/devsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	jwtConfig := handlers.JWTConfig{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}

	if cfg.IssueToken != "" {
		token, err := handlers.GenerateToken(jwtConfig, cfg.IssueToken, time.Now())
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", slog.Any("error", err))
		}
	}()

	if !jwtConfig.Enabled() {
		logger.Warn("JWT secret is not set, authentication is disabled")
	}

	srv := server.New(logger, server.Config{
		Addr:            cfg.Addr,
		Version:         Version,
		JWT:             jwtConfig,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, store)

	logger.Info("devsync relay starting",
		slog.String("version", Version),
		slog.String("db", cfg.DBPath))

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("devsync relay\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
