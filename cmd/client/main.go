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

	"github.com/iudanet/devsync/internal/client/cli"
	"github.com/iudanet/devsync/internal/client/connectivity"
	"github.com/iudanet/devsync/internal/client/device"
	"github.com/iudanet/devsync/internal/client/iocli"
	"github.com/iudanet/devsync/internal/client/storage/boltdb"
	"github.com/iudanet/devsync/internal/client/sync"
	"github.com/iudanet/devsync/internal/client/transport"
	"github.com/iudanet/devsync/internal/config"
	"github.com/iudanet/devsync/internal/logging"
	"github.com/iudanet/devsync/internal/models"
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
	cfg, err := config.LoadClient(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	stdio := iocli.NewStdio()
	if len(cfg.Args) == 0 || cfg.Args[0] == "help" {
		cli.PrintUsage(stdio)
		return nil
	}
	if !cli.IsCommand(cfg.Args[0]) {
		cli.PrintUsage(stdio)
		return fmt.Errorf("unknown command: %s", cfg.Args[0])
	}

	if err := cfg.Validate(true); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := models.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	deviceID, err := device.GetOrCreateDeviceID(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to get device id: %w", err)
	}

	tr, err := transport.New(transport.Config{
		ServerURL:  cfg.ServerURL,
		UserID:     cfg.UserID,
		DeviceID:   deviceID,
		Token:      cfg.Token,
		AckTimeout: cfg.AckTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	// первая проверка синхронная: движок стартует с известным статусом сети
	probe := connectivity.NewHealthProbe(cfg.ServerURL, cfg.ProbeInterval, logger)
	probe.Start(ctx)
	defer probe.Stop()

	engine, err := sync.New(sync.Config{
		UserID:           cfg.UserID,
		DeviceID:         deviceID,
		Policy:           policy,
		AutoSyncInterval: cfg.AutoSyncInterval,
		AckTimeout:       cfg.AckTimeout,
	}, sync.Deps{
		Transport:    tr,
		Connectivity: probe,
		Records:      store,
		Queue:        store,
		Conflicts:    store,
		Metadata:     store,
		Logger:       logger,
	})
	if err != nil {
		_ = tr.Close()
		return fmt.Errorf("failed to create sync engine: %w", err)
	}

	if err := engine.Start(ctx); err != nil {
		_ = tr.Close()
		return fmt.Errorf("failed to start sync engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("failed to stop sync engine", slog.Any("error", err))
		}
	}()

	return cli.New(stdio, engine, cfg.UserID, cfg.Settle).Run(ctx, cfg.Args)
}

func printVersion() {
	fmt.Printf("devsync client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
