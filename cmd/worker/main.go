package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/worker/api/grpc"
	"github.com/nemanja-m/scatter/internal/worker/service"
	"github.com/nemanja-m/scatter/pkg/core"

	_ "github.com/nemanja-m/scatter/examples/cube"
	_ "github.com/nemanja-m/scatter/examples/negate"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("worker", pflag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	rank := fs.Int("rank", 0, "worker unit index (overrides the config file)")
	fs.Parse(os.Args[1:])

	cfg, err := config.LoadWorker(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}
	if fs.Changed("rank") {
		cfg.Rank = *rank
	}

	logger := logging.NewLogger(cfg.Logging)
	if cfg.Rank < 1 {
		fmt.Println(core.ConfigErrorf("worker rank must be at least 1, got %d", cfg.Rank))
		return 1
	}

	client, err := grpc.NewCoordinatorClient(cfg.Coordinator)
	if err != nil {
		logger.Error("Failed to create coordinator client", "error", err)
		return 1
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Worker started", "worker", cfg.Rank, "coordinator", cfg.Coordinator.Addr)

	result, err := service.NewWorkerService(client, cfg.Rank, logger).Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrConfiguration):
		fmt.Println(err)
		return 1
	case errors.Is(err, core.ErrRaceCondition):
		logger.Warn("Segment processed with unconfirmed buffers", "worker", cfg.Rank, "error", err)
		return 1
	default:
		logger.Error("Worker failed", "worker", cfg.Rank, "error", err)
		return 1
	}

	logger.Info("Shutting down worker", "worker", result.Rank, "length", result.Length)
	return 0
}
