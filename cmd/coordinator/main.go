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

	"github.com/spf13/pflag"

	coordinatorgrpc "github.com/nemanja-m/scatter/internal/coordinator/api/grpc"
	"github.com/nemanja-m/scatter/internal/coordinator/api/rest"
	"github.com/nemanja-m/scatter/internal/coordinator/runtime"
	"github.com/nemanja-m/scatter/internal/coordinator/service"
	"github.com/nemanja-m/scatter/internal/coordinator/storage"
	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/internal/transport/remote"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/dataset"

	_ "github.com/nemanja-m/scatter/examples/cube"
	_ "github.com/nemanja-m/scatter/examples/negate"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("coordinator", pflag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(os.Args[1:])

	cfg, err := config.LoadCoordinator(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}
	logger := logging.NewLogger(cfg.Logging)

	if err := cfg.Run.Validate(); err != nil {
		fmt.Println(err)
		return 1
	}
	data, err := loadDataset(cfg.Run)
	if err != nil {
		fmt.Println(err)
		return 1
	}

	plan := cfg.Run.Plan(len(data))
	s, err := strategy.New(strategy.Kind(plan.Strategy), strategy.Options{CompletionTimeout: plan.CompletionTimeout})
	if err != nil {
		fmt.Println(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := remote.NewHub(plan, logger)
	defer hub.Close()

	grpcServer := coordinatorgrpc.NewServer(cfg.GRPC, hub, logger)
	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Error("gRPC server failed", "error", err)
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.Shutdown(shutdownCtx)
	}()

	runs := service.NewRunService(storage.NewInMemoryRunStore(), logger)
	if _, err := runs.Submit(plan, len(data)); err != nil {
		fmt.Println(err)
		return 1
	}

	var restServer *http.Server
	if cfg.REST.Addr != "" {
		restServer = rest.NewServer(cfg.REST, runs, service.NewWorkerService(hub, plan.Workers()), logger)
		go func() {
			logger.Info("Starting REST API server", "addr", cfg.REST.Addr)
			if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("REST API server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := restServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("REST API server forced to shutdown", "error", err)
			}
		}()
	}

	coordinator, err := runtime.New(hub, s, logger,
		runtime.WithRunID(plan.RunID),
		runtime.WithMaxSegmentLength(plan.MaxSegmentLength),
		runtime.WithTimed(plan.Timed),
		runtime.WithObserver(runs.Observer(plan.RunID)),
	)
	if err != nil {
		logger.Error("Failed to create coordinator", "error", err)
		return 1
	}

	runner := &joiningRunner{
		hub:         hub,
		coordinator: coordinator,
		joinTimeout: cfg.GRPC.JoinTimeout,
		logger:      logger,
	}
	report, runErr := runs.Execute(ctx, plan.RunID, runner, data)
	if report != nil {
		if err := report.Print(os.Stdout); err != nil {
			logger.Error("Failed to print report", "error", err)
		}
	}

	code := 0
	switch {
	case runErr == nil:
	case errors.Is(runErr, core.ErrConfiguration):
		fmt.Println(runErr)
		code = 1
	default:
		logger.Error("Run failed", "run_id", plan.RunID, "error", runErr)
		code = 1
	}

	if restServer != nil && cfg.REST.Linger && ctx.Err() == nil {
		logger.Info("Run finished, serving the REST API until interrupted", "addr", cfg.REST.Addr)
		<-ctx.Done()
	}
	return code
}

func loadDataset(cfg config.RunConfig) ([]int64, error) {
	if cfg.Input == "" {
		return dataset.Sequence(cfg.DatasetSize), nil
	}
	data, err := dataset.Load(cfg.Input)
	if err != nil {
		return nil, core.ConfigErrorf("cannot load dataset: %v", err)
	}
	return data, nil
}

// joiningRunner waits for every worker to connect before running.
type joiningRunner struct {
	hub         *remote.Hub
	coordinator *runtime.Coordinator
	joinTimeout time.Duration
	logger      logging.Logger
}

func (r *joiningRunner) Run(ctx context.Context, data []int64) (*runtime.Report, error) {
	r.logger.Info("Waiting for workers", "expected", r.hub.Size()-1, "timeout", r.joinTimeout)

	joinCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.joinTimeout > 0 {
		joinCtx, cancel = context.WithTimeout(ctx, r.joinTimeout)
	}
	err := r.hub.WaitForWorkers(joinCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	return r.coordinator.Run(ctx, data)
}
