package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/internal/worker"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/transform"
)

// CoordinatorClient hands out the worker's end of the fabric.
type CoordinatorClient interface {
	Join(ctx context.Context, rank int) (transport.Comm, core.Plan, error)
	Close() error
}

type WorkerService struct {
	client CoordinatorClient
	rank   int
	logger logging.Logger
}

func NewWorkerService(client CoordinatorClient, rank int, logger logging.Logger) *WorkerService {
	return &WorkerService{
		client: client,
		rank:   rank,
		logger: logger,
	}
}

// Run joins the coordinator's run, processes this worker's segment and
// hangs up.
func (w *WorkerService) Run(ctx context.Context) (worker.Result, error) {
	comm, plan, err := w.join(ctx)
	if err != nil {
		return worker.Result{Rank: w.rank}, err
	}
	defer func() {
		if err := comm.Close(); err != nil {
			w.logger.Warn("Failed to close coordinator link", "worker", w.rank, "error", err)
		}
	}()

	w.logger.Info("Joined run",
		"run_id", plan.RunID,
		"worker", w.rank,
		"units", plan.Units,
		"strategy", plan.Strategy,
		"transform", plan.Transform,
	)

	s, err := strategy.New(strategy.Kind(plan.Strategy), strategy.Options{
		CompletionTimeout: plan.CompletionTimeout,
	})
	if err != nil {
		return worker.Result{Rank: w.rank}, err
	}
	fn, err := transform.Get(plan.Transform)
	if err != nil {
		return worker.Result{Rank: w.rank}, core.ConfigErrorf("%v", err)
	}

	var opts []worker.Option
	if plan.Timed {
		opts = append(opts, worker.WithBarrier())
	}
	wk, err := worker.New(comm, s, fn, plan.MaxSegmentLength, w.logger, opts...)
	if err != nil {
		return worker.Result{Rank: w.rank}, err
	}

	result, err := wk.Run(ctx)
	if err != nil {
		w.logger.Error("Segment failed", "run_id", plan.RunID, "worker", w.rank, "state", wk.State(), "error", err)
		return result, err
	}
	w.logger.Info("Segment completed", "run_id", plan.RunID, "worker", w.rank, "length", result.Length)
	return result, nil
}

func (w *WorkerService) join(ctx context.Context) (transport.Comm, core.Plan, error) {
	const (
		minBackoff = 100 * time.Millisecond
		maxBackoff = 5 * time.Second
	)
	backoff := minBackoff

	for {
		comm, plan, err := w.client.Join(ctx, w.rank)
		if err == nil {
			return comm, plan, nil
		}
		if !retryable(err) {
			return nil, core.Plan{}, rejected(w.rank, err)
		}

		w.logger.Warn("Failed to join coordinator", "worker", w.rank, "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil, core.Plan{}, fmt.Errorf("joining coordinator: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// rejected turns a refused rank into a configuration error. The gRPC
// status stays reachable through Unwrap.
func rejected(rank int, err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.AlreadyExists:
		return &core.ConfigurationError{
			Reason: fmt.Sprintf("coordinator rejected rank %d: %s", rank, status.Convert(err).Message()),
			Err:    err,
		}
	}
	return err
}

// retryable reports whether joining may succeed on a later attempt: the
// coordinator may simply not be up yet.
func retryable(err error) bool {
	if errors.Is(err, core.ErrConfiguration) || errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.AlreadyExists, codes.Canceled:
		return false
	}
	return true
}
