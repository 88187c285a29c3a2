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
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/dataset"
	"github.com/nemanja-m/scatter/pkg/local"

	_ "github.com/nemanja-m/scatter/examples/cube"
	_ "github.com/nemanja-m/scatter/examples/negate"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := config.LocalFlags()
	output := fs.String("output", "", "file to write the final array to")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Println(err)
		return 1
	}

	cfg, err := config.LoadLocal(fs)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}
	logger := logging.NewLogger(cfg.Logging)

	var data []int64
	if cfg.Run.Input != "" {
		data, err = dataset.Load(cfg.Run.Input)
		if err != nil {
			fmt.Println(core.ConfigErrorf("cannot load dataset: %v", err))
			return 1
		}
	} else {
		data = dataset.Sequence(cfg.Run.DatasetSize)
	}

	var opts []local.Option
	var bar *pb.ProgressBar
	if cfg.Progress {
		bar = pb.New(cfg.Run.Units - 1).Prefix("Collect")
		bar.Output = os.Stderr
		bar.Start()
		opts = append(opts, local.WithObserver(progressObserver{bar}))
	}

	engine, err := local.NewEngine(cfg.Run, logger, opts...)
	if err != nil {
		fmt.Println(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := engine.Run(ctx, data)
	if bar != nil {
		bar.Finish()
	}

	if res != nil && res.Report != nil {
		if err := res.Report.Print(os.Stdout); err != nil {
			logger.Error("Failed to print report", "error", err)
		}
		if *output != "" {
			if err := dataset.Save(*output, res.Report.Result); err != nil {
				logger.Error("Failed to write result", "path", *output, "error", err)
				return 1
			}
		}
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, core.ErrConfiguration):
		fmt.Println(runErr)
	case errors.Is(runErr, core.ErrRaceCondition):
		logger.Error("Result is not trustworthy", "error", runErr)
	default:
		logger.Error("Run failed", "error", runErr)
	}
	return 1
}

// progressObserver advances the bar once per collected segment.
type progressObserver struct {
	bar *pb.ProgressBar
}

func (o progressObserver) SegmentDispatched(core.Segment) {}

func (o progressObserver) SegmentCollected(core.Segment) {
	o.bar.Increment()
}
