package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/internal/transport/remote"
	"github.com/nemanja-m/scatter/pkg/core"
)

type CoordinatorClient struct {
	conn *grpc.ClientConn

	coordinatorAddr string
	joinTimeout     time.Duration
}

// NewCoordinatorClient prepares a connection to the coordinator. Extra
// options are appended to the defaults.
func NewCoordinatorClient(cfg config.CoordinatorConnConfig, opts ...grpc.DialOption) (*CoordinatorClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(
			keepalive.ClientParameters{
				Time:                cfg.GRPC.KeepaliveTime,
				Timeout:             cfg.GRPC.KeepaliveTimeout,
				PermitWithoutStream: true,
			},
		),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to coordinator: %w", err)
	}

	return &CoordinatorClient{
		conn:            conn,
		coordinatorAddr: cfg.Addr,
		joinTimeout:     cfg.DialTimeout,
	}, nil
}

// Join connects as the given rank and returns the worker's end of the
// fabric together with the run plan.
func (c *CoordinatorClient) Join(ctx context.Context, rank int) (transport.Comm, core.Plan, error) {
	link, plan, err := remote.Dial(ctx, c.conn, rank, c.joinTimeout)
	if err != nil {
		return nil, core.Plan{}, fmt.Errorf("failed to join coordinator at %s: %w", c.coordinatorAddr, err)
	}
	return link, plan, nil
}

func (c *CoordinatorClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
