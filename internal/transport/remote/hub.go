package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/shared/proto"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/core"
)

// Hub is the coordinator's end of the star. It serves the Exchange service
// and is the transport.Comm of unit 0. A send is complete once its frame
// has been written to the worker's stream.
type Hub struct {
	proto.UnimplementedExchangeServer

	plan   core.Plan
	logger logging.Logger

	boxes []*transport.Mailbox // inbound, by worker rank

	mu      sync.Mutex
	peers   []*transport.Outbox // outbound, by worker rank
	claimed []bool
	joined  int
	ready   chan struct{}
	closed  bool
}

func NewHub(plan core.Plan, logger logging.Logger) *Hub {
	boxes := make([]*transport.Mailbox, plan.Units)
	for rank := 1; rank < plan.Units; rank++ {
		boxes[rank] = transport.NewMailbox()
	}
	h := &Hub{
		plan:    plan,
		logger:  logger,
		boxes:   boxes,
		peers:   make([]*transport.Outbox, plan.Units),
		claimed: make([]bool, plan.Units),
		ready:   make(chan struct{}),
	}
	if plan.Units <= 1 {
		close(h.ready)
	}
	return h
}

// WaitForWorkers blocks until every worker of the plan is connected.
func (h *Hub) WaitForWorkers(ctx context.Context) error {
	select {
	case <-h.ready:
		return nil
	case <-ctx.Done():
		h.mu.Lock()
		joined := h.joined
		h.mu.Unlock()
		return fmt.Errorf("%d of %d workers connected: %w", joined, h.plan.Workers(), ctx.Err())
	}
}

// Connected returns the ranks of the workers currently connected.
func (h *Hub) Connected() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ranks []int
	for rank, out := range h.peers {
		if out != nil {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}

func (h *Hub) Connect(stream proto.Exchange_ConnectServer) error {
	rank, err := h.claim(stream.Context())
	if err != nil {
		return err
	}

	if err := stream.SendHeader(EncodePlan(h.plan)); err != nil {
		h.mu.Lock()
		h.claimed[rank] = false
		h.mu.Unlock()
		return err
	}

	out := transport.NewOutbox(func(values []int64) error {
		return stream.Send(newFrame(0, rank, values))
	})
	h.join(rank, out)
	h.logger.Info("Worker connected", "run_id", h.plan.RunID, "worker", rank)

	err = h.receive(stream, rank)
	h.release(rank, out)
	if err != nil {
		h.logger.Error("Worker stream failed", "run_id", h.plan.RunID, "worker", rank, "error", err)
		h.boxes[rank].Close(fmt.Errorf("%w: worker %d: %w", transport.ErrClosed, rank, err))
		return err
	}
	h.logger.Debug("Worker disconnected", "run_id", h.plan.RunID, "worker", rank)
	h.boxes[rank].Shut(fmt.Errorf("%w: worker %d hung up", transport.ErrClosed, rank))
	return nil
}

func (h *Hub) receive(stream proto.Exchange_ConnectServer, rank int) error {
	for {
		f, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := route(f, rank, 0); err != nil {
			return status.Errorf(codes.InvalidArgument, "stream of worker %d: %v", rank, err)
		}
		if err := h.boxes[rank].Deliver(f.GetValues(), nil); err != nil {
			return status.Error(codes.Unavailable, err.Error())
		}
	}
}

func (h *Hub) claim(ctx context.Context) (int, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(RankKey)
	if len(values) != 1 {
		return 0, status.Errorf(codes.InvalidArgument, "exactly one %s required", RankKey)
	}
	rank, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "%s: %v", RankKey, err)
	}
	if rank < 1 || rank >= h.plan.Units {
		return 0, status.Errorf(codes.InvalidArgument, "rank %d outside 1..%d", rank, h.plan.Units-1)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, status.Error(codes.Unavailable, "run is over")
	}
	if h.claimed[rank] {
		return 0, status.Errorf(codes.AlreadyExists, "rank %d already connected", rank)
	}
	h.claimed[rank] = true
	return rank, nil
}

func (h *Hub) join(rank int, out *transport.Outbox) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[rank] = out
	h.joined++
	if h.joined == h.plan.Workers() {
		close(h.ready)
	}
}

// release detaches rank after its stream ended. Queued sends are flushed
// first, while the stream is still writable.
func (h *Hub) release(rank int, out *transport.Outbox) {
	out.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[rank] = nil
}

func (h *Hub) Rank() int { return 0 }

func (h *Hub) Size() int { return h.plan.Units }

func (h *Hub) Isend(dst int, buf []int64) (*transport.Request, error) {
	if err := transport.CheckPeer(h, dst); err != nil {
		return nil, err
	}
	h.mu.Lock()
	out, closed := h.peers[dst], h.closed
	h.mu.Unlock()
	if closed {
		return nil, transport.ErrClosed
	}
	if out == nil {
		return nil, fmt.Errorf("%w: worker %d is not connected", transport.ErrClosed, dst)
	}

	req := transport.NewSendRequest(dst, len(buf))
	out.Enqueue(slices.Clone(buf), req)
	return req, nil
}

func (h *Hub) Irecv(src int, buf []int64) (*transport.Request, error) {
	if err := transport.CheckPeer(h, src); err != nil {
		return nil, err
	}
	req := transport.NewRecvRequest(src, buf)
	h.boxes[src].Post(req)
	return req, nil
}

// Close fails every receive still pending and rejects new workers. Worker
// streams end when the workers hang up or the server stops.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	for _, box := range h.boxes {
		if box != nil {
			box.Close(transport.ErrClosed)
		}
	}
	return nil
}
