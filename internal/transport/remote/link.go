package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/nemanja-m/scatter/internal/shared/proto"
	"github.com/nemanja-m/scatter/internal/transport"
	"github.com/nemanja-m/scatter/pkg/core"
)

const closeGrace = 5 * time.Second

// Link is a worker's end of the star and its transport.Comm. The only
// reachable peer is the coordinator.
type Link struct {
	rank   int
	size   int
	stream proto.Exchange_ConnectClient
	cancel context.CancelFunc

	box  *transport.Mailbox
	out  *transport.Outbox
	done chan struct{}

	closeOnce sync.Once
}

// Dial opens the Connect stream for rank and waits for the coordinator's
// plan. ctx bounds the whole life of the link; joinTimeout, if positive,
// bounds only the wait for the plan.
func Dial(ctx context.Context, cc grpc.ClientConnInterface, rank int, joinTimeout time.Duration) (*Link, core.Plan, error) {
	sctx, cancel := context.WithCancel(metadata.AppendToOutgoingContext(ctx, RankKey, strconv.Itoa(rank)))

	var timer *time.Timer
	if joinTimeout > 0 {
		timer = time.AfterFunc(joinTimeout, cancel)
	}

	stream, err := proto.NewExchangeClient(cc).Connect(sctx, grpc.WaitForReady(true))
	if err != nil {
		cancel()
		return nil, core.Plan{}, fmt.Errorf("failed to open stream: %w", err)
	}
	header, err := stream.Header()
	if timer != nil && !timer.Stop() {
		cancel()
		return nil, core.Plan{}, fmt.Errorf("no plan from coordinator within %s", joinTimeout)
	}
	if err != nil {
		cancel()
		return nil, core.Plan{}, fmt.Errorf("failed to join run: %w", err)
	}

	if len(header.Get(runIDKey)) == 0 {
		// Rejected before any header was sent; the status follows as the
		// trailer.
		_, err := stream.Recv()
		cancel()
		if err == nil || errors.Is(err, io.EOF) {
			err = errors.New("coordinator ended the stream without a plan")
		}
		return nil, core.Plan{}, fmt.Errorf("failed to join run: %w", err)
	}
	plan, err := DecodePlan(header)
	if err != nil {
		cancel()
		return nil, core.Plan{}, err
	}
	if rank < 1 || rank >= plan.Units {
		cancel()
		return nil, core.Plan{}, core.ConfigErrorf("rank %d outside a run of %d units", rank, plan.Units)
	}

	l := &Link{
		rank:   rank,
		size:   plan.Units,
		stream: stream,
		cancel: cancel,
		box:    transport.NewMailbox(),
		done:   make(chan struct{}),
	}
	l.out = transport.NewOutbox(func(values []int64) error {
		return stream.Send(newFrame(rank, 0, values))
	})
	go l.receive()
	return l, plan, nil
}

func (l *Link) receive() {
	defer close(l.done)
	for {
		f, err := l.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.box.Shut(transport.ErrClosed)
			} else {
				l.box.Close(fmt.Errorf("%w: %w", transport.ErrClosed, err))
			}
			return
		}
		if err := route(f, 0, l.rank); err != nil {
			l.box.Close(err)
			l.cancel()
			return
		}
		if err := l.box.Deliver(f.GetValues(), nil); err != nil {
			return
		}
	}
}

func (l *Link) Rank() int { return l.rank }

func (l *Link) Size() int { return l.size }

func (l *Link) Isend(dst int, buf []int64) (*transport.Request, error) {
	if err := l.check(dst); err != nil {
		return nil, err
	}
	req := transport.NewSendRequest(dst, len(buf))
	l.out.Enqueue(slices.Clone(buf), req)
	return req, nil
}

func (l *Link) Irecv(src int, buf []int64) (*transport.Request, error) {
	if err := l.check(src); err != nil {
		return nil, err
	}
	req := transport.NewRecvRequest(src, buf)
	l.box.Post(req)
	return req, nil
}

func (l *Link) check(peer int) error {
	if err := transport.CheckPeer(l, peer); err != nil {
		return err
	}
	if peer != 0 {
		return fmt.Errorf("%w: worker %d can only reach the coordinator", transport.ErrInvalidPeer, l.rank)
	}
	return nil
}

// Close flushes queued sends, hangs up and waits for the coordinator to
// end the stream.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.out.Close()
		err = l.stream.CloseSend()

		select {
		case <-l.done:
		case <-time.After(closeGrace):
			l.cancel()
			<-l.done
		}
		l.cancel()
	})
	return err
}
