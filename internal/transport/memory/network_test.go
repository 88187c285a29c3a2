package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nemanja-m/scatter/internal/transport"
)

func attach(t *testing.T, n *Network) []transport.Comm {
	t.Helper()
	comms := make([]transport.Comm, n.Size())
	for rank := range n.Size() {
		c, err := n.Comm(rank)
		require.NoError(t, err)
		comms[rank] = c
	}
	return comms
}

func TestNetwork_SendRecv(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)
	ctx := context.Background()

	var g errgroup.Group
	g.Go(func() error {
		return transport.Send(ctx, comms[0], 1, []int64{1, 2, 3})
	})

	buf := make([]int64, 8)
	count, err := transport.Recv(ctx, comms[1], 0, buf)
	require.NoError(t, err)
	require.NoError(t, g.Wait())
	assert.Equal(t, 3, count)
	assert.Equal(t, []int64{1, 2, 3}, buf[:count])
}

func TestNetwork_SendCopiesBuffer(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)

	src := []int64{5, 6}
	req, err := comms[0].Isend(1, src)
	require.NoError(t, err)
	src[0] = 99

	buf := make([]int64, 2)
	_, err = transport.Recv(context.Background(), comms[1], 0, buf)
	require.NoError(t, err)
	require.NoError(t, req.Wait(context.Background()))
	assert.Equal(t, []int64{5, 6}, buf)
}

func TestNetwork_SendIsRendezvous(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)

	req, err := comms[0].Isend(1, []int64{1})
	require.NoError(t, err)

	done, err := req.Test()
	require.NoError(t, err)
	assert.False(t, done, "send must not complete before a receive is posted")

	recv, err := comms[1].Irecv(0, make([]int64, 1))
	require.NoError(t, err)

	require.NoError(t, req.Wait(context.Background()))
	require.NoError(t, recv.Wait(context.Background()))
}

func TestNetwork_PerChannelOrdering(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)
	ctx := context.Background()

	var sends []*transport.Request
	for i := range 5 {
		req, err := comms[0].Isend(1, []int64{int64(i)})
		require.NoError(t, err)
		sends = append(sends, req)
	}

	for i := range 5 {
		buf := make([]int64, 1)
		_, err := transport.Recv(ctx, comms[1], 0, buf)
		require.NoError(t, err)
		assert.Equal(t, int64(i), buf[0])
	}
	require.NoError(t, transport.WaitAll(ctx, sends...))
}

func TestNetwork_UnconfirmedReceiveLeavesBufferUntouched(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)

	buf := []int64{0}
	recv, err := comms[1].Irecv(0, buf)
	require.NoError(t, err)
	send, err := comms[0].Isend(1, []int64{42})
	require.NoError(t, err)

	require.NoError(t, send.Wait(context.Background()))
	assert.Equal(t, int64(0), buf[0])
	assert.False(t, recv.Confirmed())

	require.NoError(t, recv.Wait(context.Background()))
	assert.Equal(t, int64(42), buf[0])
}

func TestNetwork_InvalidPeers(t *testing.T) {
	n := NewNetwork(3)
	comms := attach(t, n)

	_, err := comms[0].Isend(0, nil)
	require.ErrorIs(t, err, transport.ErrInvalidPeer)
	_, err = comms[0].Irecv(3, nil)
	require.ErrorIs(t, err, transport.ErrInvalidPeer)
	_, err = comms[1].Isend(-1, nil)
	require.ErrorIs(t, err, transport.ErrInvalidPeer)

	_, err = n.Comm(1)
	require.Error(t, err, "rank 1 is already attached")
	_, err = n.Comm(7)
	require.ErrorIs(t, err, transport.ErrInvalidPeer)
}

func TestNetwork_Close(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)

	recv, err := comms[1].Irecv(0, make([]int64, 1))
	require.NoError(t, err)
	require.NoError(t, comms[1].Close())
	require.ErrorIs(t, recv.Wait(context.Background()), transport.ErrClosed)

	_, err = comms[1].Isend(0, []int64{1})
	require.ErrorIs(t, err, transport.ErrClosed)

	send, err := comms[0].Isend(1, []int64{1})
	require.NoError(t, err)
	require.ErrorIs(t, send.Wait(context.Background()), transport.ErrClosed)

	require.NoError(t, comms[1].Close())
}

func TestNetwork_CloseFailsWaitingReceives(t *testing.T) {
	n := NewNetwork(2)
	comms := attach(t, n)

	recv, err := comms[0].Irecv(1, make([]int64, 1))
	require.NoError(t, err)
	unmatched, err := comms[0].Isend(1, []int64{3})
	require.NoError(t, err)

	n.Close()
	require.ErrorIs(t, recv.Wait(context.Background()), transport.ErrClosed)
	require.ErrorIs(t, unmatched.Wait(context.Background()), transport.ErrClosed)
}

func TestBarrier(t *testing.T) {
	const units = 5
	n := NewNetwork(units)
	comms := attach(t, n)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entered := make(chan int, units)
	g, gctx := errgroup.WithContext(ctx)
	for rank := range units {
		g.Go(func() error {
			if rank == units-1 {
				time.Sleep(20 * time.Millisecond)
			}
			entered <- rank
			return transport.Barrier(gctx, comms[rank])
		})
	}
	require.NoError(t, g.Wait())
	close(entered)

	seen := 0
	for range entered {
		seen++
	}
	assert.Equal(t, units, seen)
}

func TestBarrier_CoordinatorWaitsForEveryone(t *testing.T) {
	n := NewNetwork(3)
	comms := attach(t, n)

	released := make(chan struct{})
	go func() {
		_ = transport.Barrier(context.Background(), comms[0])
		close(released)
	}()
	go func() {
		_ = transport.Barrier(context.Background(), comms[1])
	}()

	select {
	case <-released:
		t.Fatal("barrier released before unit 2 entered")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, transport.Barrier(context.Background(), comms[2]))
	<-released
}
