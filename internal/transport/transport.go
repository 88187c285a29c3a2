// Package transport defines the point-to-point message fabric shared by the
// coordinator and its workers.
//
// Every unit owns a Comm. Messages on one directed channel (src -> dst) are
// delivered in issue order and matched to receives in posting order. Data
// never becomes visible in a receive buffer until the owner of the request
// confirms completion with Wait or Test.
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrClosed      = errors.New("transport closed")
	ErrTruncated   = errors.New("message truncated")
	ErrInvalidPeer = errors.New("invalid peer")
)

// Comm is one execution unit's view of the fabric.
type Comm interface {
	// Rank is this unit's index; the coordinator is 0.
	Rank() int
	// Size is the total number of units.
	Size() int
	// Isend starts sending a copy of buf to dst and returns its pending request.
	Isend(dst int, buf []int64) (*Request, error)
	// Irecv posts a receive from src into buf and returns its pending request.
	Irecv(src int, buf []int64) (*Request, error)
	Close() error
}

// Send blocks until the message to dst has been accepted by its receiver.
func Send(ctx context.Context, c Comm, dst int, buf []int64) error {
	req, err := c.Isend(dst, buf)
	if err != nil {
		return err
	}
	return req.Wait(ctx)
}

// Recv blocks until a message from src has landed in buf and returns the
// number of elements received.
func Recv(ctx context.Context, c Comm, src int, buf []int64) (int, error) {
	req, err := c.Irecv(src, buf)
	if err != nil {
		return 0, err
	}
	if err := req.Wait(ctx); err != nil {
		return 0, err
	}
	return req.Count(), nil
}

// WaitAll confirms every request, in order. It returns the first error.
func WaitAll(ctx context.Context, reqs ...*Request) error {
	for i, req := range reqs {
		if err := req.Wait(ctx); err != nil {
			return fmt.Errorf("request %d of %d: %w", i+1, len(reqs), err)
		}
	}
	return nil
}

// Barrier blocks until every unit of the fabric has entered it. Unit 0
// collects a token from every other unit and then releases them.
func Barrier(ctx context.Context, c Comm) error {
	var token [0]int64
	if c.Rank() != 0 {
		if err := Send(ctx, c, 0, token[:]); err != nil {
			return fmt.Errorf("barrier enter: %w", err)
		}
		if _, err := Recv(ctx, c, 0, token[:]); err != nil {
			return fmt.Errorf("barrier release: %w", err)
		}
		return nil
	}

	for peer := 1; peer < c.Size(); peer++ {
		if _, err := Recv(ctx, c, peer, token[:]); err != nil {
			return fmt.Errorf("barrier collect from %d: %w", peer, err)
		}
	}
	for peer := 1; peer < c.Size(); peer++ {
		if err := Send(ctx, c, peer, token[:]); err != nil {
			return fmt.Errorf("barrier release to %d: %w", peer, err)
		}
	}
	return nil
}

// CheckPeer validates a peer index against the fabric size.
func CheckPeer(c Comm, peer int) error {
	if peer < 0 || peer >= c.Size() || peer == c.Rank() {
		return fmt.Errorf("%w: %d (rank %d, size %d)", ErrInvalidPeer, peer, c.Rank(), c.Size())
	}
	return nil
}
