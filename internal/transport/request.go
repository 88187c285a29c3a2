package transport

import (
	"context"
	"fmt"
)

type Kind int

const (
	KindSend Kind = iota
	KindRecv
)

func (k Kind) String() string {
	if k == KindSend {
		return "send"
	}
	return "recv"
}

// Request is the completion handle of one in-flight send or receive.
//
// The fabric fulfills a request from its own goroutines; only the owner
// confirms it. A receive buffer is written during confirmation, on the
// owner's goroutine, so a buffer whose request was never confirmed still
// holds whatever it held before the receive was posted.
type Request struct {
	kind Kind
	peer int
	buf  []int64

	ready  chan struct{}
	staged []int64
	err    error

	confirmed bool
	count     int
}

func NewSendRequest(peer int, n int) *Request {
	return &Request{kind: KindSend, peer: peer, count: n, ready: make(chan struct{})}
}

func NewRecvRequest(peer int, buf []int64) *Request {
	return &Request{kind: KindRecv, peer: peer, buf: buf, ready: make(chan struct{})}
}

func (r *Request) Kind() Kind { return r.kind }

func (r *Request) Peer() int { return r.peer }

// Fulfill is called exactly once by the fabric: for a receive with the
// matched message, for a send once the message was accepted.
func (r *Request) Fulfill(payload []int64, err error) {
	r.staged = payload
	r.err = err
	close(r.ready)
}

// Wait blocks until the request is fulfilled and confirms it.
func (r *Request) Wait(ctx context.Context) error {
	if r.confirmed {
		return r.err
	}
	select {
	case <-r.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.confirm()
	return r.err
}

// Test confirms the request if it has been fulfilled, without blocking.
func (r *Request) Test() (bool, error) {
	if r.confirmed {
		return true, r.err
	}
	select {
	case <-r.ready:
		r.confirm()
		return true, r.err
	default:
		return false, nil
	}
}

// Confirmed reports whether completion has been observed by the owner.
// It never makes progress on its own.
func (r *Request) Confirmed() bool {
	return r.confirmed
}

// Count is the number of elements transferred. It is only meaningful once
// the request is confirmed.
func (r *Request) Count() int {
	return r.count
}

func (r *Request) confirm() {
	r.confirmed = true
	if r.kind != KindRecv || r.err != nil {
		return
	}
	if len(r.staged) > len(r.buf) {
		r.err = fmt.Errorf("%w: %d elements from %d into buffer of %d",
			ErrTruncated, len(r.staged), r.peer, len(r.buf))
	}
	r.count = copy(r.buf, r.staged)
	r.staged = nil
}
