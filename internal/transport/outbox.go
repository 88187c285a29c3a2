package transport

import (
	"sync"
)

type outbound struct {
	payload []int64
	req     *Request
}

// Outbox serializes writes to a stream that must not be written
// concurrently. Each enqueued send is fulfilled once its write returns, in
// enqueue order.
type Outbox struct {
	write func(payload []int64) error

	mu     sync.Mutex
	queue  []outbound
	wake   chan struct{}
	closed bool
	err    error
	done   chan struct{}
}

func NewOutbox(write func(payload []int64) error) *Outbox {
	o := &Outbox{
		write: write,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go o.run()
	return o
}

// Enqueue schedules payload for writing. The payload must not be modified
// by the caller afterwards.
func (o *Outbox) Enqueue(payload []int64, req *Request) {
	o.mu.Lock()
	if o.closed {
		err := o.err
		if err == nil {
			err = ErrClosed
		}
		o.mu.Unlock()
		req.Fulfill(nil, err)
		return
	}
	o.queue = append(o.queue, outbound{payload: payload, req: req})
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting sends and blocks until every queued send has been
// written or failed.
func (o *Outbox) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		select {
		case o.wake <- struct{}{}:
		default:
		}
	}
	o.mu.Unlock()
	<-o.done
}

func (o *Outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return
			}
			<-o.wake
			continue
		}
		next := o.queue[0]
		o.queue[0] = outbound{}
		o.queue = o.queue[1:]
		failed := o.err
		o.mu.Unlock()

		if failed != nil {
			next.req.Fulfill(nil, failed)
			continue
		}
		if err := o.write(next.payload); err != nil {
			o.mu.Lock()
			o.err = err
			o.mu.Unlock()
			next.req.Fulfill(nil, err)
			continue
		}
		next.req.Fulfill(nil, nil)
	}
}
