// Package memory provides an in-process fabric: every unit is a goroutine
// and every message is a copy handed over through a mailbox.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nemanja-m/scatter/internal/transport"
)

// Network connects size units. Sends are rendezvous: a send request is
// fulfilled when the receiver has posted the matching receive.
type Network struct {
	size  int
	boxes [][]*transport.Mailbox // boxes[dst][src]

	mu    sync.Mutex
	comms map[int]*comm
}

func NewNetwork(size int) *Network {
	boxes := make([][]*transport.Mailbox, size)
	for dst := range size {
		boxes[dst] = make([]*transport.Mailbox, size)
		for src := range size {
			if src != dst {
				boxes[dst][src] = transport.NewMailbox()
			}
		}
	}
	return &Network{
		size:  size,
		boxes: boxes,
		comms: make(map[int]*comm),
	}
}

func (n *Network) Size() int {
	return n.size
}

// Comm returns the endpoint of the given unit. Each rank can be attached once.
func (n *Network) Comm(rank int) (transport.Comm, error) {
	if rank < 0 || rank >= n.size {
		return nil, fmt.Errorf("%w: rank %d outside network of %d", transport.ErrInvalidPeer, rank, n.size)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.comms[rank]; exists {
		return nil, fmt.Errorf("rank %d already attached", rank)
	}
	c := &comm{net: n, rank: rank}
	n.comms[rank] = c
	return c, nil
}

// Close fails every receive still waiting anywhere in the network.
func (n *Network) Close() {
	for dst := range n.size {
		for src := range n.size {
			if box := n.boxes[dst][src]; box != nil {
				box.Close(transport.ErrClosed)
			}
		}
	}
}

type comm struct {
	net  *Network
	rank int

	mu     sync.Mutex
	closed bool
}

func (c *comm) Rank() int { return c.rank }

func (c *comm) Size() int { return c.net.size }

func (c *comm) Isend(dst int, buf []int64) (*transport.Request, error) {
	if err := c.check(dst); err != nil {
		return nil, err
	}
	req := transport.NewSendRequest(dst, len(buf))
	err := c.net.boxes[dst][c.rank].Deliver(slices.Clone(buf), func(err error) {
		req.Fulfill(nil, err)
	})
	if err != nil {
		req.Fulfill(nil, err)
	}
	return req, nil
}

func (c *comm) Irecv(src int, buf []int64) (*transport.Request, error) {
	if err := c.check(src); err != nil {
		return nil, err
	}
	req := transport.NewRecvRequest(src, buf)
	c.net.boxes[c.rank][src].Post(req)
	return req, nil
}

// Close detaches the unit. Its inbound mailboxes fail pending receives.
func (c *comm) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for src := range c.net.size {
		if box := c.net.boxes[c.rank][src]; box != nil {
			box.Close(transport.ErrClosed)
		}
	}
	return nil
}

func (c *comm) check(peer int) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}
	return transport.CheckPeer(c, peer)
}
