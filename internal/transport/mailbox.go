package transport

import (
	"sync"
)

type message struct {
	payload []int64
	settled func(err error)
}

// Mailbox holds the traffic of one directed channel on its receiving side.
// Messages and posted receives are both queued and matched strictly in
// arrival and posting order.
type Mailbox struct {
	mu       sync.Mutex
	messages []message
	posted   []*Request
	err      error
	shut     error
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post queues a receive request.
func (m *Mailbox) Post(r *Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		r.Fulfill(nil, m.err)
		return
	}
	if m.shut != nil && len(m.messages) == 0 {
		r.Fulfill(nil, m.shut)
		return
	}
	m.posted = append(m.posted, r)
	m.match()
}

// Deliver queues an incoming message. settled, if set, runs with nil once
// the message has been paired with a posted receive, or with the close
// error if the mailbox closes first. Delivering to a closed mailbox returns
// its close error and drops the message.
func (m *Mailbox) Deliver(payload []int64, settled func(err error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.shut != nil {
		return m.shut
	}
	m.messages = append(m.messages, message{payload: payload, settled: settled})
	m.match()
	return nil
}

// Shut ends the sending side with err. Messages already delivered stay
// matchable; every receive beyond them fails with err, as does any further
// delivery.
func (m *Mailbox) Shut(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil || m.shut != nil {
		return
	}
	m.shut = err
	for _, r := range m.posted {
		r.Fulfill(nil, err)
	}
	m.posted = nil
}

// Close fails every pending and future receive with err, and settles every
// unmatched message with it. Receives that were already matched are
// unaffected.
func (m *Mailbox) Close(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return
	}
	m.err = err
	for _, r := range m.posted {
		r.Fulfill(nil, err)
	}
	m.posted = nil
	for _, msg := range m.messages {
		if msg.settled != nil {
			msg.settled(err)
		}
	}
	m.messages = nil
}

// Pending returns the number of unmatched messages and receives.
func (m *Mailbox) Pending() (messages, receives int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), len(m.posted)
}

func (m *Mailbox) match() {
	for len(m.messages) > 0 && len(m.posted) > 0 {
		msg, r := m.messages[0], m.posted[0]
		m.messages[0] = message{}
		m.messages = m.messages[1:]
		m.posted[0] = nil
		m.posted = m.posted[1:]

		r.Fulfill(msg.payload, nil)
		if msg.settled != nil {
			msg.settled(nil)
		}
	}
}
