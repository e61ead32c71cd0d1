package bridge

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrChannelClosed is returned by Send once the receiver has been closed
	// or the channel was closed for sending.
	ErrChannelClosed = errors.New("coordinate channel closed")

	// ErrChannelAlreadyConsumed is returned when the receiver is taken twice.
	// It always indicates a wiring bug.
	ErrChannelAlreadyConsumed = errors.New("coordinate channel receiver already taken")
)

// queue is the unbounded FIFO shared by every Sender and the Receiver.
type queue struct {
	mu         sync.Mutex
	items      []Point
	sendClosed bool
	recvClosed bool

	// ready holds at most one pending wake-up for the receiver.
	ready chan struct{}
}

func (q *queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Channel is an unbounded multi-producer, single-consumer queue of points.
type Channel struct {
	q *queue

	mu sync.Mutex
	rx *Receiver
}

// NewChannel creates a channel whose receiver can be taken exactly once.
func NewChannel() *Channel {
	q := &queue{ready: make(chan struct{}, 1)}
	return &Channel{
		q:  q,
		rx: &Receiver{q: q},
	}
}

// Sender returns a producer handle. Senders are plain values; copy them freely.
func (c *Channel) Sender() Sender {
	return Sender{q: c.q}
}

// TakeReceiver hands out the only receiver. Every call after the first fails
// with ErrChannelAlreadyConsumed.
func (c *Channel) TakeReceiver() (*Receiver, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rx == nil {
		return nil, ErrChannelAlreadyConsumed
	}
	rx := c.rx
	c.rx = nil
	return rx, nil
}

// MustTakeReceiver is TakeReceiver for startup wiring: a second call panics.
func (c *Channel) MustTakeReceiver() *Receiver {
	rx, err := c.TakeReceiver()
	if err != nil {
		panic(err)
	}
	return rx
}

// Close stops accepting points. The receiver still drains what was queued
// before Recv reports end of stream.
func (c *Channel) Close() {
	c.q.mu.Lock()
	c.q.sendClosed = true
	c.q.mu.Unlock()
	c.q.wake()
}

// Sender pushes points into a Channel. It is safe for concurrent use.
type Sender struct {
	q *queue
}

// Send enqueues p without blocking.
func (s Sender) Send(p Point) error {
	s.q.mu.Lock()
	if s.q.recvClosed || s.q.sendClosed {
		s.q.mu.Unlock()
		return ErrChannelClosed
	}
	s.q.items = append(s.q.items, p)
	s.q.mu.Unlock()

	s.q.wake()
	return nil
}

// Receiver is the single consumer side of a Channel.
type Receiver struct {
	q *queue
}

// Recv blocks until a point is available. ok is false once the channel is
// closed and drained, after the receiver was closed, or when ctx is done.
func (r *Receiver) Recv(ctx context.Context) (p Point, ok bool) {
	for {
		r.q.mu.Lock()
		if r.q.recvClosed {
			r.q.mu.Unlock()
			return Point{}, false
		}
		if len(r.q.items) > 0 {
			p = r.q.items[0]
			r.q.items = r.q.items[1:]
			if len(r.q.items) == 0 {
				r.q.items = nil
			}
			r.q.mu.Unlock()
			return p, true
		}
		if r.q.sendClosed {
			r.q.mu.Unlock()
			return Point{}, false
		}
		r.q.mu.Unlock()

		select {
		case <-r.q.ready:
		case <-ctx.Done():
			return Point{}, false
		}
	}
}

// Len reports how many points are queued.
func (r *Receiver) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Close drops the receiver. Pending points are discarded and later sends fail
// with ErrChannelClosed.
func (r *Receiver) Close() {
	r.q.mu.Lock()
	r.q.recvClosed = true
	r.q.items = nil
	r.q.mu.Unlock()
	r.q.wake()
}
