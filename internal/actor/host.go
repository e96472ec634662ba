// Package actor runs serialized turns per identity.
//
// Every identity gets one goroutine with an inbound mailbox. Turns for the
// same identity run strictly one after another and never interleave, even
// across the suspension points inside a turn. Distinct identities run in
// parallel and share nothing. The goroutine is created on the first message
// and evicted after an idle timeout when nothing is pending for it.
package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrHostClosed is returned for turns submitted to, or still queued on, a closed host.
var ErrHostClosed = errors.New("actor host closed")

// Turn mutates the private state of one identity. It never runs concurrently
// with another turn of the same identity.
type Turn[S any] func(ctx context.Context, state *S) error

// Options tunes mailbox depth and eviction.
type Options struct {
	// MailboxSize bounds queued turns per identity. Senders block when it is full.
	MailboxSize int
	// IdleTimeout evicts an identity's goroutine and state after this long
	// without messages. Zero keeps actors forever.
	IdleTimeout time.Duration
}

type message[S any] struct {
	ctx   context.Context
	turn  Turn[S]
	reply chan error
}

type actor[S any] struct {
	identity string
	state    *S
	mailbox  chan message[S]
	done     chan struct{}
	// pending counts accepted messages not yet answered. Incremented under Host.mu.
	pending atomic.Int64
}

// Host owns the actors of one kind.
type Host[S any] struct {
	name     string
	newState func(identity string) *S
	opts     Options

	mu     sync.Mutex
	actors map[string]*actor[S]
	closed bool
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewHost creates a host. newState builds the initial in-memory state of an
// identity each time its actor is materialized, including after eviction.
func NewHost[S any](name string, newState func(identity string) *S, opts Options) *Host[S] {
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 64
	}
	return &Host[S]{
		name:     name,
		newState: newState,
		opts:     opts,
		actors:   make(map[string]*actor[S]),
		quit:     make(chan struct{}),
	}
}

// Do runs turn as the next turn of identity and returns its error.
//
// If ctx ends while the turn is still queued the turn is skipped and ctx.Err()
// is returned. Once a turn has started it runs to completion with a context
// that is no longer cancelled by ctx, so a read-compute-write sequence is
// never cut in half.
func (h *Host[S]) Do(ctx context.Context, identity string, turn Turn[S]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHostClosed
	}
	a, ok := h.actors[identity]
	if !ok {
		a = h.spawn(identity)
	}
	a.pending.Add(1)
	h.mu.Unlock()

	msg := message[S]{ctx: ctx, turn: turn, reply: make(chan error, 1)}
	select {
	case a.mailbox <- msg:
	case <-ctx.Done():
		a.pending.Add(-1)
		return ctx.Err()
	case <-h.quit:
		a.pending.Add(-1)
		return ErrHostClosed
	}

	select {
	case err := <-msg.reply:
		return err
	case <-a.done:
		// The actor drained its mailbox before exiting; a reply may still be buffered.
		select {
		case err := <-msg.reply:
			return err
		default:
			return ErrHostClosed
		}
	}
}

// spawn must be called with h.mu held.
func (h *Host[S]) spawn(identity string) *actor[S] {
	a := &actor[S]{
		identity: identity,
		state:    h.newState(identity),
		mailbox:  make(chan message[S], h.opts.MailboxSize),
		done:     make(chan struct{}),
	}
	h.actors[identity] = a
	h.wg.Add(1)
	go h.run(a)
	slog.Debug("["+h.name+"] Actor materialized", "identity", identity)
	return a
}

func (h *Host[S]) run(a *actor[S]) {
	defer h.wg.Done()
	defer close(a.done)

	var (
		timer *time.Timer
		idle  <-chan time.Time
	)
	if h.opts.IdleTimeout > 0 {
		timer = time.NewTimer(h.opts.IdleTimeout)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case msg := <-a.mailbox:
			h.handle(a, msg)
			if timer != nil {
				timer.Reset(h.opts.IdleTimeout)
			}
		case <-idle:
			if h.tryEvict(a) {
				return
			}
			timer.Reset(h.opts.IdleTimeout)
		case <-h.quit:
			h.drain(a)
			return
		}
	}
}

func (h *Host[S]) handle(a *actor[S], msg message[S]) {
	defer a.pending.Add(-1)

	if err := msg.ctx.Err(); err != nil {
		msg.reply <- err
		return
	}
	msg.reply <- h.invoke(context.WithoutCancel(msg.ctx), a, msg.turn)
}

func (h *Host[S]) invoke(ctx context.Context, a *actor[S], turn Turn[S]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("["+h.name+"] Turn panicked", "identity", a.identity, "panic", r)
			err = fmt.Errorf("actor %s: turn panicked: %v", a.identity, r)
		}
	}()
	return turn(ctx, a.state)
}

// tryEvict removes a from the registry when no message is pending. Pending is
// only incremented under h.mu, so no sender can hold a reference to an evicted actor.
func (h *Host[S]) tryEvict(a *actor[S]) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if a.pending.Load() != 0 {
		return false
	}
	delete(h.actors, a.identity)
	slog.Debug("["+h.name+"] Actor evicted after idle timeout", "identity", a.identity)
	return true
}

func (h *Host[S]) drain(a *actor[S]) {
	for {
		select {
		case msg := <-a.mailbox:
			msg.reply <- ErrHostClosed
			a.pending.Add(-1)
		default:
			return
		}
	}
}

// Len reports how many identities currently have a live actor.
func (h *Host[S]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.actors)
}

// Close stops accepting turns, lets running turns finish, answers queued
// turns with ErrHostClosed and waits for every actor goroutine to exit.
func (h *Host[S]) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.quit)
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}
