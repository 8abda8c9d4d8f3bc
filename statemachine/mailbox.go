package statemachine

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Mailbox serializes Fire calls for one machine through a single goroutine,
// so transitions and their hooks run strictly one after another no matter how
// many goroutines submit them.
type Mailbox[S ~string] struct {
	machine  *Machine[S]
	inbox    chan fireRequest[S]
	stop     chan struct{}
	done     chan struct{}
	dead     *atomic.Bool
	stopOnce sync.Once
}

type fireRequest[S ~string] struct {
	ctx     context.Context //nolint:containedctx // Carried to the mailbox goroutine for hooks and spans
	name    string
	payload []any
	result  chan fireResult[S]
}

type fireResult[S ~string] struct {
	state S
	err   error
}

// NewMailbox starts a mailbox for machine. depth is the inbox buffer size
// (0 for unbuffered). The mailbox runs until ctx is canceled or Stop is called.
func NewMailbox[S ~string](ctx context.Context, machine *Machine[S], depth int) *Mailbox[S] {
	b := &Mailbox[S]{
		machine: machine,
		inbox:   make(chan fireRequest[S], max(depth, 0)),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		dead:    atomic.NewBool(false),
	}

	go b.run(ctx)

	return b
}

// Machine returns the machine behind the mailbox. Reads such as Current are
// safe to call directly; Fire should go through the mailbox.
func (b *Mailbox[S]) Machine() *Machine[S] {
	return b.machine
}

// Fire submits a transition and waits for its result. If ctx is canceled while
// waiting, the request may still be applied later.
func (b *Mailbox[S]) Fire(ctx context.Context, name string, payload ...any) (S, error) {
	var zero S

	if ctx == nil {
		ctx = context.Background()
	}

	if b.dead.Load() {
		return zero, ErrMailboxClosed
	}

	req := fireRequest[S]{
		ctx:     ctx,
		name:    name,
		payload: payload,
		result:  make(chan fireResult[S], 1),
	}

	pending := mailboxPending.WithLabelValues(b.machine.name)
	pending.Inc()

	select {
	case b.inbox <- req:
	case <-b.done:
		pending.Dec()

		return zero, ErrMailboxClosed
	case <-ctx.Done():
		pending.Dec()

		return zero, ctx.Err()
	}

	select {
	case res := <-req.result:
		return res.state, res.err
	case <-b.done:
		// The request may have been processed right before the mailbox stopped.
		select {
		case res := <-req.result:
			return res.state, res.err
		default:
			// Never dequeued, so run never counted it out.
			pending.Dec()

			return zero, ErrMailboxClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Stop shuts the mailbox down and waits for the in-flight request, if any, to finish.
// Requests still queued are answered with ErrMailboxClosed.
func (b *Mailbox[S]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})

	<-b.done
}

func (b *Mailbox[S]) run(ctx context.Context) {
	defer close(b.done)
	defer b.dead.Store(true)

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stop:
			return
		case req := <-b.inbox:
			mailboxPending.WithLabelValues(b.machine.name).Dec()

			state, err := b.machine.Fire(req.ctx, req.name, req.payload...)
			req.result <- fireResult[S]{state: state, err: err}
		}
	}
}
