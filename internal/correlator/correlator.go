// Package correlator implements the two request/response correlation
// modes the Mostro protocol needs: a numeric request_id keyed mode
// for replies to our own requests, and an (action, order_id) keyed
// mode for server-initiated lifecycle events we never explicitly
// asked for, per spec.md §4.F.
package correlator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mostro-go/client/internal/domain"
)

var (
	// ErrTimeout is the result delivered when a pending request or
	// waiter's deadline elapses before a matching message arrives.
	ErrTimeout = errors.New("correlator: timed out waiting for a reply")
	// ErrDisconnected is delivered to every outstanding completion when
	// DisconnectAll is called.
	ErrDisconnected = errors.New("correlator: disconnected")
)

// DefaultTimeout is the fallback applied when BeginRequest/AwaitAction
// are called with timeout <= 0, matching spec.md §5's documented
// 10,000ms default for trade actions.
const DefaultTimeout = 10 * time.Second

// Result is what a Future eventually carries: the matched message, or
// a non-nil Err (ErrTimeout or ErrDisconnected).
type Result struct {
	Msg *domain.MostroMessage
	Err error
}

// Future is a single-shot, at-most-once-resolved completion. P2
// (spec.md §8): resolve fires at most once across reply, timeout, and
// disconnect.
type Future struct {
	ch chan Result
}

// Wait blocks until the future resolves or ctx is done, whichever
// comes first. The correlator's own timeout always resolves the
// future even if the caller never calls Wait; ctx here only lets a
// caller abandon waiting early without leaking the goroutine.
func (f *Future) Wait(ctx context.Context) (*domain.MostroMessage, error) {
	select {
	case r := <-f.ch:
		return r.Msg, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type pendingRequest struct {
	future *Future
	timer  *time.Timer
	once   sync.Once
}

func (p *pendingRequest) resolve(r Result) {
	p.once.Do(func() {
		p.timer.Stop()
		p.future.ch <- r
	})
}

type waiterKey struct {
	action  domain.Action
	orderID string
}

type waiterEntry struct {
	future *Future
	timer  *time.Timer
	once   sync.Once
}

func (w *waiterEntry) resolve(r Result) {
	w.once.Do(func() {
		w.timer.Stop()
		w.future.ch <- r
	})
}

// Correlator is the sole mutable shared structure owned by the
// Orchestrator; all access is serialized through mu, per spec.md §5.
type Correlator struct {
	mu             sync.Mutex
	nextID         uint32
	pending        map[uint32]*pendingRequest
	waiters        map[waiterKey][]*waiterEntry
	defaultTimeout time.Duration
}

// New creates an empty Correlator. defaultTimeout <= 0 falls back to
// DefaultTimeout.
func New(defaultTimeout time.Duration) *Correlator {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Correlator{
		pending:        make(map[uint32]*pendingRequest),
		waiters:        make(map[waiterKey][]*waiterEntry),
		defaultTimeout: defaultTimeout,
	}
}

// BeginRequest allocates the next request_id and a completion for it.
// It never blocks — id allocation is synchronous metadata bookkeeping,
// per spec.md §4.F. P1 (spec.md §8): ids are strictly increasing and
// never reused within a process.
func (c *Correlator) BeginRequest(timeout time.Duration) (uint32, *Future) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	future := &Future{ch: make(chan Result, 1)}
	pr := &pendingRequest{future: future}
	pr.timer = time.AfterFunc(timeout, func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		pr.resolve(Result{Err: ErrTimeout})
	})
	c.pending[id] = pr
	c.mu.Unlock()

	return id, future
}

// Deliver fulfils the pending request for id, if any. Returns false
// when there is no such pending request (already timed out, already
// delivered, or never allocated) — the caller should fall back to
// treating the message as a general, unmatched DM.
func (c *Correlator) Deliver(id uint32, msg *domain.MostroMessage) bool {
	c.mu.Lock()
	pr, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	pr.resolve(Result{Msg: msg})
	return true
}

// FailRequest fails the pending request for id with err instead of
// waiting for a reply or a timeout — used when publishing the request
// itself fails, so the slot does not sit idle until its timer fires.
// Returns false when there is no such pending request.
func (c *Correlator) FailRequest(id uint32, err error) bool {
	c.mu.Lock()
	pr, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	pr.resolve(Result{Err: err})
	return true
}

// AwaitAction registers a Mode-2 waiter on (action, orderID). Multiple
// concurrent waiters may share the same key; all of them resolve on
// the first matching message, per spec.md §4.F.
func (c *Correlator) AwaitAction(action domain.Action, orderID string, timeout time.Duration) *Future {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	key := waiterKey{action: action, orderID: orderID}

	future := &Future{ch: make(chan Result, 1)}
	w := &waiterEntry{future: future}

	c.mu.Lock()
	w.timer = time.AfterFunc(timeout, func() {
		c.removeWaiter(key, w)
		w.resolve(Result{Err: ErrTimeout})
	})
	c.waiters[key] = append(c.waiters[key], w)
	c.mu.Unlock()

	return future
}

func (c *Correlator) removeWaiter(key waiterKey, target *waiterEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.waiters[key]
	for i, w := range list {
		if w == target {
			c.waiters[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(c.waiters[key]) == 0 {
		delete(c.waiters, key)
	}
}

// DispatchAction resolves every waiter registered on msg's
// (action, order_id) pair. Unmatched messages are left for the caller
// to emit as a general dm event — the correlator does not accumulate
// them, per spec.md §4.F.
func (c *Correlator) DispatchAction(msg *domain.MostroMessage) (matched bool) {
	action, orderID, ok := msg.ActionOrderID()
	if !ok {
		return false
	}
	key := waiterKey{action: action, orderID: orderID}

	c.mu.Lock()
	list := c.waiters[key]
	delete(c.waiters, key)
	c.mu.Unlock()

	for _, w := range list {
		w.resolve(Result{Msg: msg})
	}
	return len(list) > 0
}

// DisconnectAll fails every outstanding Mode-1 and Mode-2 completion
// with err and empties the tables. Idempotent: calling it with nothing
// pending is a no-op.
func (c *Correlator) DisconnectAll(err error) {
	if err == nil {
		err = ErrDisconnected
	}

	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint32]*pendingRequest)
	waiters := c.waiters
	c.waiters = make(map[waiterKey][]*waiterEntry)
	c.mu.Unlock()

	for _, pr := range pending {
		pr.resolve(Result{Err: err})
	}
	for _, list := range waiters {
		for _, w := range list {
			w.resolve(Result{Err: err})
		}
	}
}

// Len reports the number of outstanding Mode-1 pending requests, used
// by tests to confirm the table drains after a timeout (spec.md §8
// scenario 5).
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
