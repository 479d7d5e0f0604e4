// Package relaygw is a thin wrapper over the external Nostr relay
// client (github.com/nbd-wtf/go-nostr's SimplePool). It owns
// connection lifecycle, publish, and long-lived subscriptions; it is
// the only package in this module that speaks to a relay pool
// directly, per spec.md's component table (§2, row C).
package relaygw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

var (
	// ErrNotConnected is returned by operations attempted before Connect.
	ErrNotConnected = errors.New("relaygw: not connected")
	// ErrPublishFailed is returned when every configured relay rejects a publish.
	ErrPublishFailed = errors.New("relaygw: publish rejected by all relays")
)

// Subscription is a caller-visible handle to a long-lived
// subscription. Internal bookkeeping (the underlying go-nostr
// subscription, goroutines) stays inside Gateway; callers only ever
// see this handle, per spec.md §3 Ownership.
type Subscription struct {
	Events <-chan *nostr.Event

	cancel context.CancelFunc
	once   sync.Once
}

// Stop ends the subscription. Idempotent.
func (s *Subscription) Stop() {
	s.once.Do(s.cancel)
}

// Gateway connects to a fixed set of relays and exposes publish and
// subscribe. It does not itself decide what to subscribe to or what
// to do with delivered events — that is the Orchestrator's job.
type Gateway struct {
	relays []string
	logger *slog.Logger

	mu        sync.Mutex
	pool      *nostr.SimplePool
	connected bool
	readyOnce sync.Once
	ready     chan struct{}
	subs      map[*Subscription]struct{}
}

// New creates a Gateway for the given relay URLs. relays must be
// non-empty — validated by the caller (mostro.New), per spec.md §8
// boundary behavior ("empty relay list ⇒ construction fails").
func New(relays []string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		relays: relays,
		logger: logger,
		ready:  make(chan struct{}),
		subs:   make(map[*Subscription]struct{}),
	}
}

// Connect is idempotent: it lazily creates the underlying pool once
// and closes the ready channel, documented per spec.md §9 as
// "connect is idempotent and always resolves once the pool signals
// ready" — callers may call it concurrently or repeatedly and always
// observe the same outcome.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	if g.pool == nil {
		g.pool = nostr.NewSimplePool(context.Background())
	}
	g.connected = true
	g.mu.Unlock()

	g.readyOnce.Do(func() {
		close(g.ready)
		g.logger.Info("relaygw: connected", "relays", g.relays)
	})
	return nil
}

// Ready returns a channel that closes once Connect has completed at
// least once.
func (g *Gateway) Ready() <-chan struct{} {
	return g.ready
}

// Subscribe opens a long-lived subscription over the given filter.
// Unlike a typical one-shot query, it does not close at end-of-stored
// events — events keep arriving on Events until Stop is called, per
// spec.md §4.C.
func (g *Gateway) Subscribe(ctx context.Context, filter nostr.Filter) (*Subscription, error) {
	g.mu.Lock()
	pool, connected := g.pool, g.connected
	g.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan *nostr.Event)
	sub := &Subscription{Events: out}

	g.mu.Lock()
	sub.cancel = func() {
		cancel()
		g.mu.Lock()
		delete(g.subs, sub)
		g.mu.Unlock()
	}
	g.subs[sub] = struct{}{}
	g.mu.Unlock()

	go func() {
		defer close(out)
		for ev := range pool.SubMany(subCtx, g.relays, nostr.Filters{filter}) {
			if ev.Event == nil {
				continue
			}
			select {
			case out <- ev.Event:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

// Publish submits an already-signed event and waits for at least one
// configured relay to accept it.
func (g *Gateway) Publish(ctx context.Context, ev nostr.Event) error {
	g.mu.Lock()
	pool, connected := g.pool, g.connected
	g.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	var published, failed int
	for result := range pool.PublishMany(ctx, g.relays, ev) {
		if result.Error != nil {
			g.logger.Warn("relaygw: publish rejected", "relay", result.RelayURL, "id", ev.ID, "error", result.Error)
			failed++
			continue
		}
		published++
	}
	if published == 0 {
		return fmt.Errorf("%w: %d relays rejected, %d configured", ErrPublishFailed, failed, len(g.relays))
	}
	return nil
}

// Disconnect stops every outstanding subscription, drops the pool
// reference, and marks the gateway uninitialized. Idempotent.
func (g *Gateway) Disconnect() {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(g.subs))
	for s := range g.subs {
		subs = append(subs, s)
	}
	g.pool = nil
	g.connected = false
	g.ready = make(chan struct{})
	g.readyOnce = sync.Once{}
	g.mu.Unlock()

	for _, s := range subs {
		s.Stop()
	}
	g.logger.Info("relaygw: disconnected")
}
