// Package mostro is the public surface of the Mostro protocol client
// core: it owns key material, a relay connection, the request
// correlator, and the trade action dispatcher, and routes inbound
// relay traffic into order-update/mostro-info/dm events and correlated
// completions, per spec.md §4.H.
package mostro

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/correlator"
	"github.com/mostro-go/client/internal/dispatcher"
	"github.com/mostro-go/client/internal/domain"
	"github.com/mostro-go/client/internal/eventbus"
	"github.com/mostro-go/client/internal/eventcrypto"
	"github.com/mostro-go/client/internal/keys"
	"github.com/mostro-go/client/internal/orderfilter"
	"github.com/mostro-go/client/internal/relaygw"
)

// Client is the Orchestrator: the single value a caller constructs
// and owns for the lifetime of its relationship with one or more
// Mostro instances. Construction eagerly connects, per spec.md §4.H.
type Client struct {
	logger     *slog.Logger
	keys       *keys.Manager
	gateway    *relaygw.Gateway
	correlator *correlator.Correlator
	dispatcher *dispatcher.Dispatcher
	mostroPub  string

	searchTimeout time.Duration

	orderBus *eventbus.Bus[OrderUpdate]
	infoBus  *eventbus.Bus[domain.MostroInfo]
	dmBus    *eventbus.Bus[DMEvent]

	connectOnce sync.Once
	connectErr  error

	mu     sync.Mutex
	subs   []*relaygw.Subscription
	dmSub  *relaygw.Subscription
	closed bool
}

// New constructs a Client from the given Options and eagerly connects
// it. An empty relay list fails construction (spec.md §8 boundary
// behavior).
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.relays) == 0 {
		return nil, ErrNoRelays
	}

	km := keys.New()
	if cfg.privateKey != "" {
		if err := km.Set(cfg.privateKey); err != nil {
			return nil, fmt.Errorf("mostro: private key: %w", err)
		}
	}

	var mostroPub string
	if cfg.mostroPubKey != "" {
		resolved, err := keys.ResolvePubKey(cfg.mostroPubKey)
		if err != nil {
			return nil, fmt.Errorf("mostro: mostro pubkey: %w", err)
		}
		mostroPub = resolved
	}

	logger := cfg.logger
	if logger == nil {
		level := slog.LevelInfo
		if cfg.debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	logger = logger.With("component", "mostro")

	gw := relaygw.New(cfg.relays, logger)
	corr := correlator.New(cfg.requestTimeout)
	disp := dispatcher.New(corr, gw, km, mostroPub, cfg.requestTimeout)

	c := &Client{
		logger:        logger,
		keys:          km,
		gateway:       gw,
		correlator:    corr,
		dispatcher:    disp,
		mostroPub:     mostroPub,
		searchTimeout: cfg.searchTimeout,
		orderBus:      eventbus.New[OrderUpdate](),
		infoBus:       eventbus.New[domain.MostroInfo](),
		dmBus:         eventbus.New[DMEvent](),
	}

	if err := c.Connect(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect is idempotent: the first call performs the real work (pool
// connect, initial subscriptions); every later call returns the same
// result, per spec.md §9's resolved design note.
func (c *Client) Connect(ctx context.Context) error {
	c.connectOnce.Do(func() {
		c.connectErr = c.doConnect(ctx)
	})
	return c.connectErr
}

func (c *Client) doConnect(ctx context.Context) error {
	if err := c.gateway.Connect(ctx); err != nil {
		return fmt.Errorf("mostro: connect: %w", err)
	}

	if c.mostroPub != "" {
		if err := c.subscribeOrders(ctx); err != nil {
			return err
		}
	}
	if c.keys.IsSet() {
		if err := c.subscribeDMs(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) subscribeOrders(ctx context.Context) error {
	since := nostr.Now() - nostr.Timestamp(mostroInfoLookback/time.Second)
	filter := nostr.Filter{
		Kinds:   []int{38383},
		Authors: []string{c.mostroPub},
		Since:   &since,
	}
	sub, err := c.gateway.Subscribe(ctx, filter)
	if err != nil {
		return fmt.Errorf("mostro: subscribe orders: %w", err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	go c.consumeOrderEvents(sub)
	return nil
}

// subscribeDMs is called once at construction (if a key is already
// loaded) and once more from UpdatePrivateKey if a key is loaded
// later than construction time.
func (c *Client) subscribeDMs(ctx context.Context) error {
	c.mu.Lock()
	if c.dmSub != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	myPub, err := c.keys.PublicKeyHex()
	if err != nil {
		return fmt.Errorf("mostro: subscribe dms: %w", err)
	}
	since := nostr.Now()
	filter := nostr.Filter{
		Kinds: []int{4},
		Tags:  nostr.TagMap{"p": []string{myPub}},
		Since: &since,
	}
	sub, err := c.gateway.Subscribe(ctx, filter)
	if err != nil {
		return fmt.Errorf("mostro: subscribe dms: %w", err)
	}

	c.mu.Lock()
	c.dmSub = sub
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	go c.consumeDMEvents(sub)
	return nil
}

func (c *Client) consumeOrderEvents(sub *relaygw.Subscription) {
	for ev := range sub.Events {
		c.handleOrderEvent(ev)
	}
}

func (c *Client) handleOrderEvent(ev *nostr.Event) {
	if orderfilter.IsMostroInfo(ev) {
		c.infoBus.Publish(orderfilter.ExtractMostroInfo(ev))
		return
	}
	order, ok := orderfilter.ExtractOrder(ev)
	if !ok {
		return
	}
	c.orderBus.Publish(OrderUpdate{Order: order, Raw: *ev})
}

func (c *Client) consumeDMEvents(sub *relaygw.Subscription) {
	for ev := range sub.Events {
		c.handleDM(ev)
	}
}

func (c *Client) handleDM(ev *nostr.Event) {
	myPriv, err := c.keys.PrivateKeyHex()
	if err != nil {
		// No private key is loaded; nothing to decrypt the DM with.
		return
	}

	plaintext, err := eventcrypto.DecryptNIP04(ev.Content, myPriv, ev.PubKey)
	if err != nil {
		c.logger.Debug("mostro: dropping undecryptable dm", "sender", ev.PubKey, "error", err)
		return
	}

	var msg domain.MostroMessage
	if err := json.Unmarshal([]byte(plaintext), &msg); err != nil {
		c.logger.Warn("mostro: dropping malformed dm", "sender", ev.PubKey, "error", fmt.Errorf("%w: %v", ErrMalformedMessage, err))
		return
	}

	if id, ok := msg.RequestID(); ok {
		c.correlator.Deliver(id, &msg)
	}
	c.correlator.DispatchAction(&msg)
	c.dmBus.Publish(DMEvent{Msg: &msg, Sender: ev.PubKey})
}

// UpdatePrivateKey replaces the loaded key, invalidating every
// outstanding Mode-1 and Mode-2 completion first, per spec.md §3's
// stated invariant. If no key had been loaded before, this also opens
// the inbound DM subscription for the first time.
func (c *Client) UpdatePrivateKey(raw string) error {
	c.correlator.DisconnectAll(ErrKeyRotated)

	if err := c.keys.Set(raw); err != nil {
		return fmt.Errorf("mostro: private key: %w", err)
	}

	c.mu.Lock()
	needsSub := c.dmSub == nil && !c.closed
	c.mu.Unlock()
	if needsSub {
		if err := c.subscribeDMs(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

// PublicKey returns the loaded key's public projection, or
// keys.ErrNotSet if no key has been loaded.
func (c *Client) PublicKey(enc keys.Encoding) (string, error) {
	return c.keys.PublicKey(enc)
}

// Disconnect stops every subscription, fails all outstanding
// completions with correlator.ErrDisconnected, and marks the Client
// uninitialized. Idempotent, per spec.md §5.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.correlator.DisconnectAll(correlator.ErrDisconnected)
	c.gateway.Disconnect()
}
