// Package dispatcher turns typed trade-action calls (submit, take,
// add-invoice, release, fiat-sent, cancel, dispute, rate) into
// correctly shaped Mostro payloads, gift-wraps and publishes them,
// and returns the Mode-1 completion that will carry the reply, per
// spec.md §4.G.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/correlator"
	"github.com/mostro-go/client/internal/domain"
	"github.com/mostro-go/client/internal/giftwrap"
)

// now is overridable in tests; production code always calls time.Now.
var now = time.Now

var (
	// ErrKeyNotSet is returned by every trade action when no private
	// key has been loaded.
	ErrKeyNotSet = errors.New("dispatcher: no private key loaded")
	// ErrInvalidAmount is returned by SubmitOrder when amount < 0.
	ErrInvalidAmount = errors.New("dispatcher: amount must be >= 0")
)

// Correlator is the subset of *correlator.Correlator the dispatcher
// needs, named as an interface so tests can substitute a fake.
type Correlator interface {
	BeginRequest(timeout time.Duration) (uint32, *correlator.Future)
	FailRequest(id uint32, err error) bool
}

// Publisher is the subset of *relaygw.Gateway the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, ev nostr.Event) error
}

// KeySource supplies the sender's identity for the outer rumor and
// reports whether a key has been loaded at all.
type KeySource interface {
	IsSet() bool
	PublicKeyHex() (string, error)
}

// Dispatcher is the component G implementation. It holds no state of
// its own beyond its collaborators — every call is independently
// idempotent at the Go level (not at the protocol level: publishing
// new-order twice creates two orders, per spec.md §7).
type Dispatcher struct {
	correlator Correlator
	publisher  Publisher
	keys       KeySource
	mostroPub  string
	reqTimeout time.Duration
}

// New creates a Dispatcher targeting mostroPub, using c to allocate
// Mode-1 completions, pub to publish gift wraps, and keySource for the
// sender identity.
func New(c Correlator, pub Publisher, keySource KeySource, mostroPub string, reqTimeout time.Duration) *Dispatcher {
	return &Dispatcher{correlator: c, publisher: pub, keys: keySource, mostroPub: mostroPub, reqTimeout: reqTimeout}
}

// send builds the {order: {...}} envelope, gift-wraps it to the
// configured Mostro instance, publishes it, and returns the Mode-1
// completion that will carry the reply.
func (d *Dispatcher) send(ctx context.Context, action domain.Action, orderID string, content *domain.MessageContent) (*correlator.Future, error) {
	if !d.keys.IsSet() {
		return nil, ErrKeyNotSet
	}
	senderPub, err := d.keys.PublicKeyHex()
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", ErrKeyNotSet)
	}

	id, future := d.correlator.BeginRequest(d.reqTimeout)
	reqID := id

	payload := domain.MostroMessage{
		Order: &domain.OrderMessage{
			Version:   1,
			ID:        orderID,
			RequestID: &reqID,
			Action:    action,
			Content:   content,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: marshal payload: %w", err)
	}

	rumor := nostr.Event{
		Kind:      1,
		PubKey:    senderPub,
		Content:   string(body),
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{},
	}

	wrap, err := giftwrap.Build(rumor, d.mostroPub)
	if err != nil {
		d.correlator.FailRequest(id, err)
		return nil, fmt.Errorf("dispatcher: gift-wrap payload: %w", err)
	}

	if err := d.publisher.Publish(ctx, wrap); err != nil {
		wrapped := fmt.Errorf("dispatcher: publish: %w", err)
		d.correlator.FailRequest(id, wrapped)
		return nil, wrapped
	}
	return future, nil
}

// SubmitOrder normalizes newOrder (fills created_at and a pending
// status, rejects negative amounts) and publishes a new-order action.
func (d *Dispatcher) SubmitOrder(ctx context.Context, newOrder domain.Order) (*correlator.Future, error) {
	if newOrder.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if newOrder.ID == "" {
		newOrder.ID = uuid.NewString()
	}
	if newOrder.Status == "" {
		newOrder.Status = domain.StatusPending
	}
	if newOrder.CreatedAt.IsZero() {
		newOrder.CreatedAt = now()
	}
	content := &domain.MessageContent{Order: &newOrder}
	return d.send(ctx, domain.ActionNewOrder, "", content)
}

// TakeSell takes a sell order, optionally specifying the sats amount
// for a range order. amount == nil emits content: null.
func (d *Dispatcher) TakeSell(ctx context.Context, order domain.Order, amount *int) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionTakeSell, order.ID, amountContent(amount))
}

// TakeBuy takes a buy order, same amount semantics as TakeSell.
func (d *Dispatcher) TakeBuy(ctx context.Context, order domain.Order, amount *int) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionTakeBuy, order.ID, amountContent(amount))
}

// AddInvoice supplies a Lightning invoice for order, optionally with
// an explicit amount (required for range orders). The wire shape is
// the payment_request tuple, 2 elements without amount, 3 with.
func (d *Dispatcher) AddInvoice(ctx context.Context, order domain.Order, invoice string, amount *int) (*correlator.Future, error) {
	content := &domain.MessageContent{
		PaymentRequest: &domain.PaymentRequestContent{Invoice: invoice, Amount: amount},
	}
	return d.send(ctx, domain.ActionAddInvoice, order.ID, content)
}

// Release tells Mostro to release the held funds to the buyer.
func (d *Dispatcher) Release(ctx context.Context, order domain.Order) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionRelease, order.ID, nil)
}

// FiatSent tells Mostro the buyer has sent the fiat payment.
func (d *Dispatcher) FiatSent(ctx context.Context, order domain.Order) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionFiatSent, order.ID, nil)
}

// Cancel requests cancellation of order.
func (d *Dispatcher) Cancel(ctx context.Context, order domain.Order) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionCancel, order.ID, nil)
}

// Dispute opens a dispute on order (supplemented per SPEC_FULL.md §10
// — named in spec.md's action closed set and scope, never tabulated).
func (d *Dispatcher) Dispute(ctx context.Context, order domain.Order) (*correlator.Future, error) {
	return d.send(ctx, domain.ActionDispute, order.ID, nil)
}

// RateCounterpart submits a 1..5 rating for the counterparty on order
// (supplemented per SPEC_FULL.md §10). The wire content is the bare
// integer, per spec.md §9's resolved Open Question.
func (d *Dispatcher) RateCounterpart(ctx context.Context, order domain.Order, rating int) (*correlator.Future, error) {
	content := &domain.MessageContent{RatingUser: &rating}
	return d.send(ctx, domain.ActionRateUser, order.ID, content)
}

// amountContent builds the `{amount}` or nil content take-sell/take-buy
// carry, per spec.md §4.G's table.
func amountContent(amount *int) *domain.MessageContent {
	if amount == nil {
		return nil
	}
	return &domain.MessageContent{Amount: amount}
}
