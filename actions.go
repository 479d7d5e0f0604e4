package mostro

import (
	"context"

	"github.com/mostro-go/client/internal/domain"
)

// SubmitOrder publishes a new-order action and waits for Mostro's
// reply, per spec.md §4.G.
func (c *Client) SubmitOrder(ctx context.Context, newOrder domain.Order) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.SubmitOrder(ctx, newOrder)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// TakeSell takes a sell order, optionally specifying a sats amount
// for a range order.
func (c *Client) TakeSell(ctx context.Context, order domain.Order, amount *int) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.TakeSell(ctx, order, amount)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// TakeBuy takes a buy order, same amount semantics as TakeSell.
func (c *Client) TakeBuy(ctx context.Context, order domain.Order, amount *int) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.TakeBuy(ctx, order, amount)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// AddInvoice supplies a Lightning invoice for order.
func (c *Client) AddInvoice(ctx context.Context, order domain.Order, invoice string, amount *int) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.AddInvoice(ctx, order, invoice, amount)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Release tells Mostro to release the held funds to the buyer.
func (c *Client) Release(ctx context.Context, order domain.Order) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.Release(ctx, order)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// FiatSent tells Mostro the buyer has sent the fiat payment.
func (c *Client) FiatSent(ctx context.Context, order domain.Order) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.FiatSent(ctx, order)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Cancel requests cancellation of order.
func (c *Client) Cancel(ctx context.Context, order domain.Order) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.Cancel(ctx, order)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Dispute opens a dispute on order (supplemented per SPEC_FULL.md §10).
func (c *Client) Dispute(ctx context.Context, order domain.Order) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.Dispute(ctx, order)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// RateCounterpart submits a 1..5 rating for the counterparty on order
// (supplemented per SPEC_FULL.md §10).
func (c *Client) RateCounterpart(ctx context.Context, order domain.Order, rating int) (*domain.MostroMessage, error) {
	future, err := c.dispatcher.RateCounterpart(ctx, order, rating)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}
