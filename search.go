package mostro

import (
	"context"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/domain"
	"github.com/mostro-go/client/internal/orderfilter"
)

// SearchOrders opens a short-lived subscription (the Client's
// configured search timeout, default 5s), accumulates every matching
// order, then stops the subscription and returns the collapsed set
// (same id, latest wins), per spec.md §4.H.
func (c *Client) SearchOrders(ctx context.Context, filters orderfilter.OrderFilters) ([]domain.Order, error) {
	filter := nostr.Filter{Kinds: []int{38383}}
	if len(filters.Authors) > 0 {
		filter.Authors = filters.Authors
	}

	sub, err := c.gateway.Subscribe(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mostro: search orders: %w", err)
	}
	defer sub.Stop()

	timer := time.NewTimer(c.searchTimeout)
	defer timer.Stop()

	results := make(map[string]domain.Order)
loop:
	for {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				break loop
			}
			if ev == nil || !orderfilter.Match(ev, filters) {
				continue
			}
			order, ok := orderfilter.ExtractOrder(ev)
			if !ok {
				continue
			}
			results[order.ID] = order
		case <-timer.C:
			break loop
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]domain.Order, 0, len(results))
	for _, order := range results {
		out = append(out, order)
	}
	return out, nil
}
