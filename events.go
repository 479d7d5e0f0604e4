package mostro

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/domain"
)

// OrderUpdate is emitted whenever a matching kind-38383 order document
// is observed, per spec.md §4.H's order-update event.
type OrderUpdate struct {
	Order domain.Order
	Raw   nostr.Event
}

// DMEvent is emitted for every decrypted, parsed direct message,
// regardless of whether it also resolved a Mode-1 or Mode-2 waiter —
// spec.md §4.H's "(c) emit dm(msg, sender) unconditionally".
type DMEvent struct {
	Msg    *domain.MostroMessage
	Sender string
}

// OrderUpdates subscribes to order-update events. The caller must
// invoke the returned cancel func when done listening.
func (c *Client) OrderUpdates() (<-chan OrderUpdate, func()) {
	return c.orderBus.Subscribe()
}

// MostroInfoUpdates subscribes to mostro-info events.
func (c *Client) MostroInfoUpdates() (<-chan domain.MostroInfo, func()) {
	return c.infoBus.Subscribe()
}

// DirectMessages subscribes to every decrypted dm event.
func (c *Client) DirectMessages() (<-chan DMEvent, func()) {
	return c.dmBus.Subscribe()
}
