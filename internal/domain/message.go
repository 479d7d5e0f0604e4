package domain

import (
	"encoding/json"
	"errors"
)

// Peer reveals the counterparty's pubkey mid-trade so the client can
// open an out-of-band encrypted channel directly to them.
type Peer struct {
	Pubkey string `json:"pubkey"`
}

// Dispute carries the tokens a party needs to act on an in-progress
// dispute.
type Dispute struct {
	ID          string `json:"id"`
	BuyerToken  *int   `json:"buyer_token,omitempty"`
	SellerToken *int   `json:"seller_token,omitempty"`
}

// PaymentRequestContent is the seller-facing "here is an invoice to
// pay, or here is the one I was given" content. The on-wire shape is
// a tuple: [order-or-null, invoice, amount?] — two elements when no
// amount is carried, three when it is. See MarshalJSON/UnmarshalJSON.
//
// Design note: a parallel object shape {order, invoice, amount}
// appears in some parts of the ecosystem but is not used on the wire;
// it is intentionally not implemented here (spec.md §9 Open Questions).
type PaymentRequestContent struct {
	Order   *Order
	Invoice string
	Amount  *int
}

// MarshalJSON emits the 2- or 3-element tuple form.
func (p PaymentRequestContent) MarshalJSON() ([]byte, error) {
	var order interface{}
	if p.Order != nil {
		order = p.Order
	}
	if p.Amount != nil {
		return json.Marshal([]interface{}{order, p.Invoice, *p.Amount})
	}
	return json.Marshal([]interface{}{order, p.Invoice})
}

// UnmarshalJSON parses the 2- or 3-element tuple form.
func (p *PaymentRequestContent) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return errInvalidPaymentRequest
	}
	if string(raw[0]) != "null" {
		var o Order
		if err := json.Unmarshal(raw[0], &o); err != nil {
			return err
		}
		p.Order = &o
	} else {
		p.Order = nil
	}
	if err := json.Unmarshal(raw[1], &p.Invoice); err != nil {
		return err
	}
	if len(raw) >= 3 {
		var a int
		if err := json.Unmarshal(raw[2], &a); err != nil {
			return err
		}
		p.Amount = &a
	}
	return nil
}

var errInvalidPaymentRequest = errors.New("domain: payment_request tuple needs at least [order|null, invoice]")

// MessageContent is the untagged union carried by an OrderMessage.
// Exactly one field is populated on a well-formed message; Raw
// preserves the original bytes so an unrecognized shape never fails
// to decode (design note in spec.md §9 — forward compatibility with
// actions this client does not yet model).
type MessageContent struct {
	Order          *Order
	PaymentRequest *PaymentRequestContent
	TextMessage    *string
	Peer           *Peer
	RatingUser     *int
	Dispute        *Dispute
	Amount         *int

	Raw json.RawMessage
}

type contentWire struct {
	Order          *Order                 `json:"order,omitempty"`
	PaymentRequest *PaymentRequestContent `json:"payment_request,omitempty"`
	TextMessage    *string                `json:"text_message,omitempty"`
	Peer           *Peer                  `json:"peer,omitempty"`
	RatingUser     *int                   `json:"rating_user,omitempty"`
	Dispute        *Dispute               `json:"dispute,omitempty"`
	Amount         *int                   `json:"amount,omitempty"`
}

// MarshalJSON emits only the populated field, matching the untagged
// union on the wire.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 && c.Order == nil && c.PaymentRequest == nil && c.TextMessage == nil &&
		c.Peer == nil && c.RatingUser == nil && c.Dispute == nil && c.Amount == nil {
		return c.Raw, nil
	}
	return json.Marshal(contentWire{
		Order:          c.Order,
		PaymentRequest: c.PaymentRequest,
		TextMessage:    c.TextMessage,
		Peer:           c.Peer,
		RatingUser:     c.RatingUser,
		Dispute:        c.Dispute,
		Amount:         c.Amount,
	})
}

// UnmarshalJSON recognizes the seven known shapes and otherwise keeps
// the raw bytes around rather than failing.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	c.Raw = append(json.RawMessage(nil), data...)
	var w contentWire
	if err := json.Unmarshal(data, &w); err != nil {
		// Not one of the recognized shapes; Raw already holds it.
		return nil
	}
	c.Order = w.Order
	c.PaymentRequest = w.PaymentRequest
	c.TextMessage = w.TextMessage
	c.Peer = w.Peer
	c.RatingUser = w.RatingUser
	c.Dispute = w.Dispute
	c.Amount = w.Amount
	return nil
}

// OrderMessage is the "order" branch of a MostroMessage.
type OrderMessage struct {
	Version   int             `json:"version"`
	ID        string          `json:"id,omitempty"`
	RequestID *uint32         `json:"request_id,omitempty"`
	Action    Action          `json:"action"`
	Content   *MessageContent `json:"content"`
	CreatedAt int64           `json:"created_at,omitempty"`
}

// CantDoContent carries the human-readable reason for a refusal.
type CantDoContent struct {
	TextMessage string `json:"text_message"`
}

// CantDoMessage is the "cant-do" branch of a MostroMessage. Per
// spec.md §7, cant-do messages are not local errors: they complete
// the caller's pending request successfully, carrying the refusal as
// data.
type CantDoMessage struct {
	Version   int           `json:"version"`
	ID        string        `json:"id,omitempty"`
	RequestID *uint32       `json:"request_id,omitempty"`
	Pubkey    string        `json:"pubkey,omitempty"`
	Action    CantDo        `json:"action"`
	Content   CantDoContent `json:"content"`
}

// MostroMessage is the tagged sum { order } | { cant-do } that every
// decrypted DM content decodes into.
type MostroMessage struct {
	Order  *OrderMessage  `json:"order,omitempty"`
	CantDo *CantDoMessage `json:"cant-do,omitempty"`
}

// RequestID returns the message's correlation id, if any, regardless
// of which branch is populated.
func (m MostroMessage) RequestID() (uint32, bool) {
	switch {
	case m.Order != nil && m.Order.RequestID != nil:
		return *m.Order.RequestID, true
	case m.CantDo != nil && m.CantDo.RequestID != nil:
		return *m.CantDo.RequestID, true
	default:
		return 0, false
	}
}

// ActionOrderID returns the (action, order-id) pair used for Mode-2
// correlation, regardless of which branch is populated.
func (m MostroMessage) ActionOrderID() (Action, string, bool) {
	switch {
	case m.Order != nil:
		return m.Order.Action, m.Order.ID, true
	case m.CantDo != nil:
		return ActionCantDo, m.CantDo.ID, true
	default:
		return "", "", false
	}
}
