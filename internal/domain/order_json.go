package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// wireOrder is the JSON shape of an Order as carried inside a
// MostroMessage's content.order (submit_order's new-order payload and
// the server's corresponding order echo). Field names follow the
// Mostro wire contract, not Go convention.
type wireOrder struct {
	ID            string      `json:"id,omitempty"`
	Kind          OrderKind   `json:"kind"`
	Status        OrderStatus `json:"status,omitempty"`
	Amount        int         `json:"amount"`
	FiatCode      string      `json:"fiat_code"`
	FiatAmount    FiatAmount  `json:"fiat_amount"`
	PaymentMethod string      `json:"payment_method"`
	Premium       int         `json:"premium,omitempty"`
	CreatedAt     int64       `json:"created_at,omitempty"`
}

// MarshalJSON renders Order in the wire shape Mostro expects for
// content.order.
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOrder{
		ID:            o.ID,
		Kind:          o.Kind,
		Status:        o.Status,
		Amount:        o.Amount,
		FiatCode:      o.FiatCode,
		FiatAmount:    o.FiatAmount,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt.Unix(),
	})
}

// UnmarshalJSON parses an Order from the wire shape.
func (o *Order) UnmarshalJSON(data []byte) error {
	var w wireOrder
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Order{
		ID:            w.ID,
		Kind:          w.Kind,
		Status:        w.Status,
		Amount:        w.Amount,
		FiatCode:      w.FiatCode,
		FiatAmount:    w.FiatAmount,
		PaymentMethod: w.PaymentMethod,
	}
	if w.CreatedAt != 0 {
		o.CreatedAt = unixTime(w.CreatedAt)
	}
	return nil
}

// MarshalJSON renders FiatAmount as a bare integer when it is a fixed
// amount, or as a [min, max] array when it is a range — mirroring the
// "fa" tag's two on-wire shapes.
func (f FiatAmount) MarshalJSON() ([]byte, error) {
	if f.IsRange() {
		return json.Marshal([2]int{f.Min, f.Max})
	}
	return json.Marshal(f.Min)
}

// UnmarshalJSON accepts either shape described above.
func (f *FiatAmount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Min, f.Max = n, n
		return nil
	}
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err == nil {
		f.Min, f.Max = pair[0], pair[1]
		return nil
	}
	return fmt.Errorf("domain: fiat_amount is neither an integer nor a [min,max] pair: %s", data)
}
