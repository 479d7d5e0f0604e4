// Package domain holds the wire-level types shared across the Mostro
// protocol client: orders, instance info, correlated messages and
// ratings. Nothing in this package talks to a relay or touches a key —
// it is pure data plus the (de)serialization that the Mostro wire
// format requires.
package domain

import (
	"strings"
	"time"
)

// OrderKind is the side of the trade the order author is taking.
type OrderKind string

const (
	OrderKindBuy  OrderKind = "buy"
	OrderKindSell OrderKind = "sell"
)

// OrderStatus is the lifecycle state carried on the order's "s" tag.
type OrderStatus string

const (
	StatusPending               OrderStatus = "pending"
	StatusWaitingBuyerInvoice   OrderStatus = "waiting-buyer-invoice"
	StatusWaitingSellerToPay    OrderStatus = "waiting-seller-to-pay"
	StatusActive                OrderStatus = "active"
	StatusFiatSent              OrderStatus = "fiat-sent"
	StatusSuccess               OrderStatus = "success"
	StatusCanceled              OrderStatus = "canceled"
	StatusCooperativelyCanceled OrderStatus = "cooperatively-canceled"
	StatusInDispute             OrderStatus = "in-dispute"
	StatusExpired               OrderStatus = "expired"
)

// FiatAmount is either a fixed integer amount or a [min, max] range,
// mirroring the "fa" tag which appears either as a bare integer or as
// "min-max".
type FiatAmount struct {
	Min int
	Max int
}

// IsRange reports whether the amount is a range rather than a fixed value.
func (f FiatAmount) IsRange() bool { return f.Min != f.Max }

// Order is the client's projection of a kind-38383 "order" document.
type Order struct {
	ID            string
	Kind          OrderKind
	Status        OrderStatus
	Amount        int // sats; 0 means "market price"
	FiatCode      string
	FiatAmount    FiatAmount
	PaymentMethod string // comma-separated, as carried on the wire
	Platform      string
	CreatedAt     time.Time
}

// PaymentMethods splits the comma-separated payment_method field into
// its individual, trimmed entries.
func (o Order) PaymentMethods() []string {
	return splitCSV(o.PaymentMethod)
}

// MostroInfo is the client's projection of a kind-38383 "info" document
// published by a Mostro instance describing its configuration.
type MostroInfo struct {
	MostroPubkey                string
	MostroVersion               string
	MostroCommitID              string
	MaxOrderAmount              int
	MinOrderAmount              int
	ExpirationHours             int
	ExpirationSeconds           int
	Fee                         float64
	HoldInvoiceExpirationWindow int
	InvoiceExpirationWindow     int
}

// DefaultExpirationHours and friends are the fallbacks spec.md §3 names
// for a MostroInfo field absent from the wire tags.
const (
	DefaultExpirationHours             = 24
	DefaultExpirationSeconds           = 900
	DefaultHoldInvoiceExpirationWindow = 120
	DefaultInvoiceExpirationWindow     = 120
)

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
