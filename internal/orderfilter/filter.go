// Package orderfilter matches kind-38383 Nostr events against a
// structured OrderFilters predicate and projects matching events into
// domain.Order records, per spec.md §4.D.
package orderfilter

import (
	"strconv"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/domain"
)

// OrderFilters is a predicate over a kind-38383 order document's
// tags. A zero-value (empty) field imposes no constraint.
type OrderFilters struct {
	DocumentType   string   // "z" tag, typically "order"
	OrderType      string   // "k" tag: buy|sell
	Currency       string   // "f" tag, uppercase ISO code
	Status         string   // "s" tag
	Platform       string   // "y" tag
	PaymentMethods []string // "pm" tag, comma-split, case-insensitive intersection

	// Authors is not matched here — it is forwarded to the relay
	// subscription filter by the caller, per spec.md §4.D.
	Authors []string
}

// Match reports whether ev satisfies every non-empty field of f.
// P3 (spec.md §8): Match(e,f) = true implies every non-empty field of
// f is satisfied by the corresponding tag of e.
func Match(ev *nostr.Event, f OrderFilters) bool {
	tags := firstValues(ev.Tags)

	if f.DocumentType != "" && tags["z"] != f.DocumentType {
		return false
	}
	if f.OrderType != "" && tags["k"] != f.OrderType {
		return false
	}
	if f.Currency != "" && !strings.EqualFold(tags["f"], f.Currency) {
		return false
	}
	if f.Status != "" && tags["s"] != f.Status {
		return false
	}
	if f.Platform != "" && tags["y"] != f.Platform {
		return false
	}
	if len(f.PaymentMethods) > 0 && !paymentMethodsIntersect(tags["pm"], f.PaymentMethods) {
		return false
	}
	return true
}

func paymentMethodsIntersect(tagValue string, wanted []string) bool {
	if tagValue == "" {
		return false
	}
	have := make(map[string]struct{})
	for _, pm := range strings.Split(tagValue, ",") {
		have[strings.ToLower(strings.TrimSpace(pm))] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := have[strings.ToLower(strings.TrimSpace(w))]; ok {
			return true
		}
	}
	return false
}

// ExtractOrder projects ev into a domain.Order. It returns ok=false
// when a mandatory tag (d, k) is missing or malformed — per spec.md
// §4.D, such events are silently dropped, never surfaced as errors.
func ExtractOrder(ev *nostr.Event) (domain.Order, bool) {
	tags := firstValues(ev.Tags)

	id := tags["d"]
	kind := domain.OrderKind(tags["k"])
	if id == "" || (kind != domain.OrderKindBuy && kind != domain.OrderKindSell) {
		return domain.Order{}, false
	}

	amount, _ := strconv.Atoi(tags["amt"])
	fiatAmount := parseFiatAmount(tags["fa"])

	return domain.Order{
		ID:            id,
		Kind:          kind,
		Status:        domain.OrderStatus(tags["s"]),
		Amount:        amount,
		FiatCode:      strings.ToUpper(tags["f"]),
		FiatAmount:    fiatAmount,
		PaymentMethod: tags["pm"],
		Platform:      tags["y"],
		CreatedAt:     time.Unix(int64(ev.CreatedAt), 0).UTC(),
	}, true
}

func parseFiatAmount(raw string) domain.FiatAmount {
	if raw == "" {
		return domain.FiatAmount{}
	}
	if min, max, ok := strings.Cut(raw, "-"); ok {
		lo, errLo := strconv.Atoi(min)
		hi, errHi := strconv.Atoi(max)
		if errLo == nil && errHi == nil {
			return domain.FiatAmount{Min: lo, Max: hi}
		}
		return domain.FiatAmount{}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return domain.FiatAmount{}
	}
	return domain.FiatAmount{Min: n, Max: n}
}

// IsMostroInfo reports whether ev's tags look like a MostroInfo
// document rather than an order — distinguished by the presence of a
// mostro_pubkey tag, per spec.md §4.H.
func IsMostroInfo(ev *nostr.Event) bool {
	for _, tag := range ev.Tags {
		if len(tag) >= 1 && tag[0] == "mostro_pubkey" {
			return true
		}
	}
	return false
}

// ExtractMostroInfo projects ev into a domain.MostroInfo, applying the
// documented defaults from spec.md §3 for absent tags.
func ExtractMostroInfo(ev *nostr.Event) domain.MostroInfo {
	tags := firstValues(ev.Tags)

	return domain.MostroInfo{
		MostroPubkey:                tags["mostro_pubkey"],
		MostroVersion:               tags["mostro_version"],
		MostroCommitID:              tags["mostro_commit_id"],
		MaxOrderAmount:              atoiOr(tags["max_order_amount"], 0),
		MinOrderAmount:              atoiOr(tags["min_order_amount"], 0),
		ExpirationHours:             atoiOr(tags["expiration_hours"], domain.DefaultExpirationHours),
		ExpirationSeconds:           atoiOr(tags["expiration_seconds"], domain.DefaultExpirationSeconds),
		Fee:                         atofOr(tags["fee"], 0),
		HoldInvoiceExpirationWindow: atoiOr(tags["hold_invoice_expiration_window"], domain.DefaultHoldInvoiceExpirationWindow),
		InvoiceExpirationWindow:     atoiOr(tags["invoice_expiration_window"], domain.DefaultInvoiceExpirationWindow),
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func atofOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

// firstValues interprets tags as a mapping from single-letter (or
// named) key to its first value, per spec.md §4.D.
func firstValues(tags nostr.Tags) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		if len(tag) < 2 {
			continue
		}
		if _, exists := out[tag[0]]; exists {
			continue
		}
		out[tag[0]] = tag[1]
	}
	return out
}
