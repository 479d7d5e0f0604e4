// mostro-client is a minimal harness around the mostro package: it
// connects to a Mostro instance, searches for sell orders (any status)
// in a configured fiat currency, and logs every order-update, mostro-info
// and dm event it observes until interrupted.
//
// Usage:
//
//	export MOSTRO_RELAYS=wss://relay.mostro.pub,wss://nostr.bitcoiner.social
//	export MOSTRO_PUBKEY=npub1...
//	export MOSTRO_PRIVATE_KEY=nsec1...   # optional; omit for read-only search
//	export MOSTRO_CURRENCY=USD
//	./mostro-client
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mostro-go/client"
	"github.com/mostro-go/client/internal/orderfilter"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	relays := splitCSV(os.Getenv("MOSTRO_RELAYS"))
	if len(relays) == 0 {
		slog.Error("MOSTRO_RELAYS is required, e.g. wss://relay.mostro.pub")
		os.Exit(1)
	}

	opts := []mostro.Option{
		mostro.WithRelays(relays...),
		mostro.WithDebug(logLevel == slog.LevelDebug),
	}
	if pub := os.Getenv("MOSTRO_PUBKEY"); pub != "" {
		opts = append(opts, mostro.WithMostroPubKey(pub))
	}
	if priv := os.Getenv("MOSTRO_PRIVATE_KEY"); priv != "" {
		opts = append(opts, mostro.WithPrivateKey(priv))
	}

	c, err := mostro.New(opts...)
	if err != nil {
		slog.Error("failed to start mostro client", "error", err)
		os.Exit(1)
	}
	defer c.Disconnect()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	currency := os.Getenv("MOSTRO_CURRENCY")
	if currency == "" {
		currency = "USD"
	}
	orders, err := c.SearchOrders(ctx, orderfilter.OrderFilters{
		DocumentType: "order",
		OrderType:    "sell",
		Currency:     currency,
	})
	if err != nil {
		slog.Error("search failed", "error", err)
	} else {
		slog.Info("search complete", "currency", currency, "found", len(orders))
		for _, o := range orders {
			slog.Info("sell order", "id", o.ID, "amount", o.Amount, "fiat_amount", o.FiatAmount, "status", o.Status)
		}
	}

	updates, cancelUpdates := c.OrderUpdates()
	defer cancelUpdates()
	infos, cancelInfos := c.MostroInfoUpdates()
	defer cancelInfos()
	dms, cancelDMs := c.DirectMessages()
	defer cancelDMs()

	slog.Info("listening for events until interrupted")
	for {
		select {
		case u := <-updates:
			slog.Info("order-update", "id", u.Order.ID, "status", u.Order.Status, "kind", u.Order.Kind)
		case info := <-infos:
			slog.Info("mostro-info", "version", info.MostroVersion, "commit", info.MostroCommitID)
		case dm := <-dms:
			slog.Info("dm", "sender", dm.Sender)
		case <-ctx.Done():
			slog.Info("shutting down")
			return
		}
	}
}

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
