package mostro

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostro-go/client/internal/domain"
)

const testRelay = "wss://example.invalid"

func TestNewFailsWithoutRelays(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrNoRelays)
}

func TestNewSucceedsReadOnlyWithoutPrivateKey(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	_, err = c.Release(context.Background(), domain.Order{ID: "o1"})
	assert.ErrorIs(t, err, ErrKeyNotSet)
}

func TestConnectIsIdempotent(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	assert.NoError(t, c.Connect(context.Background()))
	assert.NoError(t, c.Connect(context.Background()))
}

func TestDisconnectIsIdempotent(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)

	c.Disconnect()
	c.Disconnect() // must not panic
}

func TestUpdatePrivateKeyInvalidatesPendingRequests(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	_, future := c.correlator.BeginRequest(time.Second)

	senderPriv := nostr.GeneratePrivateKey()
	require.NoError(t, c.UpdatePrivateKey(senderPriv))

	_, waitErr := future.Wait(context.Background())
	assert.ErrorIs(t, waitErr, ErrKeyRotated)
}

func TestUpdatePrivateKeyOpensDMSubscriptionWhenNoneExisted(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	c.mu.Lock()
	assert.Nil(t, c.dmSub)
	c.mu.Unlock()

	require.NoError(t, c.UpdatePrivateKey(nostr.GeneratePrivateKey()))

	c.mu.Lock()
	assert.NotNil(t, c.dmSub)
	c.mu.Unlock()
}

func TestHandleOrderEventPublishesOrderUpdate(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	updates, cancel := c.OrderUpdates()
	defer cancel()

	ev := &nostr.Event{
		Kind: 38383,
		Tags: nostr.Tags{
			{"z", "order"},
			{"k", "sell"},
			{"f", "USD"},
			{"d", "o1"},
			{"s", "pending"},
		},
	}
	c.handleOrderEvent(ev)

	select {
	case update := <-updates:
		assert.Equal(t, "o1", update.Order.ID)
		assert.Equal(t, domain.OrderKindSell, update.Order.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for order-update")
	}
}

func TestHandleOrderEventPublishesMostroInfo(t *testing.T) {
	c, err := New(WithRelays(testRelay))
	require.NoError(t, err)
	defer c.Disconnect()

	infos, cancel := c.MostroInfoUpdates()
	defer cancel()

	ev := &nostr.Event{
		Kind: 38383,
		Tags: nostr.Tags{
			{"mostro_pubkey", "abc"},
			{"mostro_version", "0.1.0"},
		},
	}
	c.handleOrderEvent(ev)

	select {
	case info := <-infos:
		assert.Equal(t, "abc", info.MostroPubkey)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for mostro-info")
	}
}

func TestHandleDMResolvesRequestAndEmitsDM(t *testing.T) {
	myPriv := nostr.GeneratePrivateKey()
	senderPriv := nostr.GeneratePrivateKey()
	senderPub, err := nostr.GetPublicKey(senderPriv)
	require.NoError(t, err)

	c, err := New(WithRelays(testRelay), WithPrivateKey(myPriv))
	require.NoError(t, err)
	defer c.Disconnect()

	myPub, err := c.PublicKey(0)
	require.NoError(t, err)

	id, future := c.correlator.BeginRequest(time.Second)
	dms, cancel := c.DirectMessages()
	defer cancel()

	reqID := id
	msg := domain.MostroMessage{Order: &domain.OrderMessage{
		Version: 1, ID: "o1", RequestID: &reqID, Action: domain.ActionNewOrder,
	}}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	ciphertext, err := encryptForTest(string(body), senderPriv, myPub)
	require.NoError(t, err)

	ev := &nostr.Event{Kind: 4, PubKey: senderPub, Content: ciphertext}
	c.handleDM(ev)

	got, waitErr := future.Wait(context.Background())
	require.NoError(t, waitErr)
	assert.Equal(t, "o1", got.Order.ID)

	select {
	case dm := <-dms:
		assert.Equal(t, senderPub, dm.Sender)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dm event")
	}
}

func TestSearchOrdersReturnsWithoutHangingOnUnreachableRelay(t *testing.T) {
	c, err := New(WithRelays(testRelay), WithSearchTimeout(20*time.Millisecond))
	require.NoError(t, err)
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	orders, err := c.SearchOrders(ctx, orderFiltersForTest())
	require.NoError(t, err)
	assert.Empty(t, orders)
}
