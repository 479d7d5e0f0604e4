package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostro-go/client/internal/correlator"
	"github.com/mostro-go/client/internal/domain"
	"github.com/mostro-go/client/internal/giftwrap"
)

// fakeKeys is a minimal KeySource double.
type fakeKeys struct {
	set bool
	pub string
}

func (f fakeKeys) IsSet() bool                  { return f.set }
func (f fakeKeys) PublicKeyHex() (string, error) { return f.pub, nil }

// capturingPublisher records the last gift-wrapped event it was asked
// to publish, so tests can unwrap and inspect the payload.
type capturingPublisher struct {
	last nostr.Event
	err  error
}

func (p *capturingPublisher) Publish(ctx context.Context, ev nostr.Event) error {
	p.last = ev
	return p.err
}

func setupDispatcher(t *testing.T) (*Dispatcher, *correlator.Correlator, *capturingPublisher, string) {
	t.Helper()
	c := correlator.New(time.Second)
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)
	senderPriv := nostr.GeneratePrivateKey()
	senderPub, err := nostr.GetPublicKey(senderPriv)
	require.NoError(t, err)

	pub := &capturingPublisher{}
	d := New(c, pub, fakeKeys{set: true, pub: senderPub}, recipientPub, time.Second)
	return d, c, pub, recipientPriv
}

// publishedRumor unwraps the last gift wrap pub was asked to publish
// and returns the payload JSON it carries.
func publishedRumor(t *testing.T, pub *capturingPublisher, recipientPriv string) []byte {
	t.Helper()
	rumor, err := giftwrap.Unwrap(pub.last, recipientPriv)
	require.NoError(t, err)
	return []byte(rumor.Content)
}

func TestSendFailsWithoutKey(t *testing.T) {
	c := correlator.New(time.Second)
	d := New(c, &capturingPublisher{}, fakeKeys{set: false}, "mostropub", time.Second)

	_, err := d.Release(context.Background(), domain.Order{ID: "o1"})
	assert.ErrorIs(t, err, ErrKeyNotSet)
}

func TestSubmitOrderRejectsNegativeAmount(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)
	_, err := d.SubmitOrder(context.Background(), domain.Order{Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSubmitOrderPublishesNewOrderAction(t *testing.T) {
	d, _, pub, recipientPriv := setupDispatcher(t)

	_, err := d.SubmitOrder(context.Background(), domain.Order{
		Kind:     domain.OrderKindSell,
		FiatCode: "USD",
		Amount:   0,
	})
	require.NoError(t, err)

	require.Equal(t, 1059, pub.last.Kind)

	var msg domain.MostroMessage
	require.NoError(t, json.Unmarshal(publishedRumor(t, pub, recipientPriv), &msg))
	require.NotNil(t, msg.Order)
	assert.Equal(t, domain.ActionNewOrder, msg.Order.Action)
	require.NotNil(t, msg.Order.Content)
	assert.NotNil(t, msg.Order.Content.Order)
}

func TestTakeSellWithAmountEmitsAmountContent(t *testing.T) {
	d, c, pub, recipientPriv := setupDispatcher(t)
	_, err := d.TakeSell(context.Background(), domain.Order{ID: "o1"}, intPtr(50000))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, 1059, pub.last.Kind)

	var msg domain.MostroMessage
	require.NoError(t, json.Unmarshal(publishedRumor(t, pub, recipientPriv), &msg))
	require.NotNil(t, msg.Order)
	assert.Equal(t, domain.ActionTakeSell, msg.Order.Action)
	assert.Equal(t, "o1", msg.Order.ID)
	require.NotNil(t, msg.Order.Content)
	require.NotNil(t, msg.Order.Content.Amount)
	assert.Equal(t, 50000, *msg.Order.Content.Amount)
}

func TestTakeSellWithoutAmountEmitsNullContent(t *testing.T) {
	d, _, pub, recipientPriv := setupDispatcher(t)
	_, err := d.TakeSell(context.Background(), domain.Order{ID: "o1"}, nil)
	require.NoError(t, err)

	var payload struct {
		Order map[string]json.RawMessage `json:"order"`
	}
	require.NoError(t, json.Unmarshal(publishedRumor(t, pub, recipientPriv), &payload))
	assert.Equal(t, `"take-sell"`, string(payload.Order["action"]))
	assert.Equal(t, "null", string(payload.Order["content"]))
}

func TestReleaseAllocatesACorrelatorSlot(t *testing.T) {
	d, c, _, _ := setupDispatcher(t)
	assert.Equal(t, 0, c.Len())
	_, err := d.Release(context.Background(), domain.Order{ID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestPublishFailureIsPropagated(t *testing.T) {
	c := correlator.New(time.Second)
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)
	senderPriv := nostr.GeneratePrivateKey()
	senderPub, err := nostr.GetPublicKey(senderPriv)
	require.NoError(t, err)

	pub := &capturingPublisher{err: assertErr}
	d := New(c, pub, fakeKeys{set: true, pub: senderPub}, recipientPub, time.Second)

	_, err = d.Cancel(context.Background(), domain.Order{ID: "o1"})
	assert.ErrorIs(t, err, assertErr)
	// The slot must not leak once publish fails.
	assert.Equal(t, 0, c.Len())
}

var assertErr = errPublishBoom{}

type errPublishBoom struct{}

func (errPublishBoom) Error() string { return "boom" }

func TestAmountContentRoundTripsThroughJSON(t *testing.T) {
	content := amountContent(intPtr(42))
	b, err := json.Marshal(content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":42}`, string(b))
}

func TestAmountContentNilMeansNullContent(t *testing.T) {
	assert.Nil(t, amountContent(nil))
}

func intPtr(v int) *int { return &v }
