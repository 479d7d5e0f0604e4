package giftwrap

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProducesSignedKind1059WithRecipientTag(t *testing.T) {
	senderPriv := nostr.GeneratePrivateKey()
	senderPub, err := nostr.GetPublicKey(senderPriv)
	require.NoError(t, err)
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)

	rumor := nostr.Event{
		Kind:      1,
		PubKey:    senderPub,
		Content:   `{"order":{"version":1,"action":"new-order"}}`,
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{},
	}

	wrap, err := Build(rumor, recipientPub)
	require.NoError(t, err)

	assert.Equal(t, 1059, wrap.Kind)
	assert.NotEqual(t, senderPub, wrap.PubKey, "wrap must be signed by an ephemeral key, not the real sender")
	require.Len(t, wrap.Tags, 1)
	assert.Equal(t, "p", wrap.Tags[0][0])
	assert.Equal(t, recipientPub, wrap.Tags[0][1])

	ok, err := wrap.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
}

// P4 (spec.md §8): now - 172800 <= created_at <= now.
func TestBuildTimestampIsWithinSmearWindow(t *testing.T) {
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)

	before := nostr.Now()
	rumor := nostr.Event{Kind: 1, Content: "hi", CreatedAt: before, Tags: nostr.Tags{}}
	wrap, err := Build(rumor, recipientPub)
	require.NoError(t, err)
	after := nostr.Now()

	assert.LessOrEqual(t, int64(wrap.CreatedAt), int64(after))
	assert.GreaterOrEqual(t, int64(wrap.CreatedAt), int64(before)-MaxClockSmear)
}

func TestBuildUsesFreshKeyEachCall(t *testing.T) {
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)
	rumor := nostr.Event{Kind: 1, Content: "hi", CreatedAt: nostr.Now(), Tags: nostr.Tags{}}

	first, err := Build(rumor, recipientPub)
	require.NoError(t, err)
	second, err := Build(rumor, recipientPub)
	require.NoError(t, err)

	assert.NotEqual(t, first.PubKey, second.PubKey)
}

func TestUnwrapRoundTrip(t *testing.T) {
	senderPriv := nostr.GeneratePrivateKey()
	senderPub, err := nostr.GetPublicKey(senderPriv)
	require.NoError(t, err)
	recipientPriv := nostr.GeneratePrivateKey()
	recipientPub, err := nostr.GetPublicKey(recipientPriv)
	require.NoError(t, err)

	const payload = `{"order":{"version":1,"action":"new-order"}}`
	rumor := nostr.Event{
		Kind:      1,
		PubKey:    senderPub,
		Content:   payload,
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{},
	}

	wrap, err := Build(rumor, recipientPub)
	require.NoError(t, err)

	unwrapped, err := Unwrap(wrap, recipientPriv)
	require.NoError(t, err)
	assert.Equal(t, payload, unwrapped.Content)
	assert.Equal(t, senderPub, unwrapped.PubKey)
}
