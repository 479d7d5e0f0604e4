package keys

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHex(t *testing.T) {
	priv := nostr.GeneratePrivateKey()
	m, err := Load(priv)
	require.NoError(t, err)
	require.True(t, m.IsSet())

	got, err := m.PrivateKeyHex()
	require.NoError(t, err)
	assert.Equal(t, priv, got)
}

func TestLoadHexUppercase(t *testing.T) {
	priv := nostr.GeneratePrivateKey()
	m, err := Load(strings.ToUpper(priv))
	require.NoError(t, err)
	got, _ := m.PrivateKeyHex()
	assert.Equal(t, priv, got)
}

func TestLoadNsec(t *testing.T) {
	priv := nostr.GeneratePrivateKey()
	nsec, err := nip19.EncodePrivateKey(priv)
	require.NoError(t, err)

	m, err := Load(nsec)
	require.NoError(t, err)
	got, _ := m.PrivateKeyHex()
	assert.Equal(t, priv, got)
}

func TestLoadInvalidFormat(t *testing.T) {
	_, err := Load("not-a-key")
	assert.ErrorIs(t, err, ErrInvalidKeyFormat)
}

func TestLoadMalformedNsec(t *testing.T) {
	_, err := Load("nsec1thisisnotvalid")
	assert.ErrorIs(t, err, ErrInvalidBech32)
}

func TestPublicKeyEncodings(t *testing.T) {
	priv := nostr.GeneratePrivateKey()
	pub, err := nostr.GetPublicKey(priv)
	require.NoError(t, err)
	wantNpub, err := nip19.EncodePublicKey(pub)
	require.NoError(t, err)

	m, err := Load(priv)
	require.NoError(t, err)

	hexPub, err := m.PublicKey(Hex)
	require.NoError(t, err)
	assert.Equal(t, pub, hexPub)

	npub, err := m.PublicKey(Npub)
	require.NoError(t, err)
	assert.Equal(t, wantNpub, npub)
}

func TestPublicKeyWithoutKeySet(t *testing.T) {
	m := New()
	_, err := m.PublicKey(Hex)
	assert.ErrorIs(t, err, ErrNotSet)
}

func TestRandomEphemeralIsFreshEachTime(t *testing.T) {
	priv1, pub1, err := RandomEphemeral()
	require.NoError(t, err)
	priv2, pub2, err := RandomEphemeral()
	require.NoError(t, err)

	assert.NotEqual(t, priv1, priv2)
	assert.NotEqual(t, pub1, pub2)

	derivedPub1, err := nostr.GetPublicKey(priv1)
	require.NoError(t, err)
	assert.Equal(t, pub1, derivedPub1)
}

func TestResolvePubKeyAcceptsHexAndNpub(t *testing.T) {
	priv := nostr.GeneratePrivateKey()
	pub, err := nostr.GetPublicKey(priv)
	require.NoError(t, err)
	npub, err := nip19.EncodePublicKey(pub)
	require.NoError(t, err)

	got, err := ResolvePubKey(pub)
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	got, err = ResolvePubKey(npub)
	require.NoError(t, err)
	assert.Equal(t, pub, got)
}
