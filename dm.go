package mostro

import (
	"context"
	"fmt"

	"github.com/nbd-wtf/go-nostr"

	"github.com/mostro-go/client/internal/eventcrypto"
	"github.com/mostro-go/client/internal/keys"
)

// SendDirectMessage sends text to peerPub (hex or npub) as a legacy
// NIP-04 kind-4 event — out-of-band peer chat, not gift-wrapped,
// mirroring spec.md §1(c) and §3's Peer-revealed-mid-trade scope item.
func (c *Client) SendDirectMessage(ctx context.Context, peerPub, text string) error {
	if !c.keys.IsSet() {
		return ErrKeyNotSet
	}
	priv, err := c.keys.PrivateKeyHex()
	if err != nil {
		return fmt.Errorf("mostro: %w", ErrKeyNotSet)
	}
	myPub, err := c.keys.PublicKeyHex()
	if err != nil {
		return fmt.Errorf("mostro: %w", ErrKeyNotSet)
	}

	resolvedPeer, err := keys.ResolvePubKey(peerPub)
	if err != nil {
		return fmt.Errorf("mostro: peer pubkey: %w", err)
	}

	ciphertext, err := eventcrypto.EncryptNIP04(text, priv, resolvedPeer)
	if err != nil {
		return fmt.Errorf("mostro: encrypt dm: %w", err)
	}

	ev := nostr.Event{
		Kind:      4,
		PubKey:    myPub,
		Content:   ciphertext,
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{{"p", resolvedPeer}},
	}
	if err := eventcrypto.SignEvent(&ev, priv); err != nil {
		return fmt.Errorf("mostro: sign dm: %w", err)
	}

	if err := c.gateway.Publish(ctx, ev); err != nil {
		return fmt.Errorf("mostro: publish dm: %w", err)
	}
	return nil
}
