// Package giftwrap builds NIP-59 gift-wrapped events: an inner rumor
// is NIP-44-encrypted and wrapped in a signed kind-1059 event signed
// by a fresh ephemeral key, with a randomized past timestamp to
// frustrate timing correlation, per spec.md §4.E.
package giftwrap

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/mailru/easyjson"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip44"

	"github.com/mostro-go/client/internal/keys"
)

// MaxClockSmear is the widest backdating window applied to a gift
// wrap's created_at, per spec.md §4.E / P4: now - 2*24*3600 <= created_at <= now.
const MaxClockSmear = 2 * 24 * 3600

// Build wraps rumor for recipientPub: it assigns rumor a fresh random
// id (the Mostro-specific convention noted in spec.md §4.E — not the
// recipient-derivable event id), encrypts its canonical JSON under a
// fresh ephemeral key's NIP-44 v2 conversation key with recipientPub,
// and returns a signed kind-1059 event.
func Build(rumor nostr.Event, recipientPub string) (nostr.Event, error) {
	rumorID, err := randomHex32()
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: generate rumor id: %w", err)
	}
	rumor.ID = rumorID
	rumor.Sig = ""

	ephemeralPriv, _, err := keys.RandomEphemeral()
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: generate ephemeral key: %w", err)
	}

	convKey, err := nip44.GenerateConversationKey(recipientPub, ephemeralPriv)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: derive conversation key: %w", err)
	}

	ciphertext, err := nip44.Encrypt(rumor.String(), convKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: encrypt rumor: %w", err)
	}

	createdAt, err := randomPastTimestamp()
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: pick smeared timestamp: %w", err)
	}

	wrap := nostr.Event{
		Kind:      1059,
		Content:   ciphertext,
		CreatedAt: createdAt,
		Tags:      nostr.Tags{{"p", recipientPub}},
	}
	if err := wrap.Sign(ephemeralPriv); err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: sign wrap: %w", err)
	}
	return wrap, nil
}

// Unwrap decrypts a kind-1059 gift wrap using localPriv and returns
// the inner rumor. It does not verify the rumor's signature — rumors
// are unsigned by construction (the whole point of a gift wrap is
// that the real author never signs the outer event their counterparty
// sees on the relay).
func Unwrap(wrap nostr.Event, localPriv string) (nostr.Event, error) {
	convKey, err := nip44.GenerateConversationKey(wrap.PubKey, localPriv)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: derive conversation key: %w", err)
	}
	plaintext, err := nip44.Decrypt(wrap.Content, convKey)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: decrypt wrap: %w", err)
	}
	rumor, err := parseEvent(plaintext)
	if err != nil {
		return nostr.Event{}, fmt.Errorf("giftwrap: parse rumor: %w", err)
	}
	return rumor, nil
}

// parseEvent unmarshals a Nostr event using go-nostr's easyjson
// codec, the same one it uses for every event it produces — matching
// the pack's own gift-wrap/seal unwrapping convention rather than
// reaching for encoding/json.
func parseEvent(raw string) (nostr.Event, error) {
	var ev nostr.Event
	if err := easyjson.Unmarshal([]byte(raw), &ev); err != nil {
		return nostr.Event{}, err
	}
	return ev, nil
}

func randomHex32() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// randomPastTimestamp draws a uniform integer in [now - MaxClockSmear, now].
func randomPastTimestamp() (nostr.Timestamp, error) {
	now := nostr.Now()
	n, err := rand.Int(rand.Reader, big.NewInt(MaxClockSmear+1))
	if err != nil {
		return 0, err
	}
	return now - nostr.Timestamp(n.Int64()), nil
}
