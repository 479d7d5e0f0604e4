// Package eventcrypto implements the two Nostr encryption schemes the
// Mostro protocol uses — legacy NIP-04 for peer-to-peer kind-4 DMs,
// and NIP-44 v2 for gift-wrap payloads — plus event signing.
package eventcrypto

import (
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"
	"github.com/nbd-wtf/go-nostr/nip44"
)

// ErrDecryptFailed is returned when a ciphertext fails to decrypt or
// fails MAC verification, under either scheme.
var ErrDecryptFailed = errors.New("eventcrypto: decryption failed")

// EncryptNIP44 encrypts plaintext for recipientPub using senderPriv,
// returning the base64-encoded NIP-44 v2 payload.
func EncryptNIP44(plaintext, senderPriv, recipientPub string) (string, error) {
	key, err := nip44.GenerateConversationKey(recipientPub, senderPriv)
	if err != nil {
		return "", fmt.Errorf("eventcrypto: derive nip44 conversation key: %w", err)
	}
	ciphertext, err := nip44.Encrypt(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("eventcrypto: nip44 encrypt: %w", err)
	}
	return ciphertext, nil
}

// DecryptNIP44 decrypts a base64 NIP-44 v2 payload addressed to
// localPriv from peerPub.
func DecryptNIP44(ciphertextB64, localPriv, peerPub string) (string, error) {
	key, err := nip44.GenerateConversationKey(peerPub, localPriv)
	if err != nil {
		return "", fmt.Errorf("%w: derive conversation key: %v", ErrDecryptFailed, err)
	}
	plaintext, err := nip44.Decrypt(ciphertextB64, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plaintext, nil
}

// EncryptNIP04 encrypts plaintext for recipientPub using senderPriv
// under the legacy scheme used for kind-4 DMs. Kept as a distinct
// codepath from NIP-44 (not merely a thin wrapper) to preserve
// bit-compatibility with how the Mostro deployed ecosystem speaks
// kind-4, per spec.md §4.B.
func EncryptNIP04(plaintext, senderPriv, recipientPub string) (string, error) {
	shared, err := nip04.ComputeSharedSecret(recipientPub, senderPriv)
	if err != nil {
		return "", fmt.Errorf("eventcrypto: derive nip04 shared secret: %w", err)
	}
	ciphertext, err := nip04.Encrypt(plaintext, shared)
	if err != nil {
		return "", fmt.Errorf("eventcrypto: nip04 encrypt: %w", err)
	}
	return ciphertext, nil
}

// DecryptNIP04 decrypts a legacy kind-4 DM payload.
func DecryptNIP04(ciphertext, localPriv, peerPub string) (string, error) {
	shared, err := nip04.ComputeSharedSecret(peerPub, localPriv)
	if err != nil {
		return "", fmt.Errorf("%w: derive shared secret: %v", ErrDecryptFailed, err)
	}
	plaintext, err := nip04.Decrypt(ciphertext, shared)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plaintext, nil
}

// SignEvent computes the event id and a BIP-340 schnorr signature
// over it, via go-nostr's own Event.Sign — the event id calculation
// (canonical [0,pubkey,created_at,kind,tags,content] serialization)
// lives in that library, out of scope for this client per spec.md §1.
func SignEvent(ev *nostr.Event, priv string) error {
	if err := ev.Sign(priv); err != nil {
		return fmt.Errorf("eventcrypto: sign event: %w", err)
	}
	return nil
}
