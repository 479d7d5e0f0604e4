// Package keys owns a user's Nostr private key and everything derived
// from it: the hex/bech32 public key projections and fresh ephemeral
// keys for gift-wraps.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Encoding selects the output format of Manager.PublicKey.
type Encoding int

const (
	Hex Encoding = iota
	Npub
)

var (
	// ErrInvalidKeyFormat is returned when the input is neither 64 hex
	// chars nor a bech32 nsec.
	ErrInvalidKeyFormat = errors.New("keys: input is not 64 hex chars or an nsec1... string")
	// ErrInvalidBech32 is returned when the input looks like an nsec
	// but fails to decode.
	ErrInvalidBech32 = errors.New("keys: malformed nsec")
	// ErrNotSet is returned by operations that need a loaded key.
	ErrNotSet = errors.New("keys: no private key loaded")
)

// Manager holds at most one private key at a time. It is safe to read
// concurrently; Set is expected to be called only by the
// Orchestrator, which serializes them against in-flight requests.
type Manager struct {
	priv string // 64 lowercase hex chars, or "" if unset
	pub  string // 64 lowercase hex chars, derived
}

// New returns a Manager with no key loaded.
func New() *Manager {
	return &Manager{}
}

// Load parses raw as either 64 hex chars (case-insensitive) or a
// bech32 nsec1... string, and returns a new Manager holding it.
func Load(raw string) (*Manager, error) {
	m := New()
	if err := m.set(raw); err != nil {
		return nil, err
	}
	return m, nil
}

// Set replaces the Manager's key, parsing raw the same way Load does.
func (m *Manager) Set(raw string) error {
	return m.set(raw)
}

func (m *Manager) set(raw string) error {
	privHex, err := decodePrivateKey(raw)
	if err != nil {
		return err
	}
	pub, err := nostr.GetPublicKey(privHex)
	if err != nil {
		return fmt.Errorf("keys: derive public key: %w", err)
	}
	m.priv = privHex
	m.pub = pub
	return nil
}

func decodePrivateKey(raw string) (string, error) {
	switch {
	case isHex64(raw):
		return normalizeHex(raw), nil
	case len(raw) > 4 && raw[:4] == "nsec":
		prefix, data, err := nip19.Decode(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBech32, err)
		}
		if prefix != "nsec" {
			return "", ErrInvalidBech32
		}
		sk, ok := data.(string)
		if !ok || !isHex64(sk) {
			return "", ErrInvalidBech32
		}
		return normalizeHex(sk), nil
	default:
		return "", ErrInvalidKeyFormat
	}
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func normalizeHex(s string) string {
	b, _ := hex.DecodeString(s)
	return hex.EncodeToString(b)
}

// IsSet reports whether a private key has been loaded.
func (m *Manager) IsSet() bool { return m.priv != "" }

// PrivateKeyHex returns the loaded private key, or ErrNotSet.
func (m *Manager) PrivateKeyHex() (string, error) {
	if !m.IsSet() {
		return "", ErrNotSet
	}
	return m.priv, nil
}

// PublicKeyHex returns the loaded public key, or ErrNotSet.
func (m *Manager) PublicKeyHex() (string, error) {
	if !m.IsSet() {
		return "", ErrNotSet
	}
	return m.pub, nil
}

// PublicKey returns the public key encoded as requested.
func (m *Manager) PublicKey(enc Encoding) (string, error) {
	if !m.IsSet() {
		return "", ErrNotSet
	}
	switch enc {
	case Hex:
		return m.pub, nil
	case Npub:
		npub, err := nip19.EncodePublicKey(m.pub)
		if err != nil {
			return "", fmt.Errorf("keys: encode npub: %w", err)
		}
		return npub, nil
	default:
		return "", fmt.Errorf("keys: unknown encoding %d", enc)
	}
}

// RandomEphemeral generates a fresh secp256k1 keypair for a single
// gift-wrap, uniform over [1, n-1] via go-nostr's CSPRNG-backed
// GeneratePrivateKey.
func RandomEphemeral() (privHex, pubHex string, err error) {
	priv := nostr.GeneratePrivateKey()
	pub, err := nostr.GetPublicKey(priv)
	if err != nil {
		return "", "", fmt.Errorf("keys: derive ephemeral public key: %w", err)
	}
	return priv, pub, nil
}

// ResolvePubKey normalizes a hex-or-npub public key string to hex,
// used wherever the library accepts a pubkey from the embedding
// application (spec.md §6 configuration options).
func ResolvePubKey(raw string) (string, error) {
	if isHex64(raw) {
		return normalizeHex(raw), nil
	}
	if len(raw) > 4 && raw[:4] == "npub" {
		prefix, data, err := nip19.Decode(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBech32, err)
		}
		if prefix != "npub" {
			return "", ErrInvalidBech32
		}
		pk, ok := data.(string)
		if !ok || !isHex64(pk) {
			return "", ErrInvalidBech32
		}
		return normalizeHex(pk), nil
	}
	return "", ErrInvalidKeyFormat
}
