package mostro

import (
	"errors"

	"github.com/mostro-go/client/internal/dispatcher"
)

var (
	// ErrNoRelays is returned by New when no relay URL was configured.
	ErrNoRelays = errors.New("mostro: at least one relay is required")
	// ErrKeyNotSet is returned by every trade action and SendDirectMessage
	// when no private key has been loaded.
	ErrKeyNotSet = dispatcher.ErrKeyNotSet
	// ErrMalformedMessage is logged, never returned to a caller, when an
	// inbound DM decrypts but fails to parse as a MostroMessage.
	ErrMalformedMessage = errors.New("mostro: malformed message")
	// ErrKeyRotated fails every outstanding completion when
	// UpdatePrivateKey replaces the loaded key.
	ErrKeyRotated = errors.New("mostro: private key replaced")
)
