package mostro

import (
	"github.com/mostro-go/client/internal/eventcrypto"
	"github.com/mostro-go/client/internal/orderfilter"
)

// encryptForTest builds the NIP-04 ciphertext an inbound kind-4 DM
// would carry, mirroring what a counterparty's client would send.
func encryptForTest(plaintext, senderPriv, recipientPub string) (string, error) {
	return eventcrypto.EncryptNIP04(plaintext, senderPriv, recipientPub)
}

// orderFiltersForTest is a neutral, match-nothing-specific filter used
// by tests that only care whether SearchOrders returns promptly.
func orderFiltersForTest() orderfilter.OrderFilters {
	return orderfilter.OrderFilters{DocumentType: "order"}
}
