package ledger

import (
	"crypto/rand"
	"encoding/hex"
)

// Provenance hash widths in hex digits.
const (
	WalletHashDigits   = 64
	ContractHashDigits = 40
)

// NewHash returns a cosmetic 0x-prefixed hex string of the given digit count.
func NewHash(digits int) string {
	buf := make([]byte, (digits+1)/2)
	_, _ = rand.Read(buf)

	return "0x" + hex.EncodeToString(buf)[:digits]
}
