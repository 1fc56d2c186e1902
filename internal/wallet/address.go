// Package wallet validates Solana wallet addresses, counts their empty SPL token accounts
// and estimates the rent that closing those accounts would return.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	solanago "github.com/gagliardetto/solana-go"

	"rent-reclaim-bot/internal/domain"
)

// ErrInvalidAddress is returned when input is not a 32-byte base58 public key.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Address is a validated Solana public key.
type Address struct {
	key solanago.PublicKey
}

// ParseAddress trims surrounding whitespace and decodes raw as a base58 public key.
// It never touches the network.
func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty input", ErrInvalidAddress)
	}
	key, err := solanago.PublicKeyFromBase58(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return Address{key: key}, nil
}

// String returns the base58 form.
func (a Address) String() string {
	return a.key.String()
}

// Bytes returns the raw 32 bytes.
func (a Address) Bytes() []byte {
	return a.key.Bytes()
}

// PublicKey returns the underlying solana-go key.
func (a Address) PublicKey() solanago.PublicKey {
	return a.key
}

// OnCurve reports whether the key is a valid ed25519 point.
// Program derived addresses are off curve.
func (a Address) OnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a.key.Bytes())
	return err == nil
}

// Kind returns the address kind label used in metrics and the scan log.
func (a Address) Kind() string {
	if a.OnCurve() {
		return domain.AddressKindWallet
	}
	return domain.AddressKindOffCurve
}

// Short returns a shortened form safe for logs, e.g. "7xKX…AsU".
func (a Address) Short() string {
	s := a.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}
