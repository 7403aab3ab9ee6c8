package wallet

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the byte length of a derived wallet seed (512 bits).
// Account keys are derived from this seed, never from the mnemonic text.
const SeedSize = 64

// ErrInvalidMnemonic is returned when a phrase fails BIP-39 validation.
var ErrInvalidMnemonic = errors.New("wallet: invalid mnemonic")

// SeedFromMnemonic stretches a mnemonic and optional passphrase into a
// 512-bit seed (BIP-39 PBKDF2-SHA512). Callers own zeroing the result.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}
