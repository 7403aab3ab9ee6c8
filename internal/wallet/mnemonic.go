// Package wallet manages mnemonic-derived ed25519 accounts and
// encrypted on-disk key storage.
package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits sizes new mnemonics at 24 words.
const MnemonicEntropyBits = 256

// GenerateMnemonic draws fresh entropy and encodes it as a 24-word
// BIP-39 phrase. The phrase is the only backup a wallet ever needs.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether a phrase has a valid BIP-39 word
// count, wordlist membership, and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
