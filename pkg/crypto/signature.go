package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/spacefund-io/spacefund/pkg/types"
)

// SignatureSize is the length of an ed25519 signature in bytes.
const SignatureSize = ed25519.SignatureSize

// SeedSize is the length of an ed25519 private key seed in bytes.
const SeedSize = ed25519.SeedSize

// Signer signs messages with an ed25519 private key.
type Signer interface {
	// Sign produces an ed25519 signature over a message.
	Sign(message []byte) []byte
	// Address returns the signer's account address (its public key).
	Address() types.Address
}

// PrivateKey wraps an ed25519 private key. The account address of a
// keypair is its 32-byte public key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenerateKey creates a new random ed25519 private key.
func GenerateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed creates a PrivateKey from a 32-byte seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign produces an ed25519 signature over the message.
func (pk *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(pk.key, message)
}

// Address returns the account address (the ed25519 public key).
func (pk *PrivateKey) Address() types.Address {
	var addr types.Address
	copy(addr[:], pk.key.Public().(ed25519.PublicKey))
	return addr
}

// Seed returns the 32-byte private key seed.
func (pk *PrivateKey) Seed() []byte {
	return pk.key.Seed()
}

// Zero overwrites the private key material.
func (pk *PrivateKey) Zero() {
	for i := range pk.key {
		pk.key[i] = 0
	}
}

// VerifySignature checks an ed25519 signature over message against the
// signer's address (public key). Returns false on any error.
func VerifySignature(addr types.Address, message, signature []byte) bool {
	if len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(addr[:]), message, signature)
}
