// Package crypto provides cryptographic primitives for Spacefund.
package crypto

import (
	"github.com/spacefund-io/spacefund/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashAll computes a BLAKE3-256 hash over the concatenation of parts
// without building the joined buffer.
func HashAll(parts ...[]byte) types.Hash {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// DeriveKey derives a 32-byte key from material using BLAKE3's KDF mode.
// The context string must be unique per use.
func DeriveKey(context string, material []byte) [32]byte {
	var out [32]byte
	blake3.DeriveKey(context, material, out[:])
	return out
}
