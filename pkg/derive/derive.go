// Package derive computes deterministic program-derived addresses.
//
// A derived address is a hash over a deployment namespace and a seed
// vector, searched for the first disambiguation byte ("bump") whose
// candidate does not decode as an ed25519 curve point. Because user
// addresses ARE ed25519 public keys, an off-curve address provably has
// no signing key: the only way to act as it is to present the same
// derivation recipe back to the ledger.
package derive

import (
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/zeebo/blake3"

	"github.com/spacefund-io/spacefund/pkg/types"
)

// Fixed seed tags of the donation protocol.
const (
	SeedVault         = "donation_vault"
	SeedMint          = "spacex_token_mint"
	SeedMintAuthority = "mint_authority"
	SeedTokenBalance  = "token_balance"
)

const (
	// MaxSeeds bounds the seed vector length.
	MaxSeeds = 16
	// MaxSeedLen bounds the length of a single seed.
	MaxSeedLen = 32
)

// marker domain-separates derived-address preimages from every other
// hash in the system.
const marker = "spacefund/derived-address/v1"

var (
	ErrInvalidSeeds = errors.New("invalid seeds")
	ErrOnCurve      = errors.New("derived address is on-curve")
	ErrNoBumpFound  = errors.New("no viable derived address found")
)

// Find searches bumps 255 down to 0 for the first off-curve candidate
// and returns the derived address with its bump. Identical inputs always
// yield the identical (address, bump) pair.
func Find(namespace types.Namespace, seeds ...[]byte) (types.Address, uint8, error) {
	for bump := uint8(255); ; bump-- {
		addr, err := At(namespace, bump, seeds...)
		if err == nil {
			return addr, bump, nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return types.Address{}, 0, err
		}
		if bump == 0 {
			return types.Address{}, 0, ErrNoBumpFound
		}
	}
}

// At recomputes the candidate address for a known bump. It returns
// ErrOnCurve if the candidate decodes as a valid curve point, so a
// stored (seeds, bump) recipe can never be made to alias a signable
// address.
func At(namespace types.Namespace, bump uint8, seeds ...[]byte) (types.Address, error) {
	if len(seeds) > MaxSeeds {
		return types.Address{}, fmt.Errorf("%w: %d seeds, max %d", ErrInvalidSeeds, len(seeds), MaxSeeds)
	}

	h := blake3.New()
	h.Write([]byte(marker))
	h.Write(namespace[:])

	// Seeds are length-framed so ("ab","c") and ("a","bc") cannot
	// produce the same preimage.
	var frame [2]byte
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return types.Address{}, fmt.Errorf("%w: seed is %d bytes, max %d", ErrInvalidSeeds, len(seed), MaxSeedLen)
		}
		binary.LittleEndian.PutUint16(frame[:], uint16(len(seed)))
		h.Write(frame[:])
		h.Write(seed)
	}
	h.Write([]byte{bump})

	var addr types.Address
	h.Sum(addr[:0])

	if isOnCurve(addr) {
		return types.Address{}, ErrOnCurve
	}
	return addr, nil
}

// isOnCurve reports whether the address decodes as an ed25519 point,
// i.e. whether a public key with this exact byte representation exists.
func isOnCurve(addr types.Address) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}
