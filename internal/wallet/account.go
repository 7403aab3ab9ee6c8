package wallet

import (
	"encoding/binary"
	"fmt"

	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// accountKeyContext domain-separates account key derivation from every
// other BLAKE3 use in the system.
const accountKeyContext = "spacefund/account-key/v1"

// Account is metadata for one derived account.
type Account struct {
	Index   uint32
	Name    string
	Address types.Address
}

// DeriveAccountKey deterministically derives the ed25519 key for one
// account index from the wallet's master seed. The same (seed, index)
// always yields the same keypair, so a wallet restored from its
// mnemonic recovers every account.
func DeriveAccountKey(seed []byte, index uint32) (*crypto.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}

	material := make([]byte, len(seed)+4)
	copy(material, seed)
	binary.LittleEndian.PutUint32(material[len(seed):], index)

	keySeed := crypto.DeriveKey(accountKeyContext, material)
	defer func() {
		for i := range material {
			material[i] = 0
		}
		for i := range keySeed {
			keySeed[i] = 0
		}
	}()

	return crypto.PrivateKeyFromSeed(keySeed[:])
}

// DeriveAccountAddress returns just the address for an account index.
func DeriveAccountAddress(seed []byte, index uint32) (types.Address, error) {
	key, err := DeriveAccountKey(seed, index)
	if err != nil {
		return types.Address{}, err
	}
	addr := key.Address()
	key.Zero()
	return addr, nil
}
