package derive

import (
	"fmt"

	"github.com/spacefund-io/spacefund/pkg/types"
)

// Authority is a non-stored signing capability: the recipe for a derived
// address. Holding the recipe proves the right to act as the address —
// verification recomputes the address from (Seed, Bump) and compares it
// against the expected authority, never consulting a secret store.
type Authority struct {
	Seed []byte
	Bump uint8
}

// MintAuthority derives the deployment's mint authority recipe.
func MintAuthority(namespace types.Namespace) (Authority, error) {
	_, bump, err := Find(namespace, []byte(SeedMintAuthority))
	if err != nil {
		return Authority{}, fmt.Errorf("derive mint authority: %w", err)
	}
	return Authority{Seed: []byte(SeedMintAuthority), Bump: bump}, nil
}

// Address recomputes the address this recipe authorizes.
func (a Authority) Address(namespace types.Namespace) (types.Address, error) {
	return At(namespace, a.Bump, a.Seed)
}
