// Package token implements the reward-token sub-ledger.
//
// A Mint is the singleton descriptor of one fungible token; a Balance
// is one owner's holding of it. Both are JSON records keyed by their
// derived account address, and every mutation runs inside a ledger
// transaction so the sub-ledger commits or rolls back with the rest of
// the request.
package token

import (
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Mint describes a token: decimals, minting authority, total supply.
type Mint struct {
	Decimals  uint8         `json:"decimals"`
	Authority types.Address `json:"authority"`
	Supply    uint64        `json:"supply"`
}

// Initialized reports whether the mint's authority field is populated,
// which is how an existing mint is detected during provisioning.
func (m *Mint) Initialized() bool {
	return !m.Authority.IsZero()
}

// Balance is one owner's holding of a mint.
type Balance struct {
	Mint   types.Address `json:"mint"`
	Owner  types.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}
