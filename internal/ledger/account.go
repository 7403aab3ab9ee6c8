package ledger

import (
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Account is one persistent ledger account.
type Account struct {
	Balance uint64            `json:"balance"`
	Nonce   uint64            `json:"nonce"`
	Kind    types.AccountKind `json:"kind"`
}

// Storage deposits parked in a data-bearing account at creation,
// debited from the paying account. Creation fails entirely if the
// payer cannot cover the deposit.
const (
	// MintAccountDeposit backs a mint record.
	MintAccountDeposit = 1_461_600
	// BalanceAccountDeposit backs a per-owner token balance record.
	BalanceAccountDeposit = 2_039_280
)

// prefixAccount keys account JSON: "a/" + address(32).
var prefixAccount = []byte("a/")

func accountKey(addr types.Address) []byte {
	key := make([]byte, len(prefixAccount)+types.AddressSize)
	copy(key, prefixAccount)
	copy(key[len(prefixAccount):], addr[:])
	return key
}
