package types

// AccountKind identifies what a ledger account holds.
type AccountKind string

const (
	// KindSystem is a plain native-balance account (users, the vault).
	KindSystem AccountKind = "system"

	// KindMint marks the account backing a token mint record.
	KindMint AccountKind = "mint"

	// KindToken marks the account backing a per-owner token balance record.
	KindToken AccountKind = "token"
)

// Valid returns true for a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case KindSystem, KindMint, KindToken:
		return true
	}
	return false
}

// HoldsData returns true if accounts of this kind carry a sub-ledger record
// and require a storage deposit at creation.
func (k AccountKind) HoldsData() bool {
	return k == KindMint || k == KindToken
}
