package token

import (
	"errors"
	"fmt"
	"math"

	"github.com/spacefund-io/spacefund/internal/ledger"
	"github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/pkg/derive"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Token engine errors.
var (
	ErrMintNotInitialized = errors.New("mint not initialized")
	ErrUnauthorizedMint   = errors.New("authority proof does not match mint authority")
	ErrWrongMint          = errors.New("balance account bound to a different mint")
	ErrOwnerMismatch      = errors.New("balance account owned by someone else")
	ErrSupplyOverflow     = errors.New("mint supply overflow")
	ErrBalanceOverflow    = errors.New("token balance overflow")
	ErrNoAuthority        = errors.New("mint requires an authority")
)

// Engine exposes the token sub-ledger operations. Every operation runs
// inside a ledger transaction supplied by the caller, so token state
// commits or rolls back atomically with native balances.
type Engine struct {
	ns types.Namespace
}

// NewEngine creates a token engine scoped to a deployment namespace.
func NewEngine(ns types.Namespace) *Engine {
	return &Engine{ns: ns}
}

// CreateMint creates a mint record and its backing ledger account at
// addr. The payer covers the account's storage deposit.
func (e *Engine) CreateMint(txn *ledger.Txn, addr types.Address, decimals uint8, authority, payer types.Address) error {
	if authority.IsZero() {
		return ErrNoAuthority
	}
	if err := txn.CreateAccount(addr, types.KindMint, payer, ledger.MintAccountDeposit); err != nil {
		return err
	}
	if err := PutMint(txn, addr, &Mint{Decimals: decimals, Authority: authority}); err != nil {
		return err
	}
	log.Token.Info().
		Stringer("mint", addr).
		Uint8("decimals", decimals).
		Stringer("authority", authority).
		Msg("mint created")
	return nil
}

// CreateBalanceAccount creates a zero-amount balance record for
// (mint, owner) at addr, with the payer covering the storage deposit.
func (e *Engine) CreateBalanceAccount(txn *ledger.Txn, addr, mint, owner, payer types.Address) error {
	if err := txn.CreateAccount(addr, types.KindToken, payer, ledger.BalanceAccountDeposit); err != nil {
		return err
	}
	if err := PutBalance(txn, addr, &Balance{Mint: mint, Owner: owner}); err != nil {
		return err
	}
	log.Token.Info().
		Stringer("account", addr).
		Stringer("owner", owner).
		Msg("balance account created")
	return nil
}

// MintTo mints amount into the balance account at dest, authorized by
// a derivation recipe rather than a stored key: the recipe's address
// is recomputed and must equal the mint's configured authority. A zero
// amount is an accepted no-op.
func (e *Engine) MintTo(txn *ledger.Txn, mintAddr, dest types.Address, amount uint64, proof derive.Authority) error {
	mint, err := GetMint(txn, mintAddr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMintNotInitialized, mintAddr)
	}
	if !mint.Initialized() {
		return fmt.Errorf("%w: %s", ErrMintNotInitialized, mintAddr)
	}

	proofAddr, err := proof.Address(e.ns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorizedMint, err)
	}
	if proofAddr != mint.Authority {
		return fmt.Errorf("%w: recipe derives %s, mint expects %s", ErrUnauthorizedMint, proofAddr, mint.Authority)
	}

	bal, err := GetBalance(txn, dest)
	if err != nil {
		return fmt.Errorf("mint destination %s: %w", dest, err)
	}
	if bal.Mint != mintAddr {
		return fmt.Errorf("%w: %s holds %s", ErrWrongMint, dest, bal.Mint)
	}

	if mint.Supply > math.MaxUint64-amount {
		return fmt.Errorf("%w: supply %d + %d", ErrSupplyOverflow, mint.Supply, amount)
	}
	if bal.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: balance %d + %d", ErrBalanceOverflow, bal.Amount, amount)
	}

	mint.Supply += amount
	bal.Amount += amount
	if err := PutMint(txn, mintAddr, mint); err != nil {
		return err
	}
	if err := PutBalance(txn, dest, bal); err != nil {
		return err
	}

	log.Token.Info().
		Stringer("recipient", bal.Owner).
		Uint64("amount", amount).
		Msg("TOKEN_MINT_EVENT")
	return nil
}

// Transfer moves amount between two balance accounts of the same mint.
// The caller must have verified the from-account owner's authorization.
func (e *Engine) Transfer(txn *ledger.Txn, owner, from, to types.Address, amount uint64) error {
	src, err := GetBalance(txn, from)
	if err != nil {
		return fmt.Errorf("transfer source %s: %w", from, err)
	}
	if src.Owner != owner {
		return fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, from, src.Owner)
	}
	dst, err := GetBalance(txn, to)
	if err != nil {
		return fmt.Errorf("transfer destination %s: %w", to, err)
	}
	if dst.Mint != src.Mint {
		return fmt.Errorf("%w: %s holds %s", ErrWrongMint, to, dst.Mint)
	}

	if src.Amount < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ledger.ErrInsufficientFunds, from, src.Amount, amount)
	}
	if dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: balance %d + %d", ErrBalanceOverflow, dst.Amount, amount)
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := PutBalance(txn, from, src); err != nil {
		return err
	}
	return PutBalance(txn, to, dst)
}
