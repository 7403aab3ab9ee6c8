// Package ledger implements the persistent account substrate.
//
// Every state mutation runs inside Execute, which serializes writers
// under one mutex (total ordering) and stages all changes in an overlay
// committed as a single storage batch (atomicity). A request therefore
// either applies in full or leaves no trace.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/storage"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Ledger errors.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidDestination = errors.New("invalid destination account")
	ErrBalanceOverflow    = errors.New("balance overflow")
	ErrBadNonce           = errors.New("nonce mismatch")
)

// Ledger is a single-node account store with atomic, totally-ordered
// state transitions.
type Ledger struct {
	mu sync.Mutex // Serializes Execute: the ledger's total ordering.
	db storage.DB
}

// New creates a ledger over the given database.
func New(db storage.DB) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("storage db is nil")
	}
	if _, ok := db.(storage.Batcher); !ok {
		return nil, fmt.Errorf("storage db does not support atomic batches")
	}
	return &Ledger{db: db}, nil
}

// Fund credits allocations directly, creating system accounts as
// needed. Used for deployment allocations at first boot.
func (l *Ledger) Fund(alloc map[types.Address]uint64) error {
	return l.Execute(func(txn *Txn) error {
		for addr, amount := range alloc {
			if err := txn.Credit(addr, amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// Execute runs fn against an overlay transaction. If fn returns nil the
// overlay commits as one atomic batch; any error discards it whole.
// Execute never runs two transactions concurrently.
func (l *Ledger) Execute(fn func(*Txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := &Txn{
		ledger:   l,
		accounts: make(map[types.Address]*Account),
		records:  make(map[string][]byte),
	}

	if err := fn(txn); err != nil {
		return err
	}

	batch := l.db.(storage.Batcher).NewBatch()
	for addr, acct := range txn.accounts {
		data, err := json.Marshal(acct)
		if err != nil {
			return fmt.Errorf("account marshal: %w", err)
		}
		if err := batch.Put(accountKey(addr), data); err != nil {
			return fmt.Errorf("account batch put: %w", err)
		}
	}
	for key, value := range txn.records {
		if value == nil {
			if err := batch.Delete([]byte(key)); err != nil {
				return fmt.Errorf("record batch delete: %w", err)
			}
			continue
		}
		if err := batch.Put([]byte(key), value); err != nil {
			return fmt.Errorf("record batch put: %w", err)
		}
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("ledger commit: %w", err)
	}

	log.Ledger.Debug().
		Int("accounts", len(txn.accounts)).
		Int("records", len(txn.records)).
		Msg("transaction committed")
	return nil
}

// GetAccount reads an account outside any transaction.
func (l *Ledger) GetAccount(addr types.Address) (*Account, error) {
	return l.readAccount(addr)
}

// Balance returns an account's balance, zero if the account is absent.
func (l *Ledger) Balance(addr types.Address) uint64 {
	acct, err := l.readAccount(addr)
	if err != nil {
		return 0
	}
	return acct.Balance
}

// GetRecord reads a raw sub-ledger record outside any transaction.
func (l *Ledger) GetRecord(key []byte) ([]byte, error) {
	return l.db.Get(key)
}

func (l *Ledger) readAccount(addr types.Address) (*Account, error) {
	data, err := l.db.Get(accountKey(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("account unmarshal: %w", err)
	}
	return &acct, nil
}

// Txn is an in-flight state transition: an overlay over the committed
// state. Mutations stay in the overlay until Execute commits them.
type Txn struct {
	ledger   *Ledger
	accounts map[types.Address]*Account
	records  map[string][]byte // Sub-ledger record writes; nil value = delete.
}

// Account returns the account at addr, consulting the overlay first.
// The returned account is the overlay's copy: mutations to it are
// staged for commit.
func (t *Txn) Account(addr types.Address) (*Account, error) {
	if acct, ok := t.accounts[addr]; ok {
		return acct, nil
	}
	acct, err := t.ledger.readAccount(addr)
	if err != nil {
		return nil, err
	}
	t.accounts[addr] = acct
	return acct, nil
}

// HasAccount reports whether an account exists at addr.
func (t *Txn) HasAccount(addr types.Address) bool {
	if _, ok := t.accounts[addr]; ok {
		return true
	}
	_, err := t.ledger.readAccount(addr)
	return err == nil
}

// Credit adds amount to addr, creating a system account if absent.
func (t *Txn) Credit(addr types.Address, amount uint64) error {
	acct, err := t.Account(addr)
	if errors.Is(err, ErrAccountNotFound) {
		acct = &Account{Kind: types.KindSystem}
		t.accounts[addr] = acct
	} else if err != nil {
		return err
	}
	if acct.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: credit %d to %s", ErrBalanceOverflow, amount, addr)
	}
	acct.Balance += amount
	return nil
}

// Debit removes amount from addr.
func (t *Txn) Debit(addr types.Address, amount uint64) error {
	acct, err := t.Account(addr)
	if err != nil {
		return err
	}
	if acct.Balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, addr, acct.Balance, amount)
	}
	acct.Balance -= amount
	return nil
}

// Transfer moves amount from one account to another atomically within
// the transaction. The destination is created as a zero-balance system
// account on first credit; a data-bearing destination is invalid.
func (t *Txn) Transfer(from, to types.Address, amount uint64) error {
	if dest, err := t.Account(to); err == nil && dest.Kind.HoldsData() {
		return fmt.Errorf("%w: %s holds %s data", ErrInvalidDestination, to, dest.Kind)
	}
	if err := t.Debit(from, amount); err != nil {
		return err
	}
	return t.Credit(to, amount)
}

// CreateAccount creates a data-bearing account at addr, debiting the
// storage deposit from the payer and parking it as the new account's
// balance. Fails if an account already exists at addr.
func (t *Txn) CreateAccount(addr types.Address, kind types.AccountKind, payer types.Address, deposit uint64) error {
	if t.HasAccount(addr) {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	if err := t.Debit(payer, deposit); err != nil {
		return err
	}
	t.accounts[addr] = &Account{Balance: deposit, Kind: kind}
	return nil
}

// CheckAndBumpNonce verifies that nonce matches the account's current
// nonce and increments it. A missing account has nonce zero.
func (t *Txn) CheckAndBumpNonce(addr types.Address, nonce uint64) error {
	acct, err := t.Account(addr)
	if err != nil {
		return err
	}
	if acct.Nonce != nonce {
		return fmt.Errorf("%w: %s has nonce %d, request has %d", ErrBadNonce, addr, acct.Nonce, nonce)
	}
	acct.Nonce++
	return nil
}

// GetRecord reads a raw sub-ledger record, consulting the overlay first.
func (t *Txn) GetRecord(key []byte) ([]byte, error) {
	if value, ok := t.records[string(key)]; ok {
		if value == nil {
			return nil, fmt.Errorf("key not found")
		}
		return value, nil
	}
	return t.ledger.db.Get(key)
}

// PutRecord stages a raw sub-ledger record write.
func (t *Txn) PutRecord(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	t.records[string(key)] = v
}
