package token

import (
	"encoding/json"
	"fmt"

	"github.com/spacefund-io/spacefund/pkg/types"
)

// Key prefixes for token records.
var (
	prefixMint    = []byte("m/") // m/<mint address(32)> -> Mint JSON
	prefixBalance = []byte("b/") // b/<balance address(32)> -> Balance JSON
)

// Reader reads sub-ledger records, committed or staged.
// Both *ledger.Ledger and *ledger.Txn satisfy it.
type Reader interface {
	GetRecord(key []byte) ([]byte, error)
}

// Writer additionally stages record writes for atomic commit.
type Writer interface {
	Reader
	PutRecord(key, value []byte)
}

func mintKey(addr types.Address) []byte {
	key := make([]byte, len(prefixMint)+types.AddressSize)
	copy(key, prefixMint)
	copy(key[len(prefixMint):], addr[:])
	return key
}

func balanceKey(addr types.Address) []byte {
	key := make([]byte, len(prefixBalance)+types.AddressSize)
	copy(key, prefixBalance)
	copy(key[len(prefixBalance):], addr[:])
	return key
}

// GetMint reads the mint record at addr. A read error means no record
// exists there.
func GetMint(r Reader, addr types.Address) (*Mint, error) {
	data, err := r.GetRecord(mintKey(addr))
	if err != nil {
		return nil, fmt.Errorf("mint get: %w", err)
	}
	var m Mint
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mint unmarshal: %w", err)
	}
	return &m, nil
}

// PutMint stages the mint record at addr.
func PutMint(w Writer, addr types.Address, m *Mint) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("mint marshal: %w", err)
	}
	w.PutRecord(mintKey(addr), data)
	return nil
}

// GetBalance reads the balance record at addr. A read error means no
// record exists there.
func GetBalance(r Reader, addr types.Address) (*Balance, error) {
	data, err := r.GetRecord(balanceKey(addr))
	if err != nil {
		return nil, fmt.Errorf("balance get: %w", err)
	}
	var b Balance
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("balance unmarshal: %w", err)
	}
	return &b, nil
}

// PutBalance stages the balance record at addr.
func PutBalance(w Writer, addr types.Address, b *Balance) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("balance marshal: %w", err)
	}
	w.PutRecord(balanceKey(addr), data)
	return nil
}
