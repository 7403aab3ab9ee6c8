package rpc

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/spacefund-io/spacefund/internal/wallet"
	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/request"
)

// walletNamePattern restricts wallet names to filesystem-safe tokens.
var walletNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,32}$`)

// requireKeystore returns an error if wallet RPC is disabled.
func (s *Server) requireKeystore() *Error {
	if s.keystore == nil {
		return &Error{Code: CodeNotFound, Message: "wallet RPC not enabled"}
	}
	return nil
}

// validateWalletName checks the wallet name against the allowed pattern.
func validateWalletName(name string) *Error {
	if !walletNamePattern.MatchString(name) {
		return &Error{Code: CodeInvalidParams, Message: "invalid wallet name: use 1-32 letters, digits, - or _"}
	}
	return nil
}

// zero wipes sensitive byte material.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (s *Server) handleWalletCreate(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletCreateParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if rpcErr := validateWalletName(params.Name); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password is required"}
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("generate mnemonic: %v", err)}
	}

	addr, rpcErr := s.createWallet(params.Name, params.Password, mnemonic)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &WalletCreateResult{
		Mnemonic: mnemonic,
		Address:  addr,
	}, nil
}

func (s *Server) handleWalletImport(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletImportParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if rpcErr := validateWalletName(params.Name); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password is required"}
	}
	if !wallet.ValidateMnemonic(params.Mnemonic) {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid mnemonic"}
	}

	addr, rpcErr := s.createWallet(params.Name, params.Password, params.Mnemonic)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &WalletImportResult{Address: addr}, nil
}

// createWallet stores an encrypted wallet and records its first account.
// Returns the account 0 address.
func (s *Server) createWallet(name, password, mnemonic string) (string, *Error) {
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return "", &Error{Code: CodeInternalError, Message: fmt.Sprintf("derive seed: %v", err)}
	}
	defer zero(seed)

	if err := s.keystore.Create(name, seed, []byte(password), wallet.DefaultParams()); err != nil {
		return "", &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("create wallet: %v", err)}
	}

	key, err := wallet.DeriveAccountKey(seed, 0)
	if err != nil {
		return "", &Error{Code: CodeInternalError, Message: fmt.Sprintf("derive key: %v", err)}
	}
	defer key.Zero()
	addr := key.Address()

	if err := s.keystore.AddAccount(name, wallet.AccountEntry{
		Index:   0,
		Name:    "default",
		Address: addr.String(),
	}); err != nil {
		return "", &Error{Code: CodeInternalError, Message: fmt.Sprintf("record account: %v", err)}
	}
	if err := s.keystore.IncrementAccountIndex(name); err != nil {
		return "", &Error{Code: CodeInternalError, Message: fmt.Sprintf("advance account index: %v", err)}
	}

	return addr.String(), nil
}

func (s *Server) handleWalletList(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	wallets, err := s.keystore.List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list wallets: %v", err)}
	}
	if wallets == nil {
		wallets = []string{}
	}
	return &WalletListResult{Wallets: wallets}, nil
}

func (s *Server) handleWalletNewAddress(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletNewAddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	seed, err := s.keystore.Load(params.Name, []byte(params.Password))
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unlock wallet: %v", err)}
	}
	defer zero(seed)

	idx, err := s.keystore.NextAccountIndex(params.Name)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	key, err := wallet.DeriveAccountKey(seed, idx)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("derive key: %v", err)}
	}
	defer key.Zero()
	addr := key.Address()

	label := params.Label
	if label == "" {
		label = fmt.Sprintf("account-%d", idx)
	}
	if err := s.keystore.AddAccount(params.Name, wallet.AccountEntry{
		Index:   idx,
		Name:    label,
		Address: addr.String(),
	}); err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("record account: %v", err)}
	}
	if err := s.keystore.IncrementAccountIndex(params.Name); err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	return &WalletAddressResult{Index: idx, Address: addr.String()}, nil
}

func (s *Server) handleWalletListAddresses(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params struct {
		Name string `json:"name"`
	}
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	accounts, err := s.keystore.ListAccounts(params.Name)
	if err != nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("list accounts: %v", err)}
	}

	entries := make([]WalletAccountEntry, 0, len(accounts))
	for _, acct := range accounts {
		entries = append(entries, WalletAccountEntry{
			Index:   acct.Index,
			Name:    acct.Name,
			Address: acct.Address,
		})
	}
	return &WalletAddressListResult{Accounts: entries}, nil
}

// handleWalletGetBalance reads native and reward balances for every account
// in a wallet. Addresses come from keystore metadata, so no password is
// needed.
func (s *Server) handleWalletGetBalance(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletBalanceParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	accounts, err := s.keystore.ListAccounts(params.Name)
	if err != nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("list accounts: %v", err)}
	}

	result := &WalletBalanceResult{Accounts: make([]WalletBalanceEntry, 0, len(accounts))}
	for _, acct := range accounts {
		addr, rpcErr := parseAddress(acct.Address)
		if rpcErr != nil {
			return nil, rpcErr
		}
		entry := WalletBalanceEntry{
			Index:   acct.Index,
			Address: acct.Address,
			Balance: s.ledger.Balance(addr),
		}
		if bal := s.program.ContributorBalance(addr); bal != nil {
			entry.Tokens = bal.Amount
		}
		result.Total += entry.Balance
		result.TotalTokens += entry.Tokens
		result.Accounts = append(result.Accounts, entry)
	}
	return result, nil
}

func (s *Server) handleWalletExportKey(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletExportKeyParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	key, rpcErr := s.unlockAccountKey(params.Name, params.Password, params.Index)
	if rpcErr != nil {
		return nil, rpcErr
	}
	defer key.Zero()

	keySeed := key.Seed()
	result := &WalletExportKeyResult{
		PrivateKey: hex.EncodeToString(keySeed),
		Address:    key.Address().String(),
	}
	zero(keySeed)
	return result, nil
}

func (s *Server) handleWalletDonate(req *Request) (interface{}, *Error) {
	if rpcErr := s.requireKeystore(); rpcErr != nil {
		return nil, rpcErr
	}

	var params WalletDonateParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	key, rpcErr := s.unlockAccountKey(params.Name, params.Password, params.Index)
	if rpcErr != nil {
		return nil, rpcErr
	}
	defer key.Zero()
	donor := key.Address()

	// A contributor the ledger has never seen starts at nonce zero.
	var nonce uint64
	if acct, err := s.ledger.GetAccount(donor); err == nil {
		nonce = acct.Nonce
	}

	donationReq := &request.Request{
		Version:     request.Version,
		Contributor: donor,
		Amount:      params.Amount,
		Nonce:       nonce,
		Timestamp:   time.Now().Unix(),
	}
	donationReq.Sign(key)

	rec, rpcErr := s.submitSigned(donationReq)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &WalletDonateResult{
		Donor:     rec.Donor.String(),
		Amount:    rec.Amount,
		Tokens:    rec.Reward,
		Nonce:     nonce,
		Timestamp: rec.Timestamp,
	}, nil
}

// unlockAccountKey decrypts the wallet seed and derives one account key.
// The caller must Zero the returned key.
func (s *Server) unlockAccountKey(name, password string, index uint32) (*crypto.PrivateKey, *Error) {
	seed, err := s.keystore.Load(name, []byte(password))
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unlock wallet: %v", err)}
	}
	defer zero(seed)

	key, err := wallet.DeriveAccountKey(seed, index)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("derive key: %v", err)}
	}
	return key, nil
}
