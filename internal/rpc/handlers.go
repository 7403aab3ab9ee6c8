package rpc

import (
	"errors"
	"fmt"

	"github.com/spacefund-io/spacefund/internal/donation"
	"github.com/spacefund-io/spacefund/internal/ledger"
	"github.com/spacefund-io/spacefund/pkg/request"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// donationError maps a donation program failure onto a JSON-RPC error.
// Taxonomy errors are CodeRejected (the request was well-formed but the
// program refused it); anything else is a malformed request.
func donationError(err error) *Error {
	switch {
	case errors.Is(err, donation.ErrInsufficientFunds),
		errors.Is(err, donation.ErrUnauthorizedSigner),
		errors.Is(err, donation.ErrProvisioningConflict),
		errors.Is(err, donation.ErrArithmeticOverflow),
		errors.Is(err, donation.ErrBelowMinimum):
		return &Error{Code: CodeRejected, Message: err.Error()}
	case errors.Is(err, donation.ErrExternalLedger):
		return &Error{Code: CodeInternalError, Message: err.Error()}
	default:
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
}

// parseAddress decodes a base58 (or 0x-hex) address param.
func parseAddress(s string) (types.Address, *Error) {
	if s == "" {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "address is required"}
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}
	return addr, nil
}

// ── Donation endpoints ──────────────────────────────────────────────────

func (s *Server) handleDonationSubmit(req *Request) (interface{}, *Error) {
	var params DonationSubmitParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Request == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "request is required"}
	}

	rec, rpcErr := s.submitSigned(params.Request)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &DonationSubmitResult{
		Donor:        rec.Donor.String(),
		Amount:       rec.Amount,
		Tokens:       rec.Reward,
		Timestamp:    rec.Timestamp,
		VaultBalance: s.program.VaultBalance(),
	}, nil
}

func (s *Server) handleDonationGetInfo(req *Request) (interface{}, *Error) {
	vault, _ := s.program.Vault()
	mintAddr, _ := s.program.MintAddress()

	var supply uint64
	if m := s.program.Mint(); m != nil {
		supply = m.Supply
	}

	records := 0
	if s.journal != nil {
		records = s.journal.Count()
	}

	return &DonationInfoResult{
		Deployment:     s.deployment.ID,
		Namespace:      s.program.Namespace().String(),
		Name:           s.deployment.Name,
		Symbol:         s.deployment.Symbol,
		ConversionRate: s.program.ConversionRate(),
		MinDonation:    s.program.MinDonation(),
		RewardDecimals: s.deployment.Protocol.RewardDecimals,
		Vault:          vault.String(),
		VaultBalance:   s.program.VaultBalance(),
		Mint:           mintAddr.String(),
		TokenSupply:    supply,
		Records:        records,
	}, nil
}

func (s *Server) handleDonationGetVault(req *Request) (interface{}, *Error) {
	vault, bump := s.program.Vault()
	return &VaultResult{
		Address: vault.String(),
		Bump:    bump,
		Balance: s.program.VaultBalance(),
	}, nil
}

func (s *Server) handleDonationGetMint(req *Request) (interface{}, *Error) {
	addr, bump := s.program.MintAddress()

	result := &MintResult{
		Address: addr.String(),
		Bump:    bump,
	}
	if m := s.program.Mint(); m != nil {
		result.Initialized = m.Initialized()
		result.Decimals = m.Decimals
		result.Authority = m.Authority.String()
		result.Supply = m.Supply
	}
	return result, nil
}

func (s *Server) handleDonationGetContributor(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	balAddr, _, err := s.program.BalanceAddress(addr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	result := &ContributorResult{
		Address:        addr.String(),
		BalanceAccount: balAddr.String(),
	}

	if acct, err := s.ledger.GetAccount(addr); err == nil {
		result.Balance = acct.Balance
		result.Nonce = acct.Nonce
	}
	if bal := s.program.ContributorBalance(addr); bal != nil {
		result.Tokens = bal.Amount
		result.Provisioned = true
	}
	return result, nil
}

func (s *Server) handleDonationListRecords(req *Request) (interface{}, *Error) {
	if s.journal == nil {
		return nil, &Error{Code: CodeNotFound, Message: "donation journal not enabled"}
	}

	params := RecordsParam{Limit: 50}
	if req.Params != nil {
		if err := parseParams(req, &params); err != nil {
			return nil, err
		}
	}
	if params.Limit <= 0 || params.Limit > 1000 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	records, total, err := s.journal.Query(params.Limit, params.Offset)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	entries := make([]RecordEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, RecordEntry{
			Donor:     rec.Donor.String(),
			Amount:    rec.Amount,
			Timestamp: rec.Timestamp,
			Tokens:    rec.Reward,
		})
	}
	return &RecordsResult{Total: total, Entries: entries}, nil
}

func (s *Server) handleDonationDeriveAddresses(req *Request) (interface{}, *Error) {
	vault, vaultBump := s.program.Vault()
	mintAddr, mintBump := s.program.MintAddress()

	result := &DerivedAddressesResult{
		Vault:     vault.String(),
		VaultBump: vaultBump,
		Mint:      mintAddr.String(),
		MintBump:  mintBump,
		Authority: s.program.AuthorityAddress().String(),
	}

	// Optional owner: include their balance account address too.
	if req.Params != nil {
		var params AddressParam
		if err := parseParams(req, &params); err != nil {
			return nil, err
		}
		if params.Address != "" {
			owner, rpcErr := parseAddress(params.Address)
			if rpcErr != nil {
				return nil, rpcErr
			}
			balAddr, balBump, err := s.program.BalanceAddress(owner)
			if err != nil {
				return nil, &Error{Code: CodeInternalError, Message: err.Error()}
			}
			result.BalanceAccount = balAddr.String()
			result.BalanceBump = balBump
		}
	}
	return result, nil
}

// ── Ledger/token endpoints ──────────────────────────────────────────────

func (s *Server) handleLedgerGetAccount(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	acct, err := s.ledger.GetAccount(addr)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("account %s not found", addr)}
		}
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	return &AccountResult{
		Address: addr.String(),
		Balance: acct.Balance,
		Nonce:   acct.Nonce,
		Kind:    string(acct.Kind),
	}, nil
}

func (s *Server) handleTokenGetBalance(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	owner, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	balAddr, _, err := s.program.BalanceAddress(owner)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	mintAddr, _ := s.program.MintAddress()

	result := &TokenBalanceResult{
		Owner:          owner.String(),
		Mint:           mintAddr.String(),
		BalanceAccount: balAddr.String(),
	}
	if bal := s.program.ContributorBalance(owner); bal != nil {
		result.Amount = bal.Amount
	}
	return result, nil
}

// ── Network endpoints ───────────────────────────────────────────────────

func (s *Server) handleNetGetPeerInfo(req *Request) (interface{}, *Error) {
	if s.feed == nil {
		return &PeerInfoResult{Peers: []PeerInfo{}}, nil
	}

	peers := s.feed.PeerList()
	infos := make([]PeerInfo, 0, len(peers))
	for _, p := range peers {
		infos = append(infos, PeerInfo{
			ID:          p.ID.String(),
			ConnectedAt: p.ConnectedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Source:      p.Source,
		})
	}
	return &PeerInfoResult{Count: len(infos), Peers: infos}, nil
}

func (s *Server) handleNetGetNodeInfo(req *Request) (interface{}, *Error) {
	if s.feed == nil {
		return nil, &Error{Code: CodeNotFound, Message: "record feed not enabled"}
	}
	return &NodeInfoResult{
		ID:    s.feed.ID().String(),
		Addrs: s.feed.Addrs(),
	}, nil
}

// submitSigned runs a pre-built, signed request through the program.
// Shared by donation_submit and wallet_donate.
func (s *Server) submitSigned(req *request.Request) (*donation.Record, *Error) {
	rec, err := s.program.RecordDonation(req)
	if err != nil {
		return nil, donationError(err)
	}
	return rec, nil
}
