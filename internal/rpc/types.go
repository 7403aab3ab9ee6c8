package rpc

import (
	"github.com/spacefund-io/spacefund/pkg/request"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeRejected       = -32001 // Valid request refused by the donation program.
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Donation param types ────────────────────────────────────────────────

// DonationSubmitParam is used by donation_submit.
type DonationSubmitParam struct {
	Request *request.Request `json:"request"`
}

// AddressParam is used by endpoints that take a single address.
type AddressParam struct {
	Address string `json:"address"`
}

// RecordsParam is used by donation_listRecords.
type RecordsParam struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ── Donation result types ───────────────────────────────────────────────

// DonationSubmitResult is returned by donation_submit.
type DonationSubmitResult struct {
	Donor        string `json:"donor"`
	Amount       uint64 `json:"amount"`
	Tokens       uint64 `json:"tokens"`
	Timestamp    int64  `json:"timestamp"`
	VaultBalance uint64 `json:"vault_balance"`
}

// DonationInfoResult is returned by donation_getInfo.
type DonationInfoResult struct {
	Deployment     string `json:"deployment"`
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	ConversionRate uint64 `json:"conversion_rate"`
	MinDonation    uint64 `json:"min_donation"`
	RewardDecimals uint8  `json:"reward_decimals"`
	Vault          string `json:"vault"`
	VaultBalance   uint64 `json:"vault_balance"`
	Mint           string `json:"mint"`
	TokenSupply    uint64 `json:"token_supply"`
	Records        int    `json:"records"`
}

// VaultResult is returned by donation_getVault.
type VaultResult struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
	Balance uint64 `json:"balance"`
}

// MintResult is returned by donation_getMint.
type MintResult struct {
	Address     string `json:"address"`
	Bump        uint8  `json:"bump"`
	Initialized bool   `json:"initialized"`
	Decimals    uint8  `json:"decimals,omitempty"`
	Authority   string `json:"authority,omitempty"`
	Supply      uint64 `json:"supply"`
}

// ContributorResult is returned by donation_getContributor.
type ContributorResult struct {
	Address        string `json:"address"`
	Balance        uint64 `json:"balance"`
	Nonce          uint64 `json:"nonce"`
	BalanceAccount string `json:"balance_account"`
	Tokens         uint64 `json:"tokens"`
	Provisioned    bool   `json:"provisioned"`
}

// RecordEntry describes one committed donation in donation_listRecords.
type RecordEntry struct {
	Donor     string `json:"donor"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Tokens    uint64 `json:"tokens"`
}

// RecordsResult is returned by donation_listRecords.
type RecordsResult struct {
	Total   int           `json:"total"`
	Entries []RecordEntry `json:"entries"`
}

// DerivedAddressesResult is returned by donation_deriveAddresses.
type DerivedAddressesResult struct {
	Vault          string `json:"vault"`
	VaultBump      uint8  `json:"vault_bump"`
	Mint           string `json:"mint"`
	MintBump       uint8  `json:"mint_bump"`
	Authority      string `json:"authority"`
	BalanceAccount string `json:"balance_account,omitempty"`
	BalanceBump    uint8  `json:"balance_bump,omitempty"`
}

// ── Ledger/token result types ───────────────────────────────────────────

// AccountResult is returned by ledger_getAccount.
type AccountResult struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
	Kind    string `json:"kind"`
}

// TokenBalanceResult is returned by token_getBalance.
type TokenBalanceResult struct {
	Owner          string `json:"owner"`
	Mint           string `json:"mint"`
	BalanceAccount string `json:"balance_account"`
	Amount         uint64 `json:"amount"`
}

// ── Network result types ────────────────────────────────────────────────

// PeerInfo describes a connected feed peer.
type PeerInfo struct {
	ID          string `json:"id"`
	ConnectedAt string `json:"connected_at"`
	Source      string `json:"source"`
}

// PeerInfoResult is returned by net_getPeerInfo.
type PeerInfoResult struct {
	Count int        `json:"count"`
	Peers []PeerInfo `json:"peers"`
}

// NodeInfoResult is returned by net_getNodeInfo.
type NodeInfoResult struct {
	ID    string   `json:"id"`
	Addrs []string `json:"addrs"`
}

// ── Wallet param types ──────────────────────────────────────────────────

// WalletCreateParam is used by wallet_create.
type WalletCreateParam struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// WalletImportParam is used by wallet_import.
type WalletImportParam struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Mnemonic string `json:"mnemonic"`
}

// WalletNewAddressParam is used by wallet_newAddress.
type WalletNewAddressParam struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Label    string `json:"label,omitempty"`
}

// WalletBalanceParam is used by wallet_getBalance.
type WalletBalanceParam struct {
	Name string `json:"name"`
}

// WalletExportKeyParam is used by wallet_exportKey.
type WalletExportKeyParam struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Index    uint32 `json:"index"`
}

// WalletDonateParam is used by wallet_donate.
type WalletDonateParam struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Index    uint32 `json:"index"` // Account index of the signing key.
	Amount   uint64 `json:"amount"`
}

// ── Wallet result types ─────────────────────────────────────────────────

// WalletCreateResult is returned by wallet_create.
type WalletCreateResult struct {
	Mnemonic string `json:"mnemonic"`
	Address  string `json:"address"`
}

// WalletImportResult is returned by wallet_import.
type WalletImportResult struct {
	Address string `json:"address"`
}

// WalletListResult is returned by wallet_list.
type WalletListResult struct {
	Wallets []string `json:"wallets"`
}

// WalletAddressResult is returned by wallet_newAddress.
type WalletAddressResult struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
}

// WalletAccountEntry describes a wallet account in RPC results.
type WalletAccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// WalletAddressListResult is returned by wallet_listAddresses.
type WalletAddressListResult struct {
	Accounts []WalletAccountEntry `json:"accounts"`
}

// WalletBalanceEntry is one account's balances in wallet_getBalance.
type WalletBalanceEntry struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Tokens  uint64 `json:"tokens"`
}

// WalletBalanceResult is returned by wallet_getBalance.
type WalletBalanceResult struct {
	Accounts    []WalletBalanceEntry `json:"accounts"`
	Total       uint64               `json:"total"`
	TotalTokens uint64               `json:"total_tokens"`
}

// WalletExportKeyResult is returned by wallet_exportKey.
type WalletExportKeyResult struct {
	PrivateKey string `json:"private_key"`
	Address    string `json:"address"`
}

// WalletDonateResult is returned by wallet_donate.
type WalletDonateResult struct {
	Donor     string `json:"donor"`
	Amount    uint64 `json:"amount"`
	Tokens    uint64 `json:"tokens"`
	Nonce     uint64 `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}
