// spacefund-cli is a command-line client for interacting with a spacefundd node.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/rpc"
	"github.com/spacefund-io/spacefund/internal/rpcclient"
	"github.com/spacefund-io/spacefund/internal/wallet"
	"github.com/spacefund-io/spacefund/pkg/request"
	"github.com/spacefund-io/spacefund/pkg/types"
	"golang.org/x/term"
)

// keystoreDir returns the keystore path matching spacefundd's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := "http://127.0.0.1:8860"
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	// Scan for --rpc, --datadir, and --network before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--devnet":
			network = "devnet"
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ksDir := keystoreDir(dataDir, network)
	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "donate":
		cmdDonate(cmdArgs, ksDir, rpcURL)
	case "vault":
		cmdVault(client)
	case "mint":
		cmdMint(client)
	case "contributor":
		cmdContributor(client, cmdArgs)
	case "account":
		cmdAccount(client, cmdArgs)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "records":
		cmdRecords(client, cmdArgs)
	case "derive":
		cmdDerive(client, cmdArgs)
	case "peers":
		cmdPeers(client)
	case "wallet":
		cmdWallet(cmdArgs, ksDir, client)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: spacefund-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8860)
  --datadir <path>    Data directory (default: ~/.spacefund)
  --network <net>     mainnet (default) or devnet
  --devnet            Shorthand for --network devnet

Commands:
  status                          Show deployment and donation totals
  donate --wallet <w> --amount <amt> [--index n]
                                  Sign and submit a donation
  vault                           Show the donation vault
  mint                            Show the reward token mint
  contributor <address>           Show a contributor's donation state
  account <address>               Show a ledger account
  balance <address>               Show an address's reward token balance
  records [--limit n --offset n]  List committed donations (newest first)
  derive [address]                Show derived program addresses
  peers                           Show connected feed peers

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address --wallet <w>     List wallet addresses
  wallet new-address --wallet <w> Generate a new address
  wallet balance --wallet <w>     Show wallet balances
  wallet export-key --wallet <w>  Export a private key
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	var info rpc.DonationInfoResult
	if err := client.Call("donation_getInfo", nil, &info); err != nil {
		fatal("donation_getInfo: %v", err)
	}

	fmt.Printf("Deployment: %s\n", info.Deployment)
	fmt.Printf("Token:      %s (%s)\n", info.Name, info.Symbol)
	fmt.Printf("Rate:       %s SFD per %s unit\n", formatAmount(info.ConversionRate), info.Symbol)
	if info.MinDonation > 0 {
		fmt.Printf("Minimum:    %s SFD\n", formatAmount(info.MinDonation))
	}
	fmt.Printf("Vault:      %s\n", info.Vault)
	fmt.Printf("Raised:     %s SFD\n", formatAmount(info.VaultBalance))
	fmt.Printf("Supply:     %s %s\n", formatTokens(info.TokenSupply, info.RewardDecimals), info.Symbol)
	fmt.Printf("Donations:  %d\n", info.Records)

	var peers rpc.PeerInfoResult
	if err := client.Call("net_getPeerInfo", nil, &peers); err != nil {
		fatal("net_getPeerInfo: %v", err)
	}
	fmt.Printf("Peers:      %d\n", peers.Count)
}

// ── donate ──────────────────────────────────────────────────────────────

// cmdDonate signs the donation locally with a keystore key and submits it
// via donation_submit, so the node never sees the wallet password.
func cmdDonate(args []string, ksDir, rpcURL string) {
	fs := flag.NewFlagSet("donate", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	amountStr := fs.String("amount", "", "Amount to donate in SFD (e.g. 1.5)")
	index := fs.Uint("index", 0, "Wallet account index to sign with")
	fs.Parse(args)

	if *walletName == "" || *amountStr == "" {
		fatal("Usage: spacefund-cli donate --wallet <name> --amount <amt> [--index n]")
	}

	amount, err := parseAmount(*amountStr)
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	seed, err := ks.Load(*walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}
	key, err := wallet.DeriveAccountKey(seed, uint32(*index))
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("derive key: %v", err)
	}
	defer key.Zero()
	contributor := key.Address()

	// The nonce must match the contributor's ledger account exactly.
	// An unknown account starts at nonce 0.
	client := rpcclient.New(rpcURL)
	var acct rpc.AccountResult
	nonce := uint64(0)
	if err := client.Call("ledger_getAccount", rpc.AddressParam{Address: contributor.String()}, &acct); err != nil {
		var rpcErr *rpcclient.RPCError
		if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeNotFound {
			fatal("ledger_getAccount: %v", err)
		}
	} else {
		nonce = acct.Nonce
	}

	donation := &request.Request{
		Version:     request.Version,
		Contributor: contributor,
		Amount:      amount,
		Nonce:       nonce,
		Timestamp:   time.Now().Unix(),
	}
	donation.Sign(key)

	var result rpc.DonationSubmitResult
	if err := client.Call("donation_submit", rpc.DonationSubmitParam{Request: donation}, &result); err != nil {
		fatal("donation_submit: %v", err)
	}

	fmt.Printf("Donated:  %s SFD from %s\n", formatAmount(result.Amount), result.Donor)
	fmt.Printf("Rewarded: %s SPX\n", formatTokens(result.Tokens, rewardDecimals(client)))
}

// ── vault ───────────────────────────────────────────────────────────────

func cmdVault(client *rpcclient.Client) {
	var result rpc.VaultResult
	if err := client.Call("donation_getVault", nil, &result); err != nil {
		fatal("donation_getVault: %v", err)
	}

	fmt.Printf("Address: %s\n", result.Address)
	fmt.Printf("Bump:    %d\n", result.Bump)
	fmt.Printf("Balance: %s SFD\n", formatAmount(result.Balance))
}

// ── mint ────────────────────────────────────────────────────────────────

func cmdMint(client *rpcclient.Client) {
	var result rpc.MintResult
	if err := client.Call("donation_getMint", nil, &result); err != nil {
		fatal("donation_getMint: %v", err)
	}

	fmt.Printf("Address:     %s\n", result.Address)
	fmt.Printf("Bump:        %d\n", result.Bump)
	if !result.Initialized {
		fmt.Println("Initialized: no (created on first donation)")
		return
	}
	fmt.Println("Initialized: yes")
	fmt.Printf("Decimals:    %d\n", result.Decimals)
	fmt.Printf("Authority:   %s\n", result.Authority)
	fmt.Printf("Supply:      %s SPX\n", formatTokens(result.Supply, result.Decimals))
}

// ── contributor ─────────────────────────────────────────────────────────

func cmdContributor(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: spacefund-cli contributor <address>")
	}

	var result rpc.ContributorResult
	if err := client.Call("donation_getContributor", rpc.AddressParam{Address: args[0]}, &result); err != nil {
		fatal("donation_getContributor: %v", err)
	}

	fmt.Printf("Address:         %s\n", result.Address)
	fmt.Printf("Balance:         %s SFD\n", formatAmount(result.Balance))
	fmt.Printf("Nonce:           %d\n", result.Nonce)
	fmt.Printf("Balance account: %s\n", result.BalanceAccount)
	if result.Provisioned {
		fmt.Printf("Tokens:          %s SPX\n", formatTokens(result.Tokens, rewardDecimals(client)))
	} else {
		fmt.Println("Tokens:          none (no donations yet)")
	}
}

// ── account ─────────────────────────────────────────────────────────────

func cmdAccount(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: spacefund-cli account <address>")
	}

	var result rpc.AccountResult
	if err := client.Call("ledger_getAccount", rpc.AddressParam{Address: args[0]}, &result); err != nil {
		fatal("ledger_getAccount: %v", err)
	}

	fmt.Printf("Address: %s\n", result.Address)
	fmt.Printf("Balance: %s SFD\n", formatAmount(result.Balance))
	fmt.Printf("Nonce:   %d\n", result.Nonce)
	fmt.Printf("Kind:    %s\n", result.Kind)
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: spacefund-cli balance <address>")
	}

	var result rpc.TokenBalanceResult
	if err := client.Call("token_getBalance", rpc.AddressParam{Address: args[0]}, &result); err != nil {
		fatal("token_getBalance: %v", err)
	}

	fmt.Printf("Owner:           %s\n", result.Owner)
	fmt.Printf("Mint:            %s\n", result.Mint)
	fmt.Printf("Balance account: %s\n", result.BalanceAccount)
	fmt.Printf("Amount:          %s SPX\n", formatTokens(result.Amount, rewardDecimals(client)))
}

// ── records ─────────────────────────────────────────────────────────────

func cmdRecords(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum records to show")
	offset := fs.Int("offset", 0, "Records to skip")
	fs.Parse(args)

	var result rpc.RecordsResult
	if err := client.Call("donation_listRecords", rpc.RecordsParam{Limit: *limit, Offset: *offset}, &result); err != nil {
		fatal("donation_listRecords: %v", err)
	}

	decimals := rewardDecimals(client)
	fmt.Printf("Total: %d\n", result.Total)
	for _, e := range result.Entries {
		ts := time.Unix(e.Timestamp, 0).UTC()
		fmt.Printf("  %s  %s SFD -> %s SPX  %s\n",
			ts.Format("2006-01-02 15:04:05"),
			formatAmount(e.Amount),
			formatTokens(e.Tokens, decimals),
			e.Donor)
	}
}

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(client *rpcclient.Client, args []string) {
	var params interface{}
	if len(args) > 0 {
		params = rpc.AddressParam{Address: args[0]}
	}

	var result rpc.DerivedAddressesResult
	if err := client.Call("donation_deriveAddresses", params, &result); err != nil {
		fatal("donation_deriveAddresses: %v", err)
	}

	fmt.Printf("Vault:      %s (bump %d)\n", result.Vault, result.VaultBump)
	fmt.Printf("Mint:       %s (bump %d)\n", result.Mint, result.MintBump)
	fmt.Printf("Authority:  %s\n", result.Authority)
	if result.BalanceAccount != "" {
		fmt.Printf("Balance:    %s (bump %d)\n", result.BalanceAccount, result.BalanceBump)
	}
}

// ── peers ───────────────────────────────────────────────────────────────

func cmdPeers(client *rpcclient.Client) {
	var node rpc.NodeInfoResult
	if err := client.Call("net_getNodeInfo", nil, &node); err != nil {
		fatal("net_getNodeInfo: %v", err)
	}

	fmt.Printf("Node ID: %s\n", node.ID)
	for _, a := range node.Addrs {
		fmt.Printf("  Listen: %s\n", a)
	}

	var peers rpc.PeerInfoResult
	if err := client.Call("net_getPeerInfo", nil, &peers); err != nil {
		fatal("net_getPeerInfo: %v", err)
	}

	fmt.Printf("Peers:   %d\n", peers.Count)
	for _, p := range peers.Peers {
		fmt.Printf("  %s (connected: %s)\n", p.ID, p.ConnectedAt)
	}
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(args []string, ksDir string, client *rpcclient.Client) {
	if len(args) < 1 {
		fatal("Usage: spacefund-cli wallet <create|import|list|address|new-address|balance|export-key> [flags]")
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "create":
		cmdWalletCreate(subArgs, ksDir)
	case "import":
		cmdWalletImport(subArgs, ksDir)
	case "list":
		cmdWalletList(ksDir)
	case "address":
		cmdWalletAddress(subArgs, ksDir)
	case "new-address":
		cmdWalletNewAddress(subArgs, ksDir)
	case "balance":
		cmdWalletBalance(subArgs, ksDir, client)
	case "export-key":
		cmdWalletExportKey(subArgs, ksDir)
	default:
		fatal("Unknown wallet command: %s", sub)
	}
}

func cmdWalletCreate(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: spacefund-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	addr := createWallet(*name, mnemonic, ksDir)

	fmt.Printf("\nWallet created: %s\n", *name)
	fmt.Printf("Address: %s\n", addr.String())
}

func cmdWalletImport(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (24 words)")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: spacefund-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}

	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	addr := createWallet(*name, *mnemonic, ksDir)

	fmt.Printf("Wallet imported: %s\n", *name)
	fmt.Printf("Address: %s\n", addr.String())
}

// createWallet prompts for a password, encrypts the seed into the keystore,
// and registers account 0. Returns account 0's address.
func createWallet(name, mnemonic, ksDir string) types.Address {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	key, err := wallet.DeriveAccountKey(seed, 0)
	if err != nil {
		fatal("derive account key: %v", err)
	}
	addr := key.Address()
	key.Zero()

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("create keystore: %v", err)
	}

	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}

	for i := range seed {
		seed[i] = 0
	}

	if err := ks.AddAccount(name, wallet.AccountEntry{
		Index:   0,
		Name:    "default",
		Address: addr.String(),
	}); err != nil {
		fatal("add account: %v", err)
	}
	if err := ks.IncrementAccountIndex(name); err != nil {
		fatal("bump account index: %v", err)
	}

	return addr
}

func cmdWalletList(ksDir string) {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdWalletAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: spacefund-cli wallet address --wallet <name>")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	accounts, err := ks.ListAccounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}

	for _, acct := range accounts {
		fmt.Printf("[%d] %-16s %s\n", acct.Index, acct.Name, acct.Address)
	}
}

func cmdWalletNewAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	label := fs.String("label", "", "Account label")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: spacefund-cli wallet new-address --wallet <name> [--label <label>]")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	seed, err := ks.Load(*walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}

	index, err := ks.NextAccountIndex(*walletName)
	if err != nil {
		fatal("next account index: %v", err)
	}

	key, err := wallet.DeriveAccountKey(seed, index)
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("derive account key: %v", err)
	}
	addr := key.Address()
	key.Zero()

	name := *label
	if name == "" {
		name = fmt.Sprintf("account-%d", index)
	}
	if err := ks.AddAccount(*walletName, wallet.AccountEntry{
		Index:   index,
		Name:    name,
		Address: addr.String(),
	}); err != nil {
		fatal("add account: %v", err)
	}
	if err := ks.IncrementAccountIndex(*walletName); err != nil {
		fatal("bump account index: %v", err)
	}

	fmt.Printf("[%d] %s\n", index, addr.String())
}

// cmdWalletBalance reads accounts from the local keystore and queries the
// node for each address's native and reward balances.
func cmdWalletBalance(args []string, ksDir string, client *rpcclient.Client) {
	fs := flag.NewFlagSet("wallet balance", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: spacefund-cli wallet balance --wallet <name>")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	accounts, err := ks.ListAccounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}

	decimals := rewardDecimals(client)
	var total, totalTokens uint64
	for _, acct := range accounts {
		var balance, tokens uint64

		var ledgerAcct rpc.AccountResult
		if err := client.Call("ledger_getAccount", rpc.AddressParam{Address: acct.Address}, &ledgerAcct); err != nil {
			var rpcErr *rpcclient.RPCError
			if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeNotFound {
				fatal("ledger_getAccount: %v", err)
			}
		} else {
			balance = ledgerAcct.Balance
		}

		var tokenBal rpc.TokenBalanceResult
		if err := client.Call("token_getBalance", rpc.AddressParam{Address: acct.Address}, &tokenBal); err != nil {
			var rpcErr *rpcclient.RPCError
			if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeNotFound {
				fatal("token_getBalance: %v", err)
			}
		} else {
			tokens = tokenBal.Amount
		}

		total += balance
		totalTokens += tokens
		fmt.Printf("[%d] %s  %s SFD  %s SPX\n",
			acct.Index, acct.Address, formatAmount(balance), formatTokens(tokens, decimals))
	}
	fmt.Printf("Total: %s SFD, %s SPX\n", formatAmount(total), formatTokens(totalTokens, decimals))
}

func cmdWalletExportKey(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet export-key", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	output := fs.String("output", "", "Output file path (default: <name>.key)")
	index := fs.Uint("index", 0, "Account index")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: spacefund-cli wallet export-key --wallet <name> [--output path] [--index 0]")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	seed, err := ks.Load(*walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}

	key, err := wallet.DeriveAccountKey(seed, uint32(*index))
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("derive account key: %v", err)
	}

	keySeed := key.Seed()
	privHex := hex.EncodeToString(keySeed)
	for i := range keySeed {
		keySeed[i] = 0
	}
	addr := key.Address()
	key.Zero()

	outPath := *output
	if outPath == "" {
		outPath = *walletName + ".key"
	}

	if err := os.WriteFile(outPath, []byte(privHex+"\n"), 0600); err != nil {
		fatal("write key file: %v", err)
	}

	fmt.Printf("Exported key to: %s\n", outPath)
	fmt.Printf("  Index:   %d\n", *index)
	fmt.Printf("  Address: %s\n", addr.String())
}

// ── Formatting helpers ─────────────────────────────────────────────────

// formatAmount converts native base units to a decimal SFD string.
func formatAmount(units uint64) string {
	whole := units / config.Coin
	frac := units % config.Coin
	return fmt.Sprintf("%d.%09d", whole, frac)
}

// rewardDecimals asks the node for the deployment's reward token decimals.
func rewardDecimals(client *rpcclient.Client) uint8 {
	var info rpc.DonationInfoResult
	if err := client.Call("donation_getInfo", nil, &info); err != nil {
		fatal("donation_getInfo: %v", err)
	}
	return info.RewardDecimals
}

// formatTokens converts reward base units to a decimal token string.
func formatTokens(units uint64, decimals uint8) string {
	div := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		div *= 10
	}
	return fmt.Sprintf("%d.%0*d", units/div, decimals, units%div)
}

// parseAmount converts a decimal SFD string to native base units.
func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)

	whole, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > config.Decimals {
			return 0, fmt.Errorf("too many decimal places (max %d)", config.Decimals)
		}
		// Pad to Decimals digits.
		fracStr = fracStr + strings.Repeat("0", config.Decimals-len(fracStr))
		frac, err = strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fractional part: %w", err)
		}
	}

	// Check overflow.
	if whole > math.MaxUint64/config.Coin {
		return 0, fmt.Errorf("amount too large")
	}
	result := whole * config.Coin
	if result > math.MaxUint64-frac {
		return 0, fmt.Errorf("amount too large")
	}

	return result + frac, nil
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
