// Command devnet boots a 2-node local devnet from scratch.
//
// Usage: go run ./cmd/devnet/
//
// It derives well-known donor accounts from the devnet mnemonic, boots two
// in-process nodes sharing the devnet deployment rules, connects their
// record feeds via libp2p, drives a series of donations through node 1,
// and verifies node 2 observed every record. Ctrl+C for early shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	libp2ppeer "github.com/libp2p/go-libp2p/core/peer"

	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/donation"
	"github.com/spacefund-io/spacefund/internal/feed"
	"github.com/spacefund-io/spacefund/internal/ledger"
	klog "github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/storage"
	"github.com/spacefund-io/spacefund/internal/wallet"
	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/request"
)

const (
	numDonors    = 3
	numDonations = 6
	donateEvery  = 2 * time.Second
	donorFunding = 100 * config.Coin
)

// nodeBundle groups all components for one logical node.
type nodeBundle struct {
	name     string
	ledger   *ledger.Ledger
	program  *donation.Program
	feed     *feed.Feed
	received atomic.Uint64 // Records observed via gossip.
}

func main() {
	klog.Init("info", false, "")
	logger := klog.WithComponent("devnet")

	logger.Info().Msg("=== Spacefund 2-Node Local Devnet ===")

	// ── Phase 1: Well-known devnet identities + deployment ──────────────

	seed, err := wallet.SeedFromMnemonic(config.DevnetMnemonic, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("derive devnet seed")
	}

	donors := make([]*crypto.PrivateKey, numDonors)
	for i := range donors {
		key, err := wallet.DeriveAccountKey(seed, uint32(i))
		if err != nil {
			logger.Fatal().Err(err).Uint32("index", uint32(i)).Msg("derive donor key")
		}
		donors[i] = key
	}
	for i := range seed {
		seed[i] = 0
	}

	deployment := config.DevnetDeployment()
	logger.Info().
		Str("deployment", deployment.ID).
		Int("donors", numDonors).
		Msg("Devnet identities derived")

	// ── Phase 2: Build nodes ─────────────────────────────────────────────

	node1, err := buildNode("node-1", deployment, donors)
	if err != nil {
		logger.Fatal().Err(err).Msg("build node-1")
	}
	node2, err := buildNode("node-2", deployment, donors)
	if err != nil {
		logger.Fatal().Err(err).Msg("build node-2")
	}

	vault, _ := node1.program.Vault()
	mint, _ := node1.program.MintAddress()
	logger.Info().
		Str("vault", vault.String()).
		Str("mint", mint.String()).
		Msg("Donation program ready on both nodes")

	// ── Phase 3: Start feeds + connect ───────────────────────────────────

	if err := node1.feed.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start node-1 feed")
	}
	if err := node2.feed.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start node-2 feed")
	}
	defer cleanup(node1, node2)

	logger.Info().
		Str("node1_id", node1.feed.ID().String()[:16]+"...").
		Str("node2_id", node2.feed.ID().String()[:16]+"...").
		Msg("Record feeds started")

	connectFeeds(node1.feed, node2.feed)
	time.Sleep(500 * time.Millisecond) // GossipSub mesh stabilization.

	logger.Info().
		Int("node1_peers", node1.feed.PeerCount()).
		Int("node2_peers", node2.feed.PeerCount()).
		Msg("Nodes connected")

	// ── Phase 4: Signal handling ─────────────────────────────────────────

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("Shutdown signal received")
		cancel()
	}()

	// ── Phase 5: Donations ───────────────────────────────────────────────

	logger.Info().
		Int("donations", numDonations).
		Dur("interval", donateEvery).
		Msg("Starting donation rounds")

	nonces := make([]uint64, numDonors)
	var totalDonated, totalTokens uint64

	for i := 0; i < numDonations; i++ {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Donation rounds interrupted")
			goto verify
		default:
		}

		donor := i % numDonors
		amount := uint64(i+1) * config.Coin / 2 // 0.5, 1.0, 1.5, ... SFD

		req := &request.Request{
			Version:     request.Version,
			Contributor: donors[donor].Address(),
			Amount:      amount,
			Nonce:       nonces[donor],
			Timestamp:   time.Now().Unix(),
		}
		req.Sign(donors[donor])

		rec, err := node1.program.RecordDonation(req)
		if err != nil {
			logger.Fatal().Err(err).Msg("record donation on node-1")
		}
		nonces[donor]++
		totalDonated += rec.Amount
		totalTokens += rec.Reward

		logger.Info().
			Str("donor", rec.Donor.String()[:16]+"...").
			Uint64("amount", rec.Amount).
			Uint64("tokens", rec.Reward).
			Msg("Donation committed")

		if i < numDonations-1 {
			select {
			case <-ctx.Done():
				goto verify
			case <-time.After(donateEvery):
			}
		}
	}

verify:
	// ── Phase 6: Verification ────────────────────────────────────────────

	// Wait for the last record to propagate.
	time.Sleep(2 * time.Second)

	vaultBalance := node1.program.VaultBalance()
	supply := uint64(0)
	if m := node1.program.Mint(); m != nil {
		supply = m.Supply
	}
	observed := node2.received.Load()

	logger.Info().
		Uint64("vault_balance", vaultBalance).
		Uint64("token_supply", supply).
		Uint64("node2_observed", observed).
		Msg("Final state")

	if vaultBalance == totalDonated && supply == totalTokens && observed == uint64(numDonations) {
		logger.Info().Msg("SUCCESS: Vault, supply, and gossip all match!")
		fmt.Println()
		fmt.Printf("  Donations:       %d\n", numDonations)
		fmt.Printf("  Total raised:    %.3f SFD\n", float64(vaultBalance)/float64(config.Coin))
		fmt.Printf("  Tokens minted:   %d base units\n", supply)
		fmt.Printf("  Conversion rate: %d base units/token unit\n", deployment.Protocol.ConversionRate)
		fmt.Printf("  Reward decimals: %d\n", deployment.Protocol.RewardDecimals)
		fmt.Printf("  Records gossiped to node-2: %d\n", observed)
		fmt.Println()
	} else {
		logger.Error().Msg("FAILURE: State mismatch between nodes!")
		os.Exit(1)
	}
}

// buildNode creates a fully wired node with ledger, donation program,
// and record feed, funded from the devnet allocations plus the donors.
func buildNode(name string, deployment *config.Deployment, donors []*crypto.PrivateKey) (*nodeBundle, error) {
	db := storage.NewMemory()
	l, err := ledger.New(db)
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}

	alloc, err := deployment.ParsedAlloc()
	if err != nil {
		return nil, fmt.Errorf("parse allocations: %w", err)
	}
	for _, d := range donors {
		alloc[d.Address()] = donorFunding
	}
	if err := l.Fund(alloc); err != nil {
		return nil, fmt.Errorf("fund allocations: %w", err)
	}

	program, err := donation.New(l, deployment.Namespace(), deployment.Protocol)
	if err != nil {
		return nil, fmt.Errorf("create donation program: %w", err)
	}

	dataDir, err := os.MkdirTemp("", "spacefund-devnet-"+name+"-")
	if err != nil {
		return nil, fmt.Errorf("create feed dir: %w", err)
	}

	f := feed.New(feed.Config{
		ListenAddr:   "127.0.0.1",
		Port:         0, // Random port.
		NoDiscover:   true,
		DeploymentID: deployment.ID,
		DataDir:      dataDir,
	})

	n := &nodeBundle{
		name:    name,
		ledger:  l,
		program: program,
		feed:    f,
	}

	// Count incoming gossip; records are observational, nothing to apply.
	nodeLogger := klog.WithComponent(name)
	f.SetRecordHandler(func(_ libp2ppeer.ID, rec *donation.Record) {
		n.received.Add(1)
		nodeLogger.Info().
			Str("donor", rec.Donor.String()[:16]+"...").
			Uint64("amount", rec.Amount).
			Uint64("tokens", rec.Reward).
			Msg("Record received via gossip")
	})

	// Outgoing: committed donations go straight to the feed.
	program.AddSink(f)

	return n, nil
}

// connectFeeds connects two feed nodes directly.
func connectFeeds(a, b *feed.Feed) {
	aHost := a.Host()
	info := libp2ppeer.AddrInfo{
		ID:    aHost.ID(),
		Addrs: aHost.Addrs(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.Host().Connect(ctx, info)
}

// cleanup stops all feeds.
func cleanup(nodes ...*nodeBundle) {
	for _, n := range nodes {
		n.feed.Stop()
	}
}
