// Package node provides a reusable spacefund node that can be embedded
// in any binary (daemon, devnet harness, tooling).
package node

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/donation"
	"github.com/spacefund-io/spacefund/internal/feed"
	"github.com/spacefund-io/spacefund/internal/ledger"
	klog "github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/rpc"
	"github.com/spacefund-io/spacefund/internal/storage"
	"github.com/spacefund-io/spacefund/internal/wallet"
)

// allocFundedKey marks that deployment allocations were credited, so a
// restart does not double-fund.
var allocFundedKey = []byte("n/alloc-funded")

// Node is a fully-initialized spacefund node.
type Node struct {
	cfg        *config.Config
	deployment *config.Deployment
	logger     zerolog.Logger

	// Core
	db      storage.DB
	ledger  *ledger.Ledger
	program *donation.Program
	journal *rpc.Journal

	// Networking
	feed *feed.Feed

	// RPC
	rpcServer *rpc.Server
}

// New creates and initializes a new Node: logger, deployment rules,
// storage, ledger, donation program, record feed, and RPC. When New
// returns without error all services are listening; call Stop for a
// graceful shutdown.
func New(cfg *config.Config) (*Node, error) {
	cfg.DataDir = expandHome(cfg.DataDir)

	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/spacefund.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	// ── 2. Deployment rules ─────────────────────────────────────────
	deployment, err := resolveDeployment(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve deployment: %w", err)
	}

	logger.Info().
		Str("deployment", deployment.ID).
		Str("network", string(cfg.Network)).
		Uint64("conversion_rate", deployment.Protocol.ConversionRate).
		Msg("Starting Spacefund Node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.LedgerDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
	}
	logger.Info().Str("path", cfg.LedgerDir()).Msg("Database opened")

	// ── 4. Ledger ───────────────────────────────────────────────────
	l, err := ledger.New(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger: %w", err)
	}

	if err := fundAllocations(db, l, deployment, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("fund allocations: %w", err)
	}

	// ── 5. Donation program ─────────────────────────────────────────
	program, err := donation.New(l, deployment.Namespace(), deployment.Protocol)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create donation program: %w", err)
	}

	vault, _ := program.Vault()
	mint, _ := program.MintAddress()
	logger.Info().
		Stringer("vault", vault).
		Stringer("mint", mint).
		Msg("Donation program ready")

	// ── 6. Donation journal ─────────────────────────────────────────
	journal, err := rpc.NewJournal(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open donation journal: %w", err)
	}
	program.AddSink(journal)

	// ── 7. Record feed ──────────────────────────────────────────────
	var feedNode *feed.Feed
	if cfg.Feed.Enabled {
		feedNode = feed.New(feed.Config{
			ListenAddr:   cfg.Feed.ListenAddr,
			Port:         cfg.Feed.Port,
			Seeds:        cfg.Feed.Seeds,
			MaxPeers:     cfg.Feed.MaxPeers,
			NoDiscover:   cfg.Feed.NoDiscover,
			DHTServer:    cfg.Feed.DHTServer,
			DB:           db,
			DeploymentID: deployment.ID,
			DataDir:      cfg.FeedDir(),
		})

		if err := feedNode.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("start record feed: %w", err)
		}
		program.AddSink(feedNode)

		logger.Info().
			Str("id", feedNode.ID().String()).
			Int("port", cfg.Feed.Port).
			Bool("discovery", !cfg.Feed.NoDiscover).
			Msg("Record feed started")
	} else {
		logger.Warn().Msg("Record feed disabled by config; node will run offline")
	}

	// ── 8. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		rpcServer = rpc.New(rpcAddr, program, l, deployment, cfg.RPC)
		rpcServer.SetJournal(journal)
		if feedNode != nil {
			rpcServer.SetFeed(feedNode)
		}

		// Wallet RPC.
		if cfg.Wallet.Enabled {
			ks, ksErr := wallet.NewKeystore(cfg.KeystoreDir())
			if ksErr != nil {
				if feedNode != nil {
					feedNode.Stop()
				}
				db.Close()
				return nil, fmt.Errorf("create wallet keystore: %w", ksErr)
			}
			rpcServer.SetKeystore(ks)
			logger.Info().Str("path", cfg.KeystoreDir()).Msg("Wallet RPC enabled")
		}

		if err := rpcServer.Start(); err != nil {
			if feedNode != nil {
				feedNode.Stop()
			}
			db.Close()
			return nil, fmt.Errorf("start RPC at %s: %w", rpcAddr, err)
		}
		logger.Info().Str("addr", rpcServer.Addr()).Msg("RPC server started")
	} else {
		if cfg.Wallet.Enabled {
			logger.Warn().Msg("wallet.enabled is true but RPC is disabled; wallet RPC endpoints unavailable")
		}
		logger.Warn().Msg("RPC disabled by config")
	}

	logger.Info().
		Uint64("vault_balance", program.VaultBalance()).
		Int("records", journal.Count()).
		Msg("Node started successfully")

	return &Node{
		cfg:        cfg,
		deployment: deployment,
		logger:     logger,
		db:         db,
		ledger:     l,
		program:    program,
		journal:    journal,
		feed:       feedNode,
		rpcServer:  rpcServer,
	}, nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.feed != nil {
		n.feed.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Program returns the donation program.
func (n *Node) Program() *donation.Program {
	return n.program
}

// Ledger returns the account ledger.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Journal returns the donation journal.
func (n *Node) Journal() *rpc.Journal {
	return n.journal
}

// Feed returns the record feed, or nil when networking is disabled.
func (n *Node) Feed() *feed.Feed {
	return n.feed
}

// Deployment returns the active deployment rules.
func (n *Node) Deployment() *config.Deployment {
	return n.deployment
}
