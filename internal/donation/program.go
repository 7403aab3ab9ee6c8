// Package donation implements the donation program: one atomic
// operation that moves native value into a deployment vault, lazily
// provisions the reward-token plumbing, and mints a proportional
// reward to the contributor.
package donation

import (
	"fmt"
	"sync"
	"time"

	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/ledger"
	"github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/token"
	"github.com/spacefund-io/spacefund/pkg/derive"
	"github.com/spacefund-io/spacefund/pkg/request"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Program executes donation requests against the ledger. All derived
// addresses are computed once at construction; per-contributor balance
// addresses are derived per request.
type Program struct {
	ledger *ledger.Ledger
	engine *token.Engine
	ns     types.Namespace

	conversionRate uint64
	rewardDecimals uint8
	minDonation    uint64

	vault     types.Address
	vaultBump uint8

	mint     types.Address
	mintBump uint8

	authority     derive.Authority
	authorityAddr types.Address

	now func() int64 // Node clock, swappable in tests.

	mu    sync.Mutex
	sinks []Sink
}

// New creates a donation program for one deployment.
func New(l *ledger.Ledger, ns types.Namespace, rules config.ProtocolConfig) (*Program, error) {
	if rules.ConversionRate == 0 {
		return nil, fmt.Errorf("conversion rate must be positive")
	}

	vault, vaultBump, err := derive.Find(ns, []byte(derive.SeedVault))
	if err != nil {
		return nil, fmt.Errorf("derive vault: %w", err)
	}
	mint, mintBump, err := derive.Find(ns, []byte(derive.SeedMint))
	if err != nil {
		return nil, fmt.Errorf("derive mint: %w", err)
	}
	authority, err := derive.MintAuthority(ns)
	if err != nil {
		return nil, err
	}
	authorityAddr, err := authority.Address(ns)
	if err != nil {
		return nil, fmt.Errorf("derive mint authority address: %w", err)
	}

	return &Program{
		ledger:         l,
		engine:         token.NewEngine(ns),
		ns:             ns,
		conversionRate: rules.ConversionRate,
		rewardDecimals: rules.RewardDecimals,
		minDonation:    rules.MinDonation,
		vault:          vault,
		vaultBump:      vaultBump,
		mint:           mint,
		mintBump:       mintBump,
		authority:      authority,
		authorityAddr:  authorityAddr,
		now:            func() int64 { return time.Now().Unix() },
	}, nil
}

// AddSink registers a post-commit record consumer.
func (p *Program) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

// RecordDonation executes one signed donation request: transfer the
// amount into the vault, provision the mint and the contributor's
// balance account if absent, and mint amount/conversionRate reward
// units. Everything commits atomically or not at all; on success the
// donation record is logged and dispatched to sinks.
func (p *Program) RecordDonation(req *request.Request) (*Record, error) {
	if err := req.ValidateAt(p.now()); err != nil {
		return nil, err
	}
	if !req.VerifySignature() {
		return nil, fmt.Errorf("%w: signature does not verify for %s", ErrUnauthorizedSigner, req.Contributor)
	}
	if p.minDonation > 0 && req.Amount < p.minDonation {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, req.Amount, p.minDonation)
	}

	// Integer floor; remainders under one conversion unit mint zero
	// but the donation itself still applies.
	reward := req.Amount / p.conversionRate

	balAddr, _, err := p.BalanceAddress(req.Contributor)
	if err != nil {
		return nil, categorize(err)
	}

	err = p.ledger.Execute(func(txn *ledger.Txn) error {
		if err := txn.CheckAndBumpNonce(req.Contributor, req.Nonce); err != nil {
			return err
		}
		if err := txn.Transfer(req.Contributor, p.vault, req.Amount); err != nil {
			return err
		}
		if err := p.ensureMint(txn, req.Contributor); err != nil {
			return err
		}
		if err := p.ensureBalance(txn, balAddr, req.Contributor); err != nil {
			return err
		}
		return p.engine.MintTo(txn, p.mint, balAddr, reward, p.authority)
	})
	if err != nil {
		return nil, categorize(err)
	}

	rec := &Record{
		Donor:     req.Contributor,
		Amount:    req.Amount,
		Timestamp: req.Timestamp,
		Reward:    reward,
	}

	log.Donation.Info().
		Stringer("donor", rec.Donor).
		Uint64("amount", rec.Amount).
		Int64("timestamp", rec.Timestamp).
		Uint64("tokens", rec.Reward).
		Msg("DONATION_EVENT")

	p.dispatch(rec)
	return rec, nil
}

// ensureMint creates the reward mint on first use. An existing mint is
// idempotent success only when its metadata matches this deployment.
func (p *Program) ensureMint(txn *ledger.Txn, payer types.Address) error {
	m, err := token.GetMint(txn, p.mint)
	if err != nil {
		// No mint record yet: first donation provisions it.
		return p.engine.CreateMint(txn, p.mint, p.rewardDecimals, p.authorityAddr, payer)
	}
	if !m.Initialized() {
		return fmt.Errorf("%w: mint %s exists without an authority", ErrProvisioningConflict, p.mint)
	}
	if m.Authority != p.authorityAddr {
		return fmt.Errorf("%w: mint %s has authority %s, expected %s",
			ErrProvisioningConflict, p.mint, m.Authority, p.authorityAddr)
	}
	if m.Decimals != p.rewardDecimals {
		return fmt.Errorf("%w: mint %s has %d decimals, expected %d",
			ErrProvisioningConflict, p.mint, m.Decimals, p.rewardDecimals)
	}
	return nil
}

// ensureBalance creates the contributor's balance account on first
// donation. An existing account is idempotent success only when it is
// bound to this mint and owned by the contributor.
func (p *Program) ensureBalance(txn *ledger.Txn, addr, owner types.Address) error {
	b, err := token.GetBalance(txn, addr)
	if err != nil {
		return p.engine.CreateBalanceAccount(txn, addr, p.mint, owner, owner)
	}
	if b.Mint != p.mint {
		return fmt.Errorf("%w: account %s bound to mint %s", ErrProvisioningConflict, addr, b.Mint)
	}
	if b.Owner != owner {
		return fmt.Errorf("%w: account %s owned by %s, not %s", ErrProvisioningConflict, addr, b.Owner, owner)
	}
	return nil
}

func (p *Program) dispatch(rec *Record) {
	p.mu.Lock()
	sinks := make([]Sink, len(p.sinks))
	copy(sinks, p.sinks)
	p.mu.Unlock()
	for _, s := range sinks {
		s.PublishRecord(rec)
	}
}

// =============================================================================
// Read-side accessors
// =============================================================================

// Vault returns the deployment's vault address and bump.
func (p *Program) Vault() (types.Address, uint8) {
	return p.vault, p.vaultBump
}

// MintAddress returns the reward mint's address and bump.
func (p *Program) MintAddress() (types.Address, uint8) {
	return p.mint, p.mintBump
}

// AuthorityAddress returns the derived mint authority address.
func (p *Program) AuthorityAddress() types.Address {
	return p.authorityAddr
}

// BalanceAddress derives one contributor's token balance address.
func (p *Program) BalanceAddress(owner types.Address) (types.Address, uint8, error) {
	return derive.Find(p.ns, []byte(derive.SeedTokenBalance), owner[:])
}

// ConversionRate returns the native base units per reward unit.
func (p *Program) ConversionRate() uint64 {
	return p.conversionRate
}

// MinDonation returns the donation floor in base units (0 = disabled).
func (p *Program) MinDonation() uint64 {
	return p.minDonation
}

// Namespace returns the deployment namespace.
func (p *Program) Namespace() types.Namespace {
	return p.ns
}

// VaultBalance reads the vault's committed native balance.
func (p *Program) VaultBalance() uint64 {
	return p.ledger.Balance(p.vault)
}

// Mint reads the committed mint record, nil if not yet provisioned.
func (p *Program) Mint() *token.Mint {
	m, err := token.GetMint(p.ledger, p.mint)
	if err != nil {
		return nil
	}
	return m
}

// ContributorBalance reads a contributor's committed reward balance,
// nil if they have never donated.
func (p *Program) ContributorBalance(owner types.Address) *token.Balance {
	addr, _, err := p.BalanceAddress(owner)
	if err != nil {
		return nil
	}
	b, err := token.GetBalance(p.ledger, addr)
	if err != nil {
		return nil
	}
	return b
}
