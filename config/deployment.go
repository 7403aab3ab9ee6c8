package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// =============================================================================
// Deployment Rules (immutable, agreed at launch)
// These MUST match across all nodes of a deployment.
// =============================================================================

// Denomination constants.
// 1 SFD = 10^9 base units. All protocol values are in base units.
const (
	Decimals  = 9
	Coin      = 1_000_000_000 // 10^9 base units per SFD
	MilliCoin = 1_000_000     // 10^6
	MicroCoin = 1_000         // 10^3
)

// namespaceContext domain-separates deployment namespaces from every
// other hash in the system.
const namespaceContext = "spacefund/namespace/v1"

// Deployment holds the immutable protocol rules of one network.
// Changing any field creates a different deployment.
type Deployment struct {
	// Identity
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"` // Native coin symbol (e.g., "SFD")

	// Launch metadata
	Timestamp uint64 `json:"timestamp"`
	ExtraData string `json:"extra_data,omitempty"`

	// Initial allocations (address -> balance in base units)
	Alloc map[string]uint64 `json:"alloc"`

	// Protocol rules
	Protocol ProtocolConfig `json:"protocol"`
}

// ProtocolConfig holds the donation protocol's rules.
// All nodes MUST agree on these values.
type ProtocolConfig struct {
	// ConversionRate is the native base units per reward-token unit.
	// reward = amount / ConversionRate, integer floor.
	ConversionRate uint64 `json:"conversion_rate"`

	// RewardDecimals is the reward-token mint's decimal count.
	RewardDecimals uint8 `json:"reward_decimals"`

	// MinDonation is an optional donation floor in base units
	// (0 = disabled; any amount accepted, sub-threshold mints zero).
	MinDonation uint64 `json:"min_donation,omitempty"`

	// MaxSupply caps the native coin in circulation (0 = unlimited).
	// Allocations are the only native issuance, so this bounds them.
	MaxSupply uint64 `json:"max_supply,omitempty"`
}

// Namespace returns the 32-byte domain separator scoping every derived
// address to this deployment.
func (d *Deployment) Namespace() types.Namespace {
	h := crypto.HashAll([]byte(namespaceContext), []byte{0}, []byte(d.ID))
	return types.Namespace(h)
}

// =============================================================================
// Devnet Identity
//
// Derived from the well-known BIP-39 test mnemonic (DO NOT use on mainnet):
//
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon art
// =============================================================================

// DevnetMnemonic is the well-known seed phrase for devnet accounts.
const DevnetMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

// MainnetTreasury receives the mainnet genesis allocation.
const MainnetTreasury = "6PsAWUJHCj4N64UV2ahWnTm2rsMh6uiTsPiAxxxAxWp6"

// =============================================================================
// Pre-defined deployment configurations
// =============================================================================

// MainnetDeployment returns the mainnet deployment configuration.
func MainnetDeployment() *Deployment {
	return &Deployment{
		ID:        "spacefund-mainnet-1",
		Name:      "Spacefund Mainnet",
		Symbol:    "SFD",
		Timestamp: 1772366400, // 2026-03-01
		ExtraData: "Spacefund Genesis",
		Alloc: map[string]uint64{
			MainnetTreasury: 10_000_000 * Coin,
		},
		Protocol: ProtocolConfig{
			ConversionRate: 1_000_000, // 1 SPX unit per 0.001 SFD
			RewardDecimals: 6,
			MinDonation:    0,                 // Any amount accepted; sub-threshold mints zero.
			MaxSupply:      10_000_000 * Coin, // Allocations are the only issuance.
		},
	}
}

// DevnetDeployment returns the devnet deployment configuration.
// Allocations are empty: devnet accounts are derived from the
// well-known mnemonic and funded at boot by the devnet tool.
func DevnetDeployment() *Deployment {
	d := MainnetDeployment()
	d.ID = "spacefund-devnet-1"
	d.Name = "Spacefund Devnet"
	d.ExtraData = "Spacefund Devnet Genesis"
	d.Alloc = map[string]uint64{}
	d.Protocol.MaxSupply = 0 // Unlimited for testing.
	return d
}

// DeploymentFor returns the deployment config for the given network.
func DeploymentFor(network NetworkType) *Deployment {
	switch network {
	case Devnet:
		return DevnetDeployment()
	default:
		return MainnetDeployment()
	}
}

// =============================================================================
// Deployment file I/O
// =============================================================================

// LoadDeployment loads a deployment configuration from a file.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deployment file: %w", err)
	}

	var d Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing deployment file: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment: %w", err)
	}

	return &d, nil
}

// Save writes the deployment configuration to a file.
func (d *Deployment) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding deployment: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing deployment file: %w", err)
	}

	return nil
}

// Validate checks that the deployment configuration is valid.
func (d *Deployment) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id is required")
	}

	if d.Protocol.ConversionRate == 0 {
		return fmt.Errorf("conversion_rate must be positive")
	}

	// Validate alloc addresses and check total doesn't exceed max supply.
	var totalAlloc uint64
	for addrStr, v := range d.Alloc {
		if _, err := types.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		totalAlloc += v
	}
	if d.Protocol.MaxSupply > 0 && totalAlloc > d.Protocol.MaxSupply {
		return fmt.Errorf("allocations (%d) exceed max_supply (%d)",
			totalAlloc, d.Protocol.MaxSupply)
	}

	return nil
}

// ParsedAlloc returns the allocations keyed by parsed address.
// Call Validate first; parse failures here are programmer errors.
func (d *Deployment) ParsedAlloc() (map[types.Address]uint64, error) {
	alloc := make(map[types.Address]uint64, len(d.Alloc))
	for addrStr, v := range d.Alloc {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		alloc[addr] = v
	}
	return alloc, nil
}

// Hash returns a BLAKE3 hash of the deployment configuration.
// Used to identify the deployment and detect mismatches.
func (d *Deployment) Hash() (types.Hash, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
