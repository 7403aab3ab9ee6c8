// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Deployment rules: immutable protocol parameters that must match
//     across every node of a deployment
//   - Node settings: runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or devnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Devnet  NetworkType = "devnet"
)

// =============================================================================
// Node Configuration (runtime, per-node settings)
// =============================================================================

// Config holds node-specific runtime configuration.
// These settings can vary between nodes without breaking the deployment.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Gossip feed networking
	Feed FeedConfig

	// RPC server
	RPC RPCConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// FeedConfig holds gossip feed network settings.
type FeedConfig struct {
	Enabled    bool     `conf:"feed.enabled"`
	ListenAddr string   `conf:"feed.listen"`
	Port       int      `conf:"feed.port"`
	Seeds      []string `conf:"feed.seeds"`
	MaxPeers   int      `conf:"feed.maxpeers"`
	NoDiscover bool     `conf:"feed.nodiscover"`
	DHTServer  bool     `conf:"feed.dhtserver"` // Run DHT in server mode (for seed nodes)
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// WalletConfig holds node-side wallet settings.
type WalletConfig struct {
	Enabled bool `conf:"wallet.enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.spacefund
//	macOS:   ~/Library/Application Support/Spacefund
//	Windows: %APPDATA%\Spacefund
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spacefund"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Spacefund")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Spacefund")
		}
		return filepath.Join(home, "AppData", "Roaming", "Spacefund")
	default:
		return filepath.Join(home, ".spacefund")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.NetworkDataDir(), "ledger")
}

// FeedDir returns the gossip feed state directory (peerstore).
func (c *Config) FeedDir() string {
	return filepath.Join(c.NetworkDataDir(), "feed")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "spacefund.conf")
}
