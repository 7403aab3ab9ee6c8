package config

import (
	"fmt"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Devnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Devnet)
	}
	if cfg.Feed.Port < 0 || cfg.Feed.Port > 65535 {
		return fmt.Errorf("feed.port must be in range [0, 65535]")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.Feed.MaxPeers < 0 {
		return fmt.Errorf("feed.maxpeers must not be negative")
	}
	return nil
}
