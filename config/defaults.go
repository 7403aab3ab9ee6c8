package config

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Feed: FeedConfig{
			Enabled:    true,
			ListenAddr: "0.0.0.0",
			Port:       40303,
			MaxPeers:   50,
			// Seeds are nodes that help new peers join the record feed.
			// Format: multiaddr strings, e.g.:
			//   "/ip4/203.0.113.1/tcp/40303/p2p/12D3KooW..."
			//   "/dns4/seed1.spacefund.io/tcp/40303/p2p/12D3KooW..."
			// Run seed nodes with --dht-server for optimal DHT performance.
			Seeds: []string{},
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8860,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Wallet: WalletConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultDevnet returns the default node configuration for devnet.
func DefaultDevnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Devnet
	cfg.Feed.Port = 40304
	cfg.RPC.Port = 8960
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Devnet:
		return DefaultDevnet()
	default:
		return DefaultMainnet()
	}
}
