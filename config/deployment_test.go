package config

import (
	"path/filepath"
	"testing"

	"github.com/spacefund-io/spacefund/pkg/types"
)

func TestNamespaceDeterministic(t *testing.T) {
	d := MainnetDeployment()
	ns1 := d.Namespace()
	ns2 := d.Namespace()
	if ns1 != ns2 {
		t.Fatal("namespace not deterministic")
	}
	if ns1 == (types.Namespace{}) {
		t.Fatal("namespace is zero")
	}
}

func TestNamespaceDiffersPerDeployment(t *testing.T) {
	main := MainnetDeployment().Namespace()
	dev := DevnetDeployment().Namespace()
	if main == dev {
		t.Fatal("mainnet and devnet namespaces collide")
	}
}

func TestDeploymentValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Deployment)
		wantErr bool
	}{
		{"valid mainnet", func(d *Deployment) {}, false},
		{"empty id", func(d *Deployment) { d.ID = "" }, true},
		{"zero conversion rate", func(d *Deployment) { d.Protocol.ConversionRate = 0 }, true},
		{"bad alloc address", func(d *Deployment) {
			d.Alloc = map[string]uint64{"not-an-address": 1}
		}, true},
		{"alloc exceeds max supply", func(d *Deployment) {
			d.Alloc = map[string]uint64{MainnetTreasury: d.Protocol.MaxSupply + 1}
		}, true},
		{"no max supply cap", func(d *Deployment) {
			d.Protocol.MaxSupply = 0
			d.Alloc = map[string]uint64{MainnetTreasury: 1 << 62}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MainnetDeployment()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParsedAlloc(t *testing.T) {
	d := MainnetDeployment()
	alloc, err := d.ParsedAlloc()
	if err != nil {
		t.Fatalf("ParsedAlloc: %v", err)
	}
	if len(alloc) != 1 {
		t.Fatalf("got %d allocations, want 1", len(alloc))
	}

	treasury, err := types.ParseAddress(MainnetTreasury)
	if err != nil {
		t.Fatalf("parsing treasury address: %v", err)
	}
	if alloc[treasury] != 10_000_000*Coin {
		t.Fatalf("treasury allocation = %d, want %d", alloc[treasury], uint64(10_000_000*Coin))
	}
}

func TestDeploymentSaveLoad(t *testing.T) {
	d := MainnetDeployment()
	path := filepath.Join(t.TempDir(), "deployment.json")

	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadDeployment(path)
	if err != nil {
		t.Fatalf("LoadDeployment: %v", err)
	}

	if loaded.ID != d.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, d.ID)
	}
	if loaded.Protocol.ConversionRate != d.Protocol.ConversionRate {
		t.Errorf("ConversionRate = %d, want %d", loaded.Protocol.ConversionRate, d.Protocol.ConversionRate)
	}
	if loaded.Protocol.RewardDecimals != d.Protocol.RewardDecimals {
		t.Errorf("RewardDecimals = %d, want %d", loaded.Protocol.RewardDecimals, d.Protocol.RewardDecimals)
	}
	if loaded.Namespace() != d.Namespace() {
		t.Error("namespace changed across save/load")
	}

	h1, err := d.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := loaded.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Error("deployment hash changed across save/load")
	}
}

func TestLoadDeploymentRejectsInvalid(t *testing.T) {
	d := MainnetDeployment()
	d.Protocol.ConversionRate = 0
	path := filepath.Join(t.TempDir(), "deployment.json")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := LoadDeployment(path); err == nil {
		t.Fatal("expected validation error on load")
	}
}

func TestDefaultConfigPerNetwork(t *testing.T) {
	main := Default(Mainnet)
	if main.Feed.Port != 40303 || main.RPC.Port != 8860 {
		t.Fatalf("mainnet ports = %d/%d", main.Feed.Port, main.RPC.Port)
	}
	dev := Default(Devnet)
	if dev.Feed.Port != 40304 || dev.RPC.Port != 8960 {
		t.Fatalf("devnet ports = %d/%d", dev.Feed.Port, dev.RPC.Port)
	}
	if err := Validate(main); err != nil {
		t.Fatalf("default mainnet config invalid: %v", err)
	}
	if err := Validate(dev); err != nil {
		t.Fatalf("default devnet config invalid: %v", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := Default(Mainnet)
	values := map[string]string{
		"feed.port":     "41000",
		"feed.seeds":    "/ip4/10.0.0.1/tcp/40303/p2p/x, /ip4/10.0.0.2/tcp/40303/p2p/y",
		"rpc.enabled":   "false",
		"log.level":     "debug",
		"wallet":        "true",
		"unknown.key":   "ignored",
		"feed.maxpeers": "10",
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Feed.Port != 41000 {
		t.Errorf("feed.port = %d", cfg.Feed.Port)
	}
	if len(cfg.Feed.Seeds) != 2 {
		t.Errorf("seeds = %v", cfg.Feed.Seeds)
	}
	if cfg.RPC.Enabled {
		t.Error("rpc still enabled")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if !cfg.Wallet.Enabled {
		t.Error("wallet not enabled")
	}
	if cfg.Feed.MaxPeers != 10 {
		t.Errorf("maxpeers = %d", cfg.Feed.MaxPeers)
	}
}
