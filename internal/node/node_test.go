package node

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/request"
	"github.com/spacefund-io/spacefund/pkg/types"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.spacefund/devnet", filepath.Join(home, ".spacefund/devnet")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(config.Devnet)
	cfg.DataDir = t.TempDir()
	cfg.Feed.Enabled = false
	cfg.RPC.Port = 0 // Use random port.
	cfg.Wallet.Enabled = true
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}
	return cfg
}

func TestResolveDeployment_WritesDefault(t *testing.T) {
	cfg := testConfig(t)

	d, err := resolveDeployment(cfg)
	if err != nil {
		t.Fatalf("resolveDeployment: %v", err)
	}
	if d.ID != "spacefund-devnet-1" {
		t.Errorf("deployment id = %q, want spacefund-devnet-1", d.ID)
	}

	// The deployment file is written for inspection.
	path := filepath.Join(cfg.NetworkDataDir(), "deployment.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("deployment.json should have been written")
	}

	// A second resolve reads the same rules back.
	again, err := resolveDeployment(cfg)
	if err != nil {
		t.Fatalf("second resolveDeployment: %v", err)
	}
	if again.ID != d.ID || again.Protocol.ConversionRate != d.Protocol.ConversionRate {
		t.Error("reloaded deployment differs from the written one")
	}
}

func TestResolveDeployment_RejectsCorrupt(t *testing.T) {
	cfg := testConfig(t)

	path := filepath.Join(cfg.NetworkDataDir(), "deployment.json")
	if err := os.WriteFile(path, []byte(`{"id":""}`), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, err := resolveDeployment(cfg); err == nil {
		t.Fatal("expected error for invalid deployment file")
	}
}

func TestNodeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if n.RPCAddr() == "" {
		t.Error("RPCAddr should not be empty")
	}
	if n.Program() == nil || n.Ledger() == nil || n.Journal() == nil {
		t.Error("core components should be initialized")
	}
	if n.Feed() != nil {
		t.Error("feed should be nil when disabled")
	}

	// Stop should not panic or error.
	n.Stop()
}

func TestNodeDonationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if err := n.Ledger().Fund(map[types.Address]uint64{key.Address(): 10 * config.Coin}); err != nil {
		t.Fatalf("Fund: %v", err)
	}

	req := &request.Request{
		Version:     request.Version,
		Contributor: key.Address(),
		Amount:      6_000_000,
		Nonce:       0,
		Timestamp:   time.Now().Unix(),
	}
	req.Sign(key)

	rec, err := n.Program().RecordDonation(req)
	if err != nil {
		t.Fatalf("RecordDonation: %v", err)
	}
	if rec.Reward != 6 {
		t.Errorf("reward = %d, want 6", rec.Reward)
	}

	// The journal saw the committed record.
	if n.Journal().Count() != 1 {
		t.Errorf("journal count = %d, want 1", n.Journal().Count())
	}
	if n.Program().VaultBalance() != 6_000_000 {
		t.Errorf("vault balance = %d, want 6000000", n.Program().VaultBalance())
	}
}

func TestNodeStateSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key, _ := crypto.GenerateKey()
	if err := n.Ledger().Fund(map[types.Address]uint64{key.Address(): 10 * config.Coin}); err != nil {
		t.Fatalf("Fund: %v", err)
	}

	req := &request.Request{
		Version:     request.Version,
		Contributor: key.Address(),
		Amount:      2_000_000,
		Nonce:       0,
		Timestamp:   time.Now().Unix(),
	}
	req.Sign(key)
	if _, err := n.Program().RecordDonation(req); err != nil {
		t.Fatalf("RecordDonation: %v", err)
	}
	n.Stop()

	// Reopen the same data dir.
	n2, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer n2.Stop()

	if n2.Program().VaultBalance() != 2_000_000 {
		t.Errorf("vault balance after restart = %d, want 2000000", n2.Program().VaultBalance())
	}
	if n2.Journal().Count() != 1 {
		t.Errorf("journal count after restart = %d, want 1", n2.Journal().Count())
	}
	if bal := n2.Program().ContributorBalance(key.Address()); bal == nil || bal.Amount != 2 {
		t.Error("contributor token balance should survive restart")
	}
}
