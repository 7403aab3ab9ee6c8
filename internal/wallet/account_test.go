package wallet

import (
	"testing"

	"github.com/spacefund-io/spacefund/pkg/crypto"
)

func TestDeriveAccountKey_Deterministic(t *testing.T) {
	seed := testSeedBytes(t)

	k1, err := DeriveAccountKey(seed, 0)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}
	k2, err := DeriveAccountKey(seed, 0)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}
	if k1.Address() != k2.Address() {
		t.Error("same seed and index should derive the same key")
	}
}

func TestDeriveAccountKey_IndexSeparation(t *testing.T) {
	seed := testSeedBytes(t)

	seen := make(map[string]uint32)
	for i := uint32(0); i < 8; i++ {
		key, err := DeriveAccountKey(seed, i)
		if err != nil {
			t.Fatalf("DeriveAccountKey(%d) error: %v", i, err)
		}
		addr := key.Address().String()
		if prev, ok := seen[addr]; ok {
			t.Fatalf("index %d derived the same address as index %d", i, prev)
		}
		seen[addr] = i
	}
}

func TestDeriveAccountKey_SeedSeparation(t *testing.T) {
	seed1 := testSeedBytes(t)

	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	seed2, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}

	k1, _ := DeriveAccountKey(seed1, 0)
	k2, _ := DeriveAccountKey(seed2, 0)
	if k1.Address() == k2.Address() {
		t.Error("different seeds should derive different keys")
	}
}

func TestDeriveAccountKey_InvalidSeedLength(t *testing.T) {
	if _, err := DeriveAccountKey(make([]byte, 32), 0); err == nil {
		t.Error("short seed should be rejected")
	}
	if _, err := DeriveAccountKey(nil, 0); err == nil {
		t.Error("nil seed should be rejected")
	}
}

func TestDeriveAccountKey_SignsVerifiably(t *testing.T) {
	seed := testSeedBytes(t)

	key, err := DeriveAccountKey(seed, 3)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}

	msg := []byte("donation request payload")
	sig := key.Sign(msg)
	if !crypto.VerifySignature(key.Address(), msg, sig) {
		t.Error("signature from derived key should verify")
	}
	if crypto.VerifySignature(key.Address(), []byte("tampered"), sig) {
		t.Error("signature should not verify for a different message")
	}
}

func TestDeriveAccountAddress(t *testing.T) {
	seed := testSeedBytes(t)

	key, err := DeriveAccountKey(seed, 7)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}
	addr, err := DeriveAccountAddress(seed, 7)
	if err != nil {
		t.Fatalf("DeriveAccountAddress() error: %v", err)
	}
	if addr != key.Address() {
		t.Error("DeriveAccountAddress should match DeriveAccountKey().Address()")
	}
}
