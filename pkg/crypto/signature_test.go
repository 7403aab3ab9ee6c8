package crypto

import (
	"bytes"
	"testing"

	"github.com/spacefund-io/spacefund/pkg/types"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	if key.Address().IsZero() {
		t.Error("Address() should not be zero")
	}

	if len(key.Seed()) != SeedSize {
		t.Errorf("Seed() length = %d, want %d", len(key.Seed()), SeedSize)
	}
}

func TestGenerateKey_Unique(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	k2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	if k1.Address() == k2.Address() {
		t.Error("two generated keys should not be identical")
	}
}

func TestPrivateKeyFromSeed(t *testing.T) {
	original, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	restored, err := PrivateKeyFromSeed(original.Seed())
	if err != nil {
		t.Fatalf("PrivateKeyFromSeed() error: %v", err)
	}

	if original.Address() != restored.Address() {
		t.Error("restored key should have same address")
	}
}

func TestPrivateKeyFromSeed_InvalidLength(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"short", bytes.Repeat([]byte{1}, 16)},
		{"long", bytes.Repeat([]byte{1}, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PrivateKeyFromSeed(tt.data); err == nil {
				t.Errorf("PrivateKeyFromSeed(%d bytes) should fail", len(tt.data))
			}
		})
	}
}

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	msg := []byte("donation request signing bytes")
	sig := key.Sign(msg)

	if len(sig) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(sig), SignatureSize)
	}
	if !VerifySignature(key.Address(), msg, sig) {
		t.Error("valid signature should verify")
	}
}

func TestVerifySignature_Rejects(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	msg := []byte("original message")
	sig := key.Sign(msg)

	if VerifySignature(key.Address(), []byte("tampered"), sig) {
		t.Error("signature over different message should not verify")
	}
	if VerifySignature(other.Address(), msg, sig) {
		t.Error("signature should not verify against another address")
	}

	bad := make([]byte, len(sig))
	copy(bad, sig)
	bad[0] ^= 0x01
	if VerifySignature(key.Address(), msg, bad) {
		t.Error("corrupted signature should not verify")
	}

	if VerifySignature(key.Address(), msg, sig[:SignatureSize-1]) {
		t.Error("truncated signature should not verify")
	}
	if VerifySignature(types.Address{}, msg, sig) {
		t.Error("zero address should not verify")
	}
}

func TestPrivateKey_SignerInterface(t *testing.T) {
	var s Signer
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	s = key

	msg := []byte("signer interface test")
	sig := s.Sign(msg)
	if !VerifySignature(s.Address(), msg, sig) {
		t.Error("Signer interface: signature should verify")
	}
}
