package request

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spacefund-io/spacefund/pkg/crypto"
)

func signedRequest(t *testing.T, amount uint64) (*Request, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	r := &Request{
		Version:   Version,
		Amount:    amount,
		Nonce:     0,
		Timestamp: time.Now().Unix(),
	}
	r.Sign(key)
	return r, key
}

func TestSignVerify_RoundTrip(t *testing.T) {
	r, key := signedRequest(t, 2_000_000)

	if r.Contributor != key.Address() {
		t.Error("Sign should set the contributor address")
	}
	if !r.VerifySignature() {
		t.Error("signed request should verify")
	}
}

func TestVerifySignature_RejectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"amount changed", func(r *Request) { r.Amount++ }},
		{"nonce changed", func(r *Request) { r.Nonce++ }},
		{"timestamp changed", func(r *Request) { r.Timestamp++ }},
		{"version changed", func(r *Request) { r.Version++ }},
		{"signature corrupted", func(r *Request) { r.Signature[0] ^= 0x01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := signedRequest(t, 1_000_000)
			tt.mutate(r)
			if r.VerifySignature() {
				t.Error("tampered request should not verify")
			}
		})
	}
}

func TestSigningBytes_Deterministic(t *testing.T) {
	r, _ := signedRequest(t, 42)
	h1 := r.Hash()
	h2 := r.Hash()
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"valid", func(r *Request) {}, nil},
		{"zero amount accepted", func(r *Request) { r.Amount = 0 }, nil},
		{"bad version", func(r *Request) { r.Version = 99 }, ErrBadVersion},
		{"zero contributor", func(r *Request) { r.Contributor = [32]byte{} }, ErrNoContributor},
		{"no signature", func(r *Request) { r.Signature = nil }, ErrMissingSig},
		{"short signature", func(r *Request) { r.Signature = r.Signature[:10] }, ErrBadSigLength},
		{"no timestamp", func(r *Request) { r.Timestamp = 0 }, ErrNoTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := signedRequest(t, 500_000)
			tt.mutate(r)
			err := r.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateAt_BoundsTimestamp(t *testing.T) {
	now := time.Now().Unix()

	r, _ := signedRequest(t, 1)
	if err := r.ValidateAt(now); err != nil {
		t.Fatalf("ValidateAt: %v", err)
	}

	r.Timestamp = now - MaxClockSkew - 1
	if err := r.ValidateAt(now); !errors.Is(err, ErrTimestampSkewed) {
		t.Errorf("stale timestamp: got %v, want ErrTimestampSkewed", err)
	}

	r.Timestamp = now + MaxClockSkew + 1
	if err := r.ValidateAt(now); !errors.Is(err, ErrTimestampSkewed) {
		t.Errorf("future timestamp: got %v, want ErrTimestampSkewed", err)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	r, _ := signedRequest(t, 3_000_000)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Request
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Hash() != r.Hash() {
		t.Error("decoded request hash differs")
	}
	if !decoded.VerifySignature() {
		t.Error("decoded request should still verify")
	}
}
