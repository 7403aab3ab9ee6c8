package derive

import (
	"testing"

	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// FuzzFind checks that derivation never returns an on-curve address and
// that Find/At agree for arbitrary seed material.
func FuzzFind(f *testing.F) {
	f.Add([]byte("donation_vault"), []byte(""))
	f.Add([]byte("spacex_token_mint"), []byte("owner"))
	f.Add([]byte{}, []byte{0xff, 0x00, 0xff})

	ns := types.Namespace(crypto.Hash([]byte("fuzz deployment")))

	f.Fuzz(func(t *testing.T, a, b []byte) {
		if len(a) > MaxSeedLen || len(b) > MaxSeedLen {
			return
		}
		addr, bump, err := Find(ns, a, b)
		if err != nil {
			// Bump exhaustion is astronomically unlikely but not a panic.
			return
		}
		if isOnCurve(addr) {
			t.Fatalf("Find returned on-curve address for seeds %x / %x", a, b)
		}
		again, err := At(ns, bump, a, b)
		if err != nil {
			t.Fatalf("At(%d) after Find: %v", bump, err)
		}
		if again != addr {
			t.Fatalf("At = %s, Find = %s", again, addr)
		}
	})
}
