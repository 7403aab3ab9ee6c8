package derive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/types"
)

func testNamespace() types.Namespace {
	return types.Namespace(crypto.Hash([]byte("derive test deployment")))
}

func TestFind_Deterministic(t *testing.T) {
	ns := testNamespace()

	addr1, bump1, err := Find(ns, []byte(SeedVault))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	addr2, bump2, err := Find(ns, []byte(SeedVault))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if addr1 != addr2 || bump1 != bump2 {
		t.Errorf("Find not deterministic: (%s, %d) != (%s, %d)", addr1, bump1, addr2, bump2)
	}
}

func TestFind_OffCurve(t *testing.T) {
	ns := testNamespace()

	tags := []string{SeedVault, SeedMint, SeedMintAuthority}
	for _, tag := range tags {
		addr, _, err := Find(ns, []byte(tag))
		if err != nil {
			t.Fatalf("Find(%q): %v", tag, err)
		}
		if isOnCurve(addr) {
			t.Errorf("Find(%q) returned on-curve address %s", tag, addr)
		}
	}
}

func TestFind_DistinctInputsDistinctAddresses(t *testing.T) {
	ns := testNamespace()

	vault, _, err := Find(ns, []byte(SeedVault))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	mint, _, err := Find(ns, []byte(SeedMint))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if vault == mint {
		t.Error("different tags produced the same address")
	}

	otherNS := types.Namespace(crypto.Hash([]byte("another deployment")))
	other, _, err := Find(otherNS, []byte(SeedVault))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if vault == other {
		t.Error("different namespaces produced the same address")
	}
}

func TestFind_SeedFraming(t *testing.T) {
	ns := testNamespace()

	a, _, err := Find(ns, []byte("ab"), []byte("c"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	b, _, err := Find(ns, []byte("a"), []byte("bc"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if a == b {
		t.Error("seed split should change the derived address")
	}
}

func TestAt_MatchesFind(t *testing.T) {
	ns := testNamespace()

	addr, bump, err := Find(ns, []byte(SeedMintAuthority))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	recomputed, err := At(ns, bump, []byte(SeedMintAuthority))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if recomputed != addr {
		t.Errorf("At = %s, want %s", recomputed, addr)
	}
}

func TestAt_RejectsInvalidSeeds(t *testing.T) {
	ns := testNamespace()

	long := bytes.Repeat([]byte{1}, MaxSeedLen+1)
	if _, err := At(ns, 255, long); !errors.Is(err, ErrInvalidSeeds) {
		t.Errorf("oversized seed: got %v, want ErrInvalidSeeds", err)
	}

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	if _, err := At(ns, 255, many...); !errors.Is(err, ErrInvalidSeeds) {
		t.Errorf("too many seeds: got %v, want ErrInvalidSeeds", err)
	}
}

func TestAuthority_AddressMatchesDerivedAuthority(t *testing.T) {
	ns := testNamespace()

	want, _, err := Find(ns, []byte(SeedMintAuthority))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	auth, err := MintAuthority(ns)
	if err != nil {
		t.Fatalf("MintAuthority: %v", err)
	}
	got, err := auth.Address(ns)
	if err != nil {
		t.Fatalf("Authority.Address: %v", err)
	}
	if got != want {
		t.Errorf("authority address = %s, want %s", got, want)
	}
}

func TestAuthority_WrongRecipeDiffers(t *testing.T) {
	ns := testNamespace()

	auth, err := MintAuthority(ns)
	if err != nil {
		t.Fatalf("MintAuthority: %v", err)
	}
	want, err := auth.Address(ns)
	if err != nil {
		t.Fatalf("Authority.Address: %v", err)
	}

	forged := Authority{Seed: []byte("not_the_authority"), Bump: auth.Bump}
	got, err := forged.Address(ns)
	if err != nil {
		// A recipe landing on-curve is also a rejection.
		return
	}
	if got == want {
		t.Error("forged recipe should not reproduce the authority address")
	}
}
