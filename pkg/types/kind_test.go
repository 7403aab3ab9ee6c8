package types

import "testing"

func TestAccountKind_Valid(t *testing.T) {
	for _, k := range []AccountKind{KindSystem, KindMint, KindToken} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if AccountKind("vault").Valid() {
		t.Error("unknown kind should be invalid")
	}
	if AccountKind("").Valid() {
		t.Error("empty kind should be invalid")
	}
}

func TestAccountKind_HoldsData(t *testing.T) {
	if KindSystem.HoldsData() {
		t.Error("system accounts carry no record")
	}
	if !KindMint.HoldsData() {
		t.Error("mint accounts carry a record")
	}
	if !KindToken.HoldsData() {
		t.Error("token accounts carry a record")
	}
}
