package storage

import (
	"fmt"
	"sort"
	"testing"
)

func TestPrefixDB_Roundtrip(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("a/"))

	if err := db.Put([]byte("alice"), []byte("100")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := db.Get([]byte("alice"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "100" {
		t.Fatalf("Get = %q, want %q", got, "100")
	}

	if ok, err := db.Has([]byte("alice")); err != nil || !ok {
		t.Fatalf("Has = %v, %v; want true, nil", ok, err)
	}

	// The inner DB stores the key under the full prefix.
	if ok, _ := inner.Has([]byte("a/alice")); !ok {
		t.Fatal("inner DB missing the prefixed key")
	}

	if err := db.Delete([]byte("alice")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := db.Has([]byte("alice")); ok {
		t.Fatal("key still present after Delete")
	}
}

func TestPrefixDB_NamespaceIsolation(t *testing.T) {
	inner := NewMemory()
	accounts := NewPrefixDB(inner, []byte("a/"))
	tokens := NewPrefixDB(inner, []byte("t/"))

	if err := accounts.Put([]byte("vault"), []byte("5000000")); err != nil {
		t.Fatal(err)
	}
	if err := tokens.Put([]byte("vault"), []byte("mint-record")); err != nil {
		t.Fatal(err)
	}

	got, err := accounts.Get([]byte("vault"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "5000000" {
		t.Fatalf("accounts.Get = %q, want the balance", got)
	}

	got, err = tokens.Get([]byte("vault"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "mint-record" {
		t.Fatalf("tokens.Get = %q, want the token record", got)
	}

	// A namespace cannot reach into another one even with the raw key.
	if ok, _ := accounts.Has([]byte("t/vault")); ok {
		t.Fatal("accounts namespace sees a tokens key")
	}
}

func TestPrefixDB_ForEach(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("dn/main/"))

	db.Put([]byte("j/001"), []byte("rec1"))
	db.Put([]byte("j/002"), []byte("rec2"))
	db.Put([]byte("p/peer1"), []byte("addr"))

	// Sub-prefix iteration sees only the journal keys, already stripped
	// of the namespace prefix.
	var keys []string
	err := db.ForEach([]byte("j/"), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "j/001" || keys[1] != "j/002" {
		t.Fatalf("ForEach keys = %v, want [j/001 j/002]", keys)
	}

	// A nil prefix walks the whole namespace.
	total := 0
	if err := db.ForEach(nil, func(_, _ []byte) error {
		total++
		return nil
	}); err != nil {
		t.Fatalf("ForEach(nil): %v", err)
	}
	if total != 3 {
		t.Fatalf("ForEach(nil) visited %d keys, want 3", total)
	}
}

func TestPrefixDB_ForEachPropagatesError(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("j/"))

	for i := 0; i < 10; i++ {
		db.Put([]byte(fmt.Sprintf("%03d", i)), []byte("rec"))
	}

	stopErr := fmt.Errorf("enough")
	count := 0
	err := db.ForEach(nil, func(_, _ []byte) error {
		count++
		if count == 3 {
			return stopErr
		}
		return nil
	})
	if err != stopErr {
		t.Fatalf("ForEach err = %v, want the callback error", err)
	}
	if count != 3 {
		t.Fatalf("callback ran %d times after erroring, want 3", count)
	}
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	journal := NewPrefixDB(inner, []byte("j/"))
	peers := NewPrefixDB(inner, []byte("p/"))

	for i := 0; i < 3; i++ {
		journal.Put([]byte(fmt.Sprintf("%03d", i)), []byte("rec"))
	}
	peers.Put([]byte("peer1"), []byte("addr"))

	if err := journal.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}

	left := 0
	journal.ForEach(nil, func(_, _ []byte) error {
		left++
		return nil
	})
	if left != 0 {
		t.Fatalf("journal still holds %d keys after DeleteAll", left)
	}

	// The sibling namespace survives the wipe.
	if ok, _ := peers.Has([]byte("peer1")); !ok {
		t.Fatal("DeleteAll crossed into another namespace")
	}

	// Wiping an already-empty namespace is fine.
	if err := journal.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll on empty namespace: %v", err)
	}
}

func TestPrefixDB_CloseLeavesInnerOpen(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("k/"))

	db.Put([]byte("seed"), []byte("val"))

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := inner.Get([]byte("k/seed"))
	if err != nil {
		t.Fatalf("inner.Get after Close: %v", err)
	}
	if string(got) != "val" {
		t.Fatalf("inner.Get = %q, want %q", got, "val")
	}
}

// plainDB hides the Batcher implementation of the wrapped DB so the
// buffered fallback batch gets exercised.
type plainDB struct {
	DB
}

func TestPrefixDB_FallbackBatch(t *testing.T) {
	inner := NewMemory()
	defer inner.Close()
	db := NewPrefixDB(plainDB{inner}, []byte("a/"))

	db.Put([]byte("old"), []byte("stale"))

	b := db.NewBatch()
	if err := b.Put([]byte("alice"), []byte("100")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if err := b.Put([]byte("marker"), []byte{}); err != nil {
		t.Fatalf("batch Put empty value: %v", err)
	}
	if err := b.Delete([]byte("old")); err != nil {
		t.Fatalf("batch Delete: %v", err)
	}

	if ok, _ := db.Has([]byte("alice")); ok {
		t.Fatal("buffered write visible before Commit")
	}

	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := db.Get([]byte("alice"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "100" {
		t.Fatalf("Get = %q, want %q", got, "100")
	}

	// An empty value is a stored value, not a delete.
	val, err := db.Get([]byte("marker"))
	if err != nil {
		t.Fatalf("Get empty-value key: %v", err)
	}
	if len(val) != 0 {
		t.Fatalf("value = %d bytes, want empty", len(val))
	}

	if ok, _ := db.Has([]byte("old")); ok {
		t.Fatal("batched delete did not apply")
	}
}
