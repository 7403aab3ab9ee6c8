package storage

import (
	"testing"
)

// testBatch runs the shared batch suite against a Batcher implementation.
func testBatch(t *testing.T, db DB) {
	t.Helper()

	batcher, ok := db.(Batcher)
	if !ok {
		t.Fatalf("%T does not implement Batcher", db)
	}

	t.Run("CommitAppliesAll", func(t *testing.T) {
		b := batcher.NewBatch()
		if err := b.Put([]byte("bk1"), []byte("v1")); err != nil {
			t.Fatalf("batch Put: %v", err)
		}
		if err := b.Put([]byte("bk2"), []byte("v2")); err != nil {
			t.Fatalf("batch Put: %v", err)
		}

		// Nothing visible before commit.
		if ok, _ := db.Has([]byte("bk1")); ok {
			t.Error("key visible before Commit")
		}

		if err := b.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		for _, k := range []string{"bk1", "bk2"} {
			if ok, _ := db.Has([]byte(k)); !ok {
				t.Errorf("key %q missing after Commit", k)
			}
		}
	})

	t.Run("DeleteInBatch", func(t *testing.T) {
		if err := db.Put([]byte("bk3"), []byte("v3")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		b := batcher.NewBatch()
		if err := b.Delete([]byte("bk3")); err != nil {
			t.Fatalf("batch Delete: %v", err)
		}
		if err := b.Put([]byte("bk4"), []byte("v4")); err != nil {
			t.Fatalf("batch Put: %v", err)
		}
		if err := b.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		if ok, _ := db.Has([]byte("bk3")); ok {
			t.Error("deleted key still present after Commit")
		}
		if ok, _ := db.Has([]byte("bk4")); !ok {
			t.Error("batched key missing after Commit")
		}
	})
}

func TestMemoryDB_Batch(t *testing.T) {
	testBatch(t, NewMemory())
}

func TestBadgerDB_Batch(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	defer db.Close()
	testBatch(t, db)
}

func TestPrefixDB_BatchIsolation(t *testing.T) {
	inner := NewMemory()
	a := NewPrefixDB(inner, []byte("a/"))
	b := NewPrefixDB(inner, []byte("b/"))

	batch := a.NewBatch()
	if err := batch.Put([]byte("key"), []byte("from-a")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := b.Get([]byte("key")); err == nil {
		t.Error("prefix b should not see keys committed under prefix a")
	}
	got, err := a.Get([]byte("key"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "from-a" {
		t.Errorf("Get = %q, want %q", got, "from-a")
	}
}
