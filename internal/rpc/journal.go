package rpc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/spacefund-io/spacefund/internal/donation"
	klog "github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/storage"
)

// Journal is a persistent, append-only index of committed donation
// records, kept so donation_listRecords can page through history
// without replaying the feed. It subscribes to the donation program as
// a post-commit sink; losing it never affects ledger state.
//
// Key layout (all under the "j/" prefix namespace):
//
//	Entry:    "e/<revSeq8>" → JSON donation.Record
//	Metadata: "m"           → JSON journalMeta
//
// revSeq is (math.MaxUint64 - seq) encoded as 8 big-endian bytes, so
// sorted iteration yields newest entries first.
type Journal struct {
	db storage.DB

	mu      sync.Mutex
	nextSeq uint64
	count   int
}

// journalMeta tracks the append cursor so the journal survives restarts.
type journalMeta struct {
	NextSeq uint64 `json:"next_seq"`
	Count   int    `json:"count"`
}

var journalMetaKey = []byte("m")

// NewJournal opens (or creates) a donation journal backed by db.
// The journal uses a "j/" prefix namespace to avoid collisions with
// ledger data sharing the same store.
func NewJournal(db storage.DB) (*Journal, error) {
	j := &Journal{db: storage.NewPrefixDB(db, []byte("j/"))}

	data, err := j.db.Get(journalMetaKey)
	if err != nil {
		return j, nil // Not found = fresh journal.
	}
	var meta journalMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corrupt journal meta: %w", err)
	}
	j.nextSeq = meta.NextSeq
	j.count = meta.Count
	return j, nil
}

// entryKey builds the key for the given sequence number.
func entryKey(seq uint64) []byte {
	key := make([]byte, 2+8)
	copy(key, "e/")
	binary.BigEndian.PutUint64(key[2:], ^seq)
	return key
}

// Append stores one committed record and advances the cursor.
func (j *Journal) Append(rec *donation.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := j.db.Put(entryKey(j.nextSeq), data); err != nil {
		return fmt.Errorf("put record: %w", err)
	}

	j.nextSeq++
	j.count++
	meta, err := json.Marshal(journalMeta{NextSeq: j.nextSeq, Count: j.count})
	if err != nil {
		return err
	}
	return j.db.Put(journalMetaKey, meta)
}

// PublishRecord appends the record, logging failures instead of
// propagating them: the journal is an observer, not a participant.
func (j *Journal) PublishRecord(rec *donation.Record) {
	if err := j.Append(rec); err != nil {
		logger := klog.WithComponent("rpc")
		logger.Error().Err(err).Msg("journal append failed")
	}
}

// Count returns the number of journaled records.
func (j *Journal) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Query retrieves paginated records, newest first, with total count.
func (j *Journal) Query(limit, offset int) ([]donation.Record, int, error) {
	prefix := []byte("e/")

	// Collect all matching entries. ForEach iteration order is not
	// guaranteed to be sorted (MemoryDB uses a map), so collect and sort.
	type kv struct {
		key   string
		value []byte
	}
	var all []kv

	err := j.db.ForEach(prefix, func(key, value []byte) error {
		v := make([]byte, len(value))
		copy(v, value)
		all = append(all, kv{key: string(key), value: v})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Sort by key (reverse sequence ordering built into the key).
	sort.Slice(all, func(i, k int) bool {
		return all[i].key < all[k].key
	})

	total := len(all)

	if offset >= total {
		return []donation.Record{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	page := all[offset:end]

	records := make([]donation.Record, 0, len(page))
	for _, kv := range page {
		var rec donation.Record
		if err := json.Unmarshal(kv.value, &rec); err != nil {
			continue // Skip corrupt entries.
		}
		records = append(records, rec)
	}

	return records, total, nil
}
