package storage

// PrefixDB scopes a DB to a fixed key prefix. Components share one
// underlying database (ledger accounts, token records, the donation
// journal, feed peers) without seeing each other's keys.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB wraps inner so every key is namespaced under prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func joinKey(prefix, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	out = append(out, prefix...)
	return append(out, key...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(joinKey(p.prefix, key))
}

func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(joinKey(p.prefix, key), value)
}

func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(joinKey(p.prefix, key))
}

func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(joinKey(p.prefix, key))
}

// ForEach iterates the namespace, handing the callback keys with the
// PrefixDB prefix stripped so callers see only their logical keyspace.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(joinKey(p.prefix, prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

// DeleteAll removes every key in this namespace from the inner DB.
func (p *PrefixDB) DeleteAll() error {
	// Collect first; deleting while iterating is undefined for some inner DBs.
	var keys [][]byte
	err := p.inner.ForEach(p.prefix, func(key, _ []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := p.inner.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the inner DB owns its lifecycle.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch whose writes land under the prefix. If the
// inner DB batches atomically, so does this; otherwise writes are
// buffered and applied individually on Commit.
func (p *PrefixDB) NewBatch() Batch {
	if batcher, ok := p.inner.(Batcher); ok {
		return &prefixBatch{inner: batcher.NewBatch(), prefix: p.prefix}
	}
	return &prefixFallbackBatch{db: p}
}

type prefixBatch struct {
	inner  Batch
	prefix []byte
}

func (pb *prefixBatch) Put(key, value []byte) error {
	return pb.inner.Put(joinKey(pb.prefix, key), value)
}

func (pb *prefixBatch) Delete(key []byte) error {
	return pb.inner.Delete(joinKey(pb.prefix, key))
}

func (pb *prefixBatch) Commit() error {
	return pb.inner.Commit()
}

// prefixFallbackBatch buffers writes for inner DBs without batch support.
// Commit applies them one by one, so it is not atomic.
type prefixFallbackBatch struct {
	db  *PrefixDB
	ops []batchOp
}

func (fb *prefixFallbackBatch) Put(key, value []byte) error {
	// Copy into a non-nil slice: nil marks deletes in batchOp.
	v := make([]byte, len(value))
	copy(v, value)
	fb.ops = append(fb.ops, batchOp{key: append([]byte(nil), key...), value: v})
	return nil
}

func (fb *prefixFallbackBatch) Delete(key []byte) error {
	fb.ops = append(fb.ops, batchOp{key: append([]byte(nil), key...)})
	return nil
}

func (fb *prefixFallbackBatch) Commit() error {
	for _, op := range fb.ops {
		if op.value == nil {
			if err := fb.db.Delete(op.key); err != nil {
				return err
			}
		} else {
			if err := fb.db.Put(op.key, op.value); err != nil {
				return err
			}
		}
	}
	return nil
}
