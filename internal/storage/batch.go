package storage

// Batch buffers writes and deletes for a single atomic commit.
// A batch is not safe for concurrent use.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	// Commit applies every buffered operation as one atomic unit.
	Commit() error
}

// Batcher is implemented by databases that support atomic batches.
type Batcher interface {
	NewBatch() Batch
}

// batchOp is one buffered write; a nil value means delete.
type batchOp struct {
	key   []byte
	value []byte
}
