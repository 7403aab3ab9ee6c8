// Package storage provides the key-value database abstractions the node
// persists through: an in-memory map for tests and tools, Badger for
// durable data, and prefix wrappers for namespacing.
package storage

// DB is the key-value store interface every component persists through.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach visits every key under prefix with copies of key and value.
	// Returning a non-nil error from fn stops iteration and surfaces it.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
