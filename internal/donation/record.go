package donation

import (
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Record is the observational log line emitted once per committed
// donation. It is never part of ledger state: indexers consume it, the
// protocol does not depend on it.
type Record struct {
	Donor     types.Address `json:"donor"`
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
	Reward    uint64        `json:"tokens"`
}

// Sink receives records after commit. Sink failures never affect
// ledger state — dispatch happens outside the transaction.
type Sink interface {
	PublishRecord(rec *Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec *Record)

// PublishRecord calls the function.
func (f SinkFunc) PublishRecord(rec *Record) {
	f(rec)
}
