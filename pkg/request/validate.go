package request

import (
	"errors"
	"fmt"

	"github.com/spacefund-io/spacefund/pkg/crypto"
)

// Validation errors.
var (
	ErrBadVersion      = errors.New("unsupported request version")
	ErrNoContributor   = errors.New("request has no contributor")
	ErrMissingSig      = errors.New("request missing signature")
	ErrBadSigLength    = errors.New("signature has wrong length")
	ErrNoTimestamp     = errors.New("request has no timestamp")
	ErrTimestampSkewed = errors.New("request timestamp outside accepted window")
)

// MaxClockSkew bounds how far a request timestamp may deviate from the
// node's clock, in seconds either direction.
const MaxClockSkew = 300

// Validate checks request structure. It does NOT check the signature,
// the nonce, or the contributor's balance (those require ledger state
// or key material — see VerifySignature and the donation program).
func (r *Request) Validate() error {
	if r.Version != Version {
		return fmt.Errorf("%w: %d", ErrBadVersion, r.Version)
	}
	if r.Contributor.IsZero() {
		return ErrNoContributor
	}
	if len(r.Signature) == 0 {
		return ErrMissingSig
	}
	if len(r.Signature) != crypto.SignatureSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrBadSigLength, len(r.Signature), crypto.SignatureSize)
	}
	if r.Timestamp <= 0 {
		return ErrNoTimestamp
	}
	return nil
}

// ValidateAt additionally bounds the timestamp against the node clock.
// Zero-amount requests pass: the protocol accepts them and mints zero.
func (r *Request) ValidateAt(now int64) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Timestamp < now-MaxClockSkew || r.Timestamp > now+MaxClockSkew {
		return fmt.Errorf("%w: timestamp %d, now %d", ErrTimestampSkewed, r.Timestamp, now)
	}
	return nil
}
