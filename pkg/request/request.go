// Package request defines the signed donation request wire type.
package request

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/spacefund-io/spacefund/pkg/crypto"
	"github.com/spacefund-io/spacefund/pkg/types"
)

// Version is the current request wire version.
const Version uint32 = 1

// Request is one donation submission. The contributor authorizes the
// exact (amount, nonce, timestamp) tuple; vault, mint, and authority
// addresses are recomputed by the node, never carried on the wire.
type Request struct {
	Version     uint32        `json:"version"`
	Contributor types.Address `json:"contributor"`
	Amount      uint64        `json:"amount"`
	Nonce       uint64        `json:"nonce"`
	Timestamp   int64         `json:"timestamp"`
	Signature   []byte        `json:"signature,omitempty"`
}

// requestJSON is the JSON representation with a hex-encoded signature.
type requestJSON struct {
	Version     uint32        `json:"version"`
	Contributor types.Address `json:"contributor"`
	Amount      uint64        `json:"amount"`
	Nonce       uint64        `json:"nonce"`
	Timestamp   int64         `json:"timestamp"`
	Signature   *string       `json:"signature,omitempty"`
}

// MarshalJSON encodes the request with a hex-encoded signature.
func (r Request) MarshalJSON() ([]byte, error) {
	j := requestJSON{
		Version:     r.Version,
		Contributor: r.Contributor,
		Amount:      r.Amount,
		Nonce:       r.Nonce,
		Timestamp:   r.Timestamp,
	}
	if r.Signature != nil {
		s := hex.EncodeToString(r.Signature)
		j.Signature = &s
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a request with a hex-encoded signature.
func (r *Request) UnmarshalJSON(data []byte) error {
	var j requestJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	r.Version = j.Version
	r.Contributor = j.Contributor
	r.Amount = j.Amount
	r.Nonce = j.Nonce
	r.Timestamp = j.Timestamp
	r.Signature = nil
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return err
		}
		r.Signature = b
	}
	return nil
}

// SigningBytes returns the canonical byte representation covered by the
// signature. Format: version(4) | contributor(32) | amount(8) | nonce(8)
// | timestamp(8), all integers little-endian.
func (r *Request) SigningBytes() []byte {
	buf := make([]byte, 0, 4+types.AddressSize+8+8+8)
	buf = binary.LittleEndian.AppendUint32(buf, r.Version)
	buf = append(buf, r.Contributor[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, r.Amount)
	buf = binary.LittleEndian.AppendUint64(buf, r.Nonce)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Timestamp))
	return buf
}

// Hash computes the request ID (BLAKE3 of the signing bytes).
func (r *Request) Hash() types.Hash {
	return crypto.Hash(r.SigningBytes())
}

// Sign fills Contributor and Signature from the key.
func (r *Request) Sign(key *crypto.PrivateKey) {
	r.Contributor = key.Address()
	r.Signature = key.Sign(r.SigningBytes())
}

// VerifySignature checks the signature against the contributor address.
func (r *Request) VerifySignature() bool {
	return crypto.VerifySignature(r.Contributor, r.SigningBytes(), r.Signature)
}
