package request

import (
	"encoding/json"
	"testing"
)

// FuzzRequestUnmarshal tests that arbitrary JSON input does not panic
// when unmarshaled into a Request struct.
func FuzzRequestUnmarshal(f *testing.F) {
	f.Add([]byte(`{"version":1,"contributor":"11111111111111111111111111111111","amount":1000000,"nonce":0,"timestamp":1700000000,"signature":"00"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"contributor":"","signature":null}`))
	f.Add([]byte(`{"amount":18446744073709551615}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var r Request
		if err := json.Unmarshal(data, &r); err != nil {
			return
		}
		// If unmarshal succeeded, these must not panic.
		r.Hash()
		r.SigningBytes()
		r.Validate()
		r.VerifySignature() // May fail but must not panic.
	})
}
