/*
Package cbor provides CBOR encoding/decoding functions.

It's a thin wrapper for github.com/fxamacker/cbor/v2, the reason for
having it is to make sure we use the same encoding options everywhere.
Deterministic encoding matters here because the encoded structures are
hashed for signing - the same field values must always produce the same
bytes.
*/
package cbor

import (
	"bytes"
	"errors"

	"github.com/fxamacker/cbor/v2"

	"github.com/tradeforge/settlement-go/types/hex"
)

// Raw is already encoded CBOR, copied to the output as-is.
type Raw []byte

var (
	encMode cbor.EncMode

	cborNil = []byte{0xf6}
)

/*
Set Core Deterministic Encoding as standard. See <https://www.rfc-editor.org/rfc/rfc8949.html#name-deterministically-encoded-c>.
*/
func cborEncoder() (_ cbor.EncMode, err error) {
	if encMode != nil {
		return encMode, nil
	}
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		return nil, err
	}
	return encMode, nil
}

func Marshal(v any) ([]byte, error) {
	enc, err := cborEncoder()
	if err != nil {
		return nil, err
	}
	return enc.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// MarshalCBOR returns r or CBOR nil if r is empty.
func (r Raw) MarshalCBOR() ([]byte, error) {
	if len(r) == 0 {
		return cborNil, nil
	}
	return r, nil
}

// UnmarshalCBOR copies data into r unless it's CBOR "nil marker" - in that
// case r is set to empty slice.
func (r *Raw) UnmarshalCBOR(data []byte) error {
	if r == nil {
		return errors.New("UnmarshalCBOR on nil pointer")
	}
	if bytes.Equal(data, cborNil) {
		*r = (*r)[0:0]
	} else {
		*r = append((*r)[0:0], data...)
	}
	return nil
}

func (r Raw) MarshalText() ([]byte, error) {
	return hex.Encode(r), nil
}

func (r *Raw) UnmarshalText(src []byte) error {
	res, err := hex.Decode(src)
	if err == nil {
		*r = res
	}
	return err
}
