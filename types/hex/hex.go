/*
Package hex provides a byte slice type which marshals to/from
hex encoded string (with "0x" prefix) in text based encodings.
*/
package hex

import (
	"encoding/hex"
	"fmt"
)

type Bytes []byte

func Encode(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, 2+hex.EncodedLen(len(src)))
	copy(dst, "0x")
	hex.Encode(dst[2:], src)
	return dst
}

func Decode(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	if len(src) < 2 || src[0] != '0' || (src[1] != 'x' && src[1] != 'X') {
		return nil, fmt.Errorf("hex string without 0x prefix: %.10q", src)
	}
	dst := make([]byte, hex.DecodedLen(len(src)-2))
	if _, err := hex.Decode(dst, src[2:]); err != nil {
		return nil, err
	}
	return dst, nil
}

func (b Bytes) MarshalText() ([]byte, error) {
	return Encode(b), nil
}

func (b *Bytes) UnmarshalText(src []byte) error {
	res, err := Decode(src)
	if err == nil {
		*b = res
	}
	return err
}

func (b Bytes) String() string {
	return string(Encode(b))
}
