package crypto

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

/*
RecoverAddress recovers the identity that produced the signature over
the digest. Callers are expected to compare the result to the identity
claimed by the signed structure - recovery succeeding with a different
identity must be treated the same as recovery failing.
*/
func RecoverAddress(digest, sig []byte) (common.Address, error) {
	if len(digest) != DigestLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestLength, len(digest))
	}
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d bytes, got %d", SignatureLength, len(sig))
	}
	pubKey, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}
