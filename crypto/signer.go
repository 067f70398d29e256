/*
Package crypto provides digest signing and signer identity recovery for
the settlement engine.

The scheme is recoverable secp256k1: a signature over a 32 byte digest
carries enough information to recover the public key of the signer, so
orders do not need to ship public keys - the engine recovers the signing
identity and compares it to the identity claimed by the order.
*/
package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// SignatureLength is the length of a recoverable signature,
	// [R || S || V] where V is the recovery id (0 or 1).
	SignatureLength = 65

	// DigestLength is the length of the digests being signed.
	DigestLength = 32
)

var ErrInvalidDigestLength = errors.New("invalid digest length")

// Signer signs 32 byte digests with a fixed identity.
type Signer interface {
	// SignDigest signs the digest, returning a recoverable signature.
	SignDigest(digest []byte) ([]byte, error)
	// Address returns the identity signatures recover to.
	Address() common.Address
}

// InMemorySecp256k1Signer is a Signer holding the private key in memory.
type InMemorySecp256k1Signer struct {
	key *ecdsa.PrivateKey
}

// NewInMemorySecp256k1Signer generates a new key pair and returns a signer using it.
func NewInMemorySecp256k1Signer() (*InMemorySecp256k1Signer, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return &InMemorySecp256k1Signer{key: key}, nil
}

// NewInMemorySecp256k1SignerFromKey returns a signer using the given private key.
func NewInMemorySecp256k1SignerFromKey(key *ecdsa.PrivateKey) (*InMemorySecp256k1Signer, error) {
	if key == nil {
		return nil, errors.New("private key is nil")
	}
	return &InMemorySecp256k1Signer{key: key}, nil
}

func (s *InMemorySecp256k1Signer) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigestLength, DigestLength, len(digest))
	}
	sig, err := ethcrypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("signing digest: %w", err)
	}
	return sig, nil
}

func (s *InMemorySecp256k1Signer) Address() common.Address {
	return ethcrypto.PubkeyToAddress(s.key.PublicKey)
}
