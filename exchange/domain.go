/*
Package exchange implements the trade settlement engine: domain-separated
hashing of order structures, the chained three-party signature verification
protocol, fee calculation and the settlement orchestrator.

Orders are negotiated and signed off-chain; the engine only verifies that a
purported match was authorized by maker, taker and a registered settlement
authority, and then executes the currency and asset transfers through the
Ledger and Registry collaborators.
*/
package exchange

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	abhash "github.com/tradeforge/settlement-go/hash"
	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/types/hex"
)

const (
	ProtocolName    = "tradeforge-exchange"
	ProtocolVersion = "1"
)

// type tags separate digests of different structures, so a signature over
// one structure can never be replayed as a signature over another
const (
	tagAsset     = "asset"
	tagSaleOrder = "saleOrd"
	tagDealOrder = "dealOrd"
	tagDealAuth  = "dealAuth"
)

/*
Domain binds the protocol name/version and the deployment (network id and
engine instance identity) into every digest the engine produces. Signatures
created for one engine instance are thereby invalid on every other instance.
*/
type Domain struct {
	_         struct{} `cbor:",toarray"`
	Name      string
	Version   string
	NetworkID types.NetworkID
	Instance  common.Address
}

// NewDomain returns the Domain of an engine deployment, using the standard
// protocol name and version.
func NewDomain(networkID types.NetworkID, instance common.Address) Domain {
	return Domain{
		Name:      ProtocolName,
		Version:   ProtocolVersion,
		NetworkID: networkID,
		Instance:  instance,
	}
}

// Digest returns the domain separator digest.
func (d Domain) Digest() (hex.Bytes, error) {
	hasher := abhash.New(sha256.New())
	hasher.Write(d)
	res, err := hasher.Sum()
	if err != nil {
		return nil, fmt.Errorf("hashing domain: %w", err)
	}
	return res, nil
}

/*
hashStruct calculates the domain separated digest of a typed payload:
SHA256 over the raw domain digest, the type tag and the CBOR encoding of
the payload. Composite fields of the payload are expected to be embedded
as their own digests so the encoding stays fixed-size.
*/
func (d Domain) hashStruct(tag string, payload any) (hex.Bytes, error) {
	domainDigest, err := d.Digest()
	if err != nil {
		return nil, err
	}
	hasher := abhash.New(sha256.New())
	hasher.WriteRaw(domainDigest)
	hasher.Write(tag)
	hasher.Write(payload)
	res, err := hasher.Sum()
	if err != nil {
		return nil, fmt.Errorf("hashing %q payload: %w", tag, err)
	}
	return res, nil
}
