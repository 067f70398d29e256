package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/crypto"
	"github.com/tradeforge/settlement-go/types/hex"
)

type (
	/*
		DealTerms is the taker-signed payload: acceptance of specific deal
		terms derived from a sale order. The sale order is referenced by
		digest, chaining the taker's commitment to the maker's listing.
	*/
	DealTerms struct {
		_               struct{}       `cbor:",toarray"`
		SaleOrderDigest hex.Bytes      // digest of the sale order being accepted
		Taker           common.Address // buyer identity
		Author          common.Address // royalty recipient
		Amount          uint64         // agreed settlement amount
		Reward          uint64         // reward/rebate amount, carried but not settled by the engine
		Salt            uint64         // distinguishes otherwise identical commitments
		Minted          bool           // whether the item already exists on the item ledger
		Deadline        uint64         // settlement must happen before this time
		CreatedAt       uint64
	}

	/*
		DealOrder is a taker commitment plus the authorization produced by a
		registered settlement authority. The authorization signature is
		computed over a digest embedding the raw taker signature bytes, so
		it cannot be replayed against a different taker signature for the
		same commitment content.
	*/
	DealOrder struct {
		_ struct{} `cbor:",toarray"`
		DealTerms
		TakerSignature hex.Bytes // taker's recoverable signature over Digest()
		AuthSignature  hex.Bytes // authority's recoverable signature over AuthDigest()
	}

	// dealAuthSigData is the payload of the authorization signature:
	// the deal terms plus the exact taker signature being authorized.
	dealAuthSigData struct {
		_ struct{} `cbor:",toarray"`
		DealTerms
		TakerSignature hex.Bytes
	}
)

func (t *DealTerms) IsValid() error {
	if t == nil {
		return errors.New("deal terms are nil")
	}
	if len(t.SaleOrderDigest) != crypto.DigestLength {
		return fmt.Errorf("invalid sale order digest length %d", len(t.SaleOrderDigest))
	}
	if t.Taker == (common.Address{}) {
		return errors.New("taker is unset")
	}
	return nil
}

// Digest returns the domain separated digest of the deal terms (the
// payload the taker signs).
func (d *DealOrder) Digest(domain Domain) (hex.Bytes, error) {
	if d == nil {
		return nil, errors.New("deal order is nil")
	}
	res, err := domain.hashStruct(tagDealOrder, d.DealTerms)
	if err != nil {
		return nil, fmt.Errorf("hashing deal order: %w", err)
	}
	return res, nil
}

// AuthDigest returns the digest the settlement authority signs: the deal
// terms together with the raw taker signature bytes.
func (d *DealOrder) AuthDigest(domain Domain) (hex.Bytes, error) {
	if d == nil {
		return nil, errors.New("deal order is nil")
	}
	if len(d.TakerSignature) == 0 {
		return nil, errors.New("taker signature is unset")
	}
	res, err := domain.hashStruct(tagDealAuth, dealAuthSigData{DealTerms: d.DealTerms, TakerSignature: d.TakerSignature})
	if err != nil {
		return nil, fmt.Errorf("hashing deal authorization: %w", err)
	}
	return res, nil
}

// SignByTaker computes the deal digest and sets the taker signature.
func (d *DealOrder) SignByTaker(domain Domain, signer crypto.Signer) error {
	if signer == nil {
		return errors.New("signer is nil")
	}
	digest, err := d.Digest(domain)
	if err != nil {
		return err
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return fmt.Errorf("signing deal order: %w", err)
	}
	d.TakerSignature = sig
	return nil
}

// SignByAuthority computes the authorization digest over the already set
// taker signature and sets the authorization signature.
func (d *DealOrder) SignByAuthority(domain Domain, signer crypto.Signer) error {
	if signer == nil {
		return errors.New("signer is nil")
	}
	digest, err := d.AuthDigest(domain)
	if err != nil {
		return err
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return fmt.Errorf("signing deal authorization: %w", err)
	}
	d.AuthSignature = sig
	return nil
}
