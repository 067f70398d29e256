package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/crypto"
	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/types/hex"
)

type (
	/*
		SaleTerms is the maker-signed payload of a listing. The signature
		itself lives on SaleOrder so that the digest is computed over the
		terms only.
	*/
	SaleTerms struct {
		_              struct{}       `cbor:",toarray"`
		AssetDigest    hex.Bytes      // digest of the Asset being sold
		Maker          common.Address // seller identity
		UnitPrice      uint64
		Quantity       uint64
		PayToken       common.Address // settlement currency; zero address means native
		RoyaltyRateBps uint64         // author royalty rate in basis points
		Kind           types.SaleKind
		StartTime      uint64 // sale window, informational (not enforced by the settler)
		EndTime        uint64
		CreatedAt      uint64
		CanceledAt     uint64 // informational, not enforced by the settler
	}

	/*
		SaleOrder is a seller's signed, reusable listing. One sale order may
		back multiple settlements until the maker invalidates it off-chain.
	*/
	SaleOrder struct {
		_ struct{} `cbor:",toarray"`
		SaleTerms
		Signature hex.Bytes // maker's recoverable signature over Digest()
	}
)

func (t *SaleTerms) IsValid() error {
	if t == nil {
		return errors.New("sale terms are nil")
	}
	if len(t.AssetDigest) != crypto.DigestLength {
		return fmt.Errorf("invalid asset digest length %d", len(t.AssetDigest))
	}
	if t.Maker == (common.Address{}) {
		return errors.New("maker is unset")
	}
	if t.Quantity == 0 {
		return errors.New("quantity must be non-zero")
	}
	if err := t.Kind.IsValid(); err != nil {
		return err
	}
	return nil
}

// IsNativePayment reports whether the listing settles in the native
// currency rather than a payment token.
func (t *SaleTerms) IsNativePayment() bool {
	return t.PayToken == (common.Address{})
}

/*
IsOpen reports whether the sale window contains the given time and the
order has not been canceled. The settler does not evaluate this - the
maker's cancellation is enforced off-chain - but callers may use it to
filter listings.
*/
func (t *SaleTerms) IsOpen(now uint64) bool {
	if t.CanceledAt != 0 && now >= t.CanceledAt {
		return false
	}
	if now < t.StartTime {
		return false
	}
	if t.EndTime != 0 && now > t.EndTime {
		return false
	}
	return true
}

// Digest returns the domain separated digest of the sale terms (the
// payload the maker signs).
func (o *SaleOrder) Digest(domain Domain) (hex.Bytes, error) {
	if o == nil {
		return nil, errors.New("sale order is nil")
	}
	res, err := domain.hashStruct(tagSaleOrder, o.SaleTerms)
	if err != nil {
		return nil, fmt.Errorf("hashing sale order: %w", err)
	}
	return res, nil
}

// Sign computes the sale order digest and sets the maker signature.
func (o *SaleOrder) Sign(domain Domain, signer crypto.Signer) error {
	if signer == nil {
		return errors.New("signer is nil")
	}
	digest, err := o.Digest(domain)
	if err != nil {
		return err
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return fmt.Errorf("signing sale order: %w", err)
	}
	o.Signature = sig
	return nil
}
