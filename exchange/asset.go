package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/types/hex"
)

/*
Asset is the immutable identity of a tradable item. Sale orders reference
an asset by its digest rather than by value, which binds a listing to one
exact item and keeps the sale order digest fixed-size.
*/
type Asset struct {
	_         struct{}        `cbor:",toarray"`
	Ledger    common.Address  // the item ledger (collection) the item lives on
	TokenID   types.TokenID   // item identifier within the ledger
	Kind      types.AssetKind // unique or semi-fungible
	NetworkID types.NetworkID
	Salt      uint64 // uniqueness salt, distinguishes otherwise identical descriptors
}

func (a *Asset) IsValid() error {
	if a == nil {
		return errors.New("asset is nil")
	}
	if a.Ledger == (common.Address{}) {
		return errors.New("asset ledger is unset")
	}
	if err := a.Kind.IsValid(); err != nil {
		return err
	}
	return nil
}

// Digest returns the domain separated digest of the asset descriptor.
func (a *Asset) Digest(domain Domain) (hex.Bytes, error) {
	if a == nil {
		return nil, errors.New("asset is nil")
	}
	res, err := domain.hashStruct(tagAsset, a)
	if err != nil {
		return nil, fmt.Errorf("hashing asset: %w", err)
	}
	return res, nil
}
