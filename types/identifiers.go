package types

import (
	"encoding/binary"
	"fmt"
)

const (
	NetworkMainNet NetworkID = 1
	NetworkTestNet NetworkID = 2
	NetworkLocal   NetworkID = 3
)

const NetworkIDLength = 2

type (
	// NetworkID identifies the network/deployment the engine instance
	// serves. It is bound into every typed data digest so that signatures
	// produced for one deployment cannot be replayed against another.
	NetworkID uint16

	// TokenID identifies a single item within an item ledger.
	TokenID uint64
)

// AssetKind tells whether an item is unique (single owner, single unit)
// or semi-fungible (many identical units with per-holder balances).
type AssetKind uint8

const (
	AssetUnique AssetKind = iota + 1
	AssetSemiFungible
)

// SaleKind selects the settlement policy of a listing: market sales are
// settled by the taker themselves, auction sales only by a registered
// settlement authority.
type SaleKind uint8

const (
	SaleKindMarket SaleKind = iota + 1
	SaleKindAuction
)

func (nid NetworkID) Bytes() []byte {
	b := make([]byte, NetworkIDLength)
	binary.BigEndian.PutUint16(b, uint16(nid))
	return b
}

func (tid TokenID) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(tid))
	return b
}

func (tid TokenID) String() string {
	return fmt.Sprintf("%d", uint64(tid))
}

func (k AssetKind) IsValid() error {
	if k != AssetUnique && k != AssetSemiFungible {
		return fmt.Errorf("invalid asset kind %d", k)
	}
	return nil
}

func (k AssetKind) String() string {
	switch k {
	case AssetUnique:
		return "unique"
	case AssetSemiFungible:
		return "semi-fungible"
	default:
		return fmt.Sprintf("assetKind(%d)", uint8(k))
	}
}

func (k SaleKind) IsValid() error {
	if k != SaleKindMarket && k != SaleKindAuction {
		return fmt.Errorf("invalid sale kind %d", k)
	}
	return nil
}

func (k SaleKind) String() string {
	switch k {
	case SaleKindMarket:
		return "market"
	case SaleKindAuction:
		return "auction"
	default:
		return fmt.Sprintf("saleKind(%d)", uint8(k))
	}
}
