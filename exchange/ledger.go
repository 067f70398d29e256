package exchange

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/types"
)

/*
Ledger is the asset/currency collaborator of the engine. Implementations
are expected to be transactional: every transfer either fully succeeds or
returns an error having changed nothing, and the host rolls back all
transfers of a settlement call if the call aborts.
*/
type Ledger interface {
	// OwnerOf returns the current owner of a unique item.
	OwnerOf(ctx context.Context, ledger common.Address, tokenID types.TokenID) (common.Address, error)

	// UnitBalance returns how many units of a semi-fungible item the
	// holder currently has.
	UnitBalance(ctx context.Context, ledger common.Address, tokenID types.TokenID, holder common.Address) (uint64, error)

	// NativeBalance returns the native currency balance of the identity.
	NativeBalance(ctx context.Context, addr common.Address) (uint64, error)

	// TokenBalance returns the payment token balance of the identity.
	TokenBalance(ctx context.Context, token common.Address, addr common.Address) (uint64, error)

	// TransferAsset moves qty units of an item from one identity to
	// another. For unique items qty is always 1.
	TransferAsset(ctx context.Context, ledger common.Address, tokenID types.TokenID, kind types.AssetKind, from, to common.Address, qty uint64) error

	// PayNative pays native currency to the destination, drawing from the
	// value the caller attached to the settlement call.
	PayNative(ctx context.Context, to common.Address, amount uint64) error

	// TransferToken moves payment tokens between identities.
	TransferToken(ctx context.Context, token common.Address, from, to common.Address, amount uint64) error
}
