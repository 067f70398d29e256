package exchange

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/types"
)

/*
Registry is the configuration/policy collaborator of the engine. It owns
the settlement authority roster, the payment token allowlist, the platform
fee configuration and the mint-on-demand entrypoint for not yet created
items. The engine only reads it - the stored rates and rosters are mutated
by whoever operates the registry, and may change between settlement calls.
*/
type Registry interface {
	// IsSettlementAuthority reports whether the identity is a currently
	// registered settlement authority.
	IsSettlementAuthority(ctx context.Context, addr common.Address) (bool, error)

	// IsPaymentTokenAllowed reports whether the payment token is currently
	// accepted as a settlement denomination. Not consulted for native
	// currency settlements.
	IsPaymentTokenAllowed(ctx context.Context, token common.Address) (bool, error)

	// PlatformFeeRateBps returns the platform fee rate in basis points.
	PlatformFeeRateBps(ctx context.Context) (uint64, error)

	// MaxFeeRateBps returns the fee cap in basis points; the total fee of a
	// settlement must not exceed floor(amount * cap / 10000).
	MaxFeeRateBps(ctx context.Context) (uint64, error)

	// PlatformPayout returns the destination of platform fees; the zero
	// address means no destination is configured and no platform fee is
	// charged.
	PlatformPayout(ctx context.Context) (common.Address, error)

	// Mint creates qty units of the item directly to the destination. Used
	// by the settler for items sold before they exist on the item ledger.
	Mint(ctx context.Context, to common.Address, ledger common.Address, tokenID types.TokenID, qty uint64) error
}

/*
ReplayGuard is an optional collaborator recording consumed deal digests.
When attached to a settler, a deal order can be settled at most once; the
default (no guard) keeps the engine stateless and allows a sale order to
back multiple settlements distinguished only off-chain.
*/
type ReplayGuard interface {
	Seen(ctx context.Context, dealDigest []byte) (bool, error)
	Record(ctx context.Context, dealDigest []byte) error
}
