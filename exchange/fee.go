package exchange

import (
	"fmt"
	"math"
	"math/big"

	"github.com/tradeforge/settlement-go/util"
)

// FeeRateDenominator is the denominator of all fee rates: rates are
// expressed in basis points, 100 bps = 1.00%.
const FeeRateDenominator = 10_000

// FeeBreakdown is the result of splitting a settlement amount between the
// maker, the platform and the item author.
type FeeBreakdown struct {
	Net      uint64 // amount paid to the maker
	Total    uint64 // Platform + Royalty
	Platform uint64
	Royalty  uint64
}

/*
ComputeFees splits amount into net/platform/royalty parts.

Rounding is always floor (integer division), biasing fees downward; the
remainder stays in the net amount so that Net + Total == amount holds
exactly. The platform fee applies only when a payout destination is
configured and the platform rate is non-zero. The total fee must not
exceed floor(amount * capRateBps / 10000).
*/
func ComputeFees(amount, royaltyRateBps, platformRateBps, capRateBps uint64, platformPayoutSet bool) (FeeBreakdown, error) {
	royalty, ok := feeOf(amount, royaltyRateBps)
	if !ok {
		return FeeBreakdown{}, fmt.Errorf("%w: royalty fee overflows", ErrFeeLimitExceeded)
	}
	var platform uint64
	if platformPayoutSet && platformRateBps != 0 {
		if platform, ok = feeOf(amount, platformRateBps); !ok {
			return FeeBreakdown{}, fmt.Errorf("%w: platform fee overflows", ErrFeeLimitExceeded)
		}
	}
	total, ok := util.SafeAdd(royalty, platform)
	if !ok {
		return FeeBreakdown{}, fmt.Errorf("%w: total fee overflows", ErrFeeLimitExceeded)
	}
	maxFee, ok := feeOf(amount, capRateBps)
	if !ok {
		maxFee = math.MaxUint64
	}
	if total > maxFee {
		return FeeBreakdown{}, fmt.Errorf("%w: fee %d > maximum %d", ErrFeeLimitExceeded, total, maxFee)
	}
	net, ok := util.SafeSub(amount, total)
	if !ok {
		return FeeBreakdown{}, fmt.Errorf("%w: fee %d > amount %d", ErrFeeLimitExceeded, total, amount)
	}
	return FeeBreakdown{Net: net, Total: total, Platform: platform, Royalty: royalty}, nil
}

// feeOf returns floor(amount * rateBps / FeeRateDenominator). The product
// is calculated in big.Int so the intermediate cannot overflow; ok is
// false if the quotient itself does not fit into uint64.
func feeOf(amount, rateBps uint64) (uint64, bool) {
	product := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(rateBps))
	quotient := product.Div(product, big.NewInt(FeeRateDenominator))
	if !quotient.IsUint64() {
		return 0, false
	}
	return quotient.Uint64(), true
}
