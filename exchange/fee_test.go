package exchange

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeFeesWorkedExample(t *testing.T) {
	// price 1000, royalty 5.00%, platform 2.50%, cap 10.00%
	fees, err := ComputeFees(1000, 500, 250, 1000, true)
	require.NoError(t, err)
	require.EqualValues(t, 50, fees.Royalty)
	require.EqualValues(t, 25, fees.Platform)
	require.EqualValues(t, 75, fees.Total)
	require.EqualValues(t, 925, fees.Net)
}

func TestComputeFeesFloorRounding(t *testing.T) {
	// 33 * 500 / 10000 = 1.65 -> 1
	fees, err := ComputeFees(33, 500, 0, 1000, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, fees.Royalty)
	require.EqualValues(t, 32, fees.Net)

	// amounts too small to carry a fee round to zero
	fees, err = ComputeFees(1, 500, 250, 1000, true)
	require.NoError(t, err)
	require.EqualValues(t, 0, fees.Total)
	require.EqualValues(t, 1, fees.Net)
}

func TestComputeFeesPlatformFeeConditions(t *testing.T) {
	t.Run("no payout destination", func(t *testing.T) {
		fees, err := ComputeFees(1000, 500, 250, 1000, false)
		require.NoError(t, err)
		require.EqualValues(t, 0, fees.Platform)
		require.EqualValues(t, 50, fees.Total)
	})

	t.Run("zero platform rate", func(t *testing.T) {
		fees, err := ComputeFees(1000, 500, 0, 1000, true)
		require.NoError(t, err)
		require.EqualValues(t, 0, fees.Platform)
		require.EqualValues(t, 50, fees.Total)
	})
}

func TestComputeFeesCap(t *testing.T) {
	// royalty 8% + platform 2.5% = 10.5% > cap 10%
	_, err := ComputeFees(1000, 800, 250, 1000, true)
	require.ErrorIs(t, err, ErrFeeLimitExceeded)

	// exactly at the cap is allowed
	fees, err := ComputeFees(1000, 750, 250, 1000, true)
	require.NoError(t, err)
	require.EqualValues(t, 100, fees.Total)
}

func TestComputeFeesConservation(t *testing.T) {
	// Net + Total == amount must hold exactly for everything that validates
	amounts := []uint64{0, 1, 3, 999, 10_000, 123_456_789, math.MaxUint64 / 2}
	rates := []uint64{0, 1, 250, 500, 999}
	for _, amount := range amounts {
		for _, rate := range rates {
			fees, err := ComputeFees(amount, rate, 250, 2000, true)
			require.NoError(t, err, "amount=%d rate=%d", amount, rate)
			require.Equal(t, amount, fees.Net+fees.Total, "amount=%d rate=%d", amount, rate)
			require.Equal(t, fees.Total, fees.Platform+fees.Royalty)
			require.LessOrEqual(t, fees.Net, amount)
		}
	}
}

func TestComputeFeesOverflowGuards(t *testing.T) {
	t.Run("huge amount", func(t *testing.T) {
		fees, err := ComputeFees(math.MaxUint64, 500, 250, 1000, true)
		require.NoError(t, err)
		require.Equal(t, math.MaxUint64-fees.Total, fees.Net)
	})

	t.Run("absurd royalty rate", func(t *testing.T) {
		// quotient no longer fits uint64
		_, err := ComputeFees(math.MaxUint64, math.MaxUint64, 0, 1000, true)
		require.ErrorIs(t, err, ErrFeeLimitExceeded)
	})

	t.Run("rate above 100 percent", func(t *testing.T) {
		// 150% royalty exceeds any sane cap
		_, err := ComputeFees(1000, 15_000, 0, 10_000, true)
		require.ErrorIs(t, err, ErrFeeLimitExceeded)
	})
}
