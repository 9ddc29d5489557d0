package swapmath

import (
	"testing"

	"github.com/stretchr/testify/require"
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	"clmm/lib/tickmath"
)

func TestComputeSwapStepExactInWithinSegment(t *testing.T) {
	current, err := tickmath.SqrtRatioAtTick(0)
	require.NoError(t, err)
	target, err := tickmath.SqrtRatioAtTick(-600)
	require.NoError(t, err)

	liquidity := ui.NewInt(1_000_000)
	amountRemaining := ui.NewInt(1000)

	next, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, cons.FeeMedium)

	// zeroForOne: price moves down but not past the target
	require.Equal(t, -1, next.Cmp(current))
	require.True(t, next.Cmp(target) >= 0)

	// all of the input is consumed, fee included
	consumed := new(ui.Int).Add(amountIn, feeAmount)
	require.Equal(t, 0, consumed.Cmp(amountRemaining))

	// fee is about 0.30% of the input
	require.True(t, feeAmount.Cmp(ui.NewInt(2)) >= 0)
	require.True(t, feeAmount.Cmp(ui.NewInt(5)) <= 0)

	// output is less than input for a price near 1.0
	require.Equal(t, -1, amountOut.Cmp(amountRemaining))
	require.True(t, amountOut.Sign() > 0)
}

func TestComputeSwapStepReachesTarget(t *testing.T) {
	current, err := tickmath.SqrtRatioAtTick(0)
	require.NoError(t, err)
	target, err := tickmath.SqrtRatioAtTick(-60)
	require.NoError(t, err)

	liquidity := ui.NewInt(1_000)
	amountRemaining := ui.NewInt(1_000_000)

	next, amountIn, _, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, cons.FeeLow)

	// thin liquidity: the segment is exhausted before the input is
	require.Equal(t, 0, next.Cmp(target))
	consumed := new(ui.Int).Add(amountIn, feeAmount)
	require.Equal(t, -1, consumed.Cmp(amountRemaining))
}

func TestComputeSwapStepExactOut(t *testing.T) {
	current, err := tickmath.SqrtRatioAtTick(0)
	require.NoError(t, err)
	target, err := tickmath.SqrtRatioAtTick(-600)
	require.NoError(t, err)

	liquidity := ui.NewInt(1_000_000)
	requested := ui.NewInt(500)
	amountRemaining := new(ui.Int).Neg(requested)

	next, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, cons.FeeMedium)

	require.True(t, next.Cmp(target) >= 0)
	require.True(t, amountOut.Cmp(requested) <= 0)
	require.True(t, amountIn.Sign() > 0)
	require.True(t, feeAmount.Sign() > 0)
}

func TestComputeSwapStepZeroLiquidity(t *testing.T) {
	current, err := tickmath.SqrtRatioAtTick(0)
	require.NoError(t, err)
	target, err := tickmath.SqrtRatioAtTick(-60)
	require.NoError(t, err)

	next, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, cons.Zero.Clone(), ui.NewInt(1000), cons.FeeMedium)

	// nothing to consume: the price snaps to the target for free
	require.Equal(t, 0, next.Cmp(target))
	require.True(t, amountIn.IsZero())
	require.True(t, amountOut.IsZero())
	require.True(t, feeAmount.IsZero())
}
