package sqrtmath

import (
	"testing"

	"github.com/stretchr/testify/require"
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	"clmm/lib/tickmath"
)

func ratioAt(t *testing.T, tick int) *ui.Int {
	t.Helper()
	p, err := tickmath.SqrtRatioAtTick(tick)
	require.NoError(t, err)
	return p
}

func TestAmountDeltaRoundingDirection(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)
	liquidity := ui.NewInt(1_000_000)

	up0 := Amount0Delta(lower, upper, liquidity, true)
	down0 := Amount0Delta(lower, upper, liquidity, false)
	require.True(t, down0.Cmp(up0) <= 0)
	require.True(t, new(ui.Int).Sub(up0, down0).Cmp(cons.One) <= 0)

	up1 := Amount1Delta(lower, upper, liquidity, true)
	down1 := Amount1Delta(lower, upper, liquidity, false)
	require.True(t, down1.Cmp(up1) <= 0)
	require.True(t, new(ui.Int).Sub(up1, down1).Cmp(cons.One) <= 0)
}

func TestAmountDeltaArgumentOrder(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)
	liquidity := ui.NewInt(1_000_000)

	a := Amount0Delta(lower, upper, liquidity, true)
	b := Amount0Delta(upper, lower, liquidity, true)
	require.Equal(t, 0, a.Cmp(b))
}

func TestAmountDeltaSigned(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)
	liquidity := ui.NewInt(1_000_000)

	deposit := Amount0DeltaSigned(lower, upper, liquidity)
	withdraw := Amount0DeltaSigned(lower, upper, new(ui.Int).Neg(liquidity))
	require.True(t, deposit.Sign() > 0)
	require.True(t, withdraw.Sign() < 0)
	// magnitude of what can be withdrawn never exceeds what was deposited
	require.True(t, new(ui.Int).Neg(withdraw).Cmp(deposit) <= 0)
}

func TestNextSqrtPriceFromInputDirection(t *testing.T) {
	price := ratioAt(t, 0)
	liquidity := ui.NewInt(1_000_000_000)
	amount := ui.NewInt(1000)

	down := NextSqrtPriceFromInput(price, liquidity, amount, true)
	require.Equal(t, -1, down.Cmp(price))

	up := NextSqrtPriceFromInput(price, liquidity, amount, false)
	require.Equal(t, 1, up.Cmp(price))
}

func TestNextSqrtPriceZeroAmount(t *testing.T) {
	price := ratioAt(t, 100)
	liquidity := ui.NewInt(1_000_000)
	next := NextSqrtPriceFromInput(price, liquidity, cons.Zero.Clone(), true)
	require.Equal(t, 0, next.Cmp(price))
}
