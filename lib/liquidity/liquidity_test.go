package liquidity

import (
	"testing"

	"github.com/stretchr/testify/require"
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	"clmm/lib/sqrtmath"
	"clmm/lib/tickmath"
)

func ratioAt(t *testing.T, tick int) *ui.Int {
	t.Helper()
	p, err := tickmath.SqrtRatioAtTick(tick)
	require.NoError(t, err)
	return p
}

func TestForAmountsInRange(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)
	amount0 := ui.NewInt(30_000)
	amount1 := ui.NewInt(30_000)

	l := ForAmounts(cons.Q96, lower, upper, amount0, amount1)
	require.True(t, l.Sign() > 0)

	// the sized position never requires more than the given amounts
	need0 := sqrtmath.Amount0Delta(cons.Q96, upper, l, true)
	need1 := sqrtmath.Amount1Delta(lower, cons.Q96, l, true)
	require.True(t, need0.Cmp(amount0) <= 0)
	require.True(t, need1.Cmp(amount1) <= 0)
}

func TestForAmountsBindingSide(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)

	// almost no amount1: it is the binding side
	scarce := ForAmounts(cons.Q96, lower, upper, ui.NewInt(1_000_000), ui.NewInt(10))
	plenty := ForAmounts(cons.Q96, lower, upper, ui.NewInt(1_000_000), ui.NewInt(1_000_000))
	require.Equal(t, -1, scarce.Cmp(plenty))
}

func TestForAmountsOutOfRange(t *testing.T) {
	lower := ratioAt(t, 600)
	upper := ratioAt(t, 1200)

	// price below the range: only amount0 buys liquidity
	l := ForAmounts(cons.Q96, lower, upper, ui.NewInt(10_000), new(ui.Int))
	require.True(t, l.Sign() > 0)
	require.Equal(t, 0, l.Cmp(ForAmount0(lower, upper, ui.NewInt(10_000))))

	// price above the range: only amount1
	above := ratioAt(t, 2400)
	l = ForAmounts(above, lower, upper, new(ui.Int), ui.NewInt(10_000))
	require.Equal(t, 0, l.Cmp(ForAmount1(lower, upper, ui.NewInt(10_000))))
}

func TestForAmountsArgumentOrder(t *testing.T) {
	lower := ratioAt(t, -600)
	upper := ratioAt(t, 600)
	a := ForAmounts(cons.Q96, lower, upper, ui.NewInt(5000), ui.NewInt(5000))
	b := ForAmounts(cons.Q96, upper, lower, ui.NewInt(5000), ui.NewInt(5000))
	require.Equal(t, 0, a.Cmp(b))
}
