package position

import (
	"testing"

	"github.com/stretchr/testify/require"
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
)

func TestKey(t *testing.T) {
	require.Equal(t, "alice:-600:600", Key("alice", -600, 600))
}

func TestUpdateAccruesFees(t *testing.T) {
	pos := New("alice", -600, 600)
	liquidity := ui.NewInt(1_000_000)
	require.NoError(t, pos.Update(liquidity, new(ui.Int), new(ui.Int)))

	// 3 units of fee spread over 1e6 liquidity
	growth := new(ui.Int).Div(new(ui.Int).Mul(ui.NewInt(3), cons.Q128), liquidity)
	require.NoError(t, pos.Update(new(ui.Int), growth, new(ui.Int)))

	require.Equal(t, "2", pos.TokensOwed0.Dec()) // floor of just under 3
	require.True(t, pos.TokensOwed1.IsZero())
	require.Equal(t, 0, pos.FeeGrowthInside0LastX128.Cmp(growth))

	// a second sync at the same growth credits nothing more
	require.NoError(t, pos.Update(new(ui.Int), growth, new(ui.Int)))
	require.Equal(t, "2", pos.TokensOwed0.Dec())
}

func TestUpdateUnderflow(t *testing.T) {
	pos := New("alice", -600, 600)
	require.NoError(t, pos.Update(ui.NewInt(100), new(ui.Int), new(ui.Int)))

	delta := new(ui.Int).Neg(ui.NewInt(101))
	err := pos.Update(delta, new(ui.Int), new(ui.Int))
	require.ErrorIs(t, err, ErrLiquidityUnderflow)
	require.Equal(t, "100", pos.Liquidity.Dec())
}

func TestCollectCaps(t *testing.T) {
	pos := New("alice", -600, 600)
	pos.TokensOwed0 = ui.NewInt(40)
	pos.TokensOwed1 = ui.NewInt(7)

	got0, got1 := pos.Collect(ui.NewInt(25), cons.MaxUint256)
	require.Equal(t, "25", got0.Dec())
	require.Equal(t, "7", got1.Dec())
	require.Equal(t, "15", pos.TokensOwed0.Dec())
	require.True(t, pos.TokensOwed1.IsZero())
	require.False(t, pos.Empty())

	got0, _ = pos.Collect(cons.MaxUint256, cons.MaxUint256)
	require.Equal(t, "15", got0.Dec())
	require.True(t, pos.Empty())
}

func TestCloneIsDeep(t *testing.T) {
	pos := New("alice", -600, 600)
	pos.TokensOwed0 = ui.NewInt(5)
	cp := pos.Clone()
	cp.TokensOwed0.Add(cp.TokensOwed0, ui.NewInt(1))
	cp.Liquidity.Add(cp.Liquidity, ui.NewInt(1))
	require.Equal(t, "5", pos.TokensOwed0.Dec())
	require.True(t, pos.Liquidity.IsZero())
}
