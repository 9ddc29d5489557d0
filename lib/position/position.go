// Package position tracks per-(owner, range) liquidity and the fees
// it has earned since its last sync.
package position

import (
	"errors"
	"fmt"

	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	"clmm/lib/fullmath"
)

var ErrLiquidityUnderflow = errors.New("position: burn exceeds position liquidity")

type Info struct {
	Owner                    string  `json:"owner"`
	TickLower                int     `json:"tickLower"`
	TickUpper                int     `json:"tickUpper"`
	Liquidity                *ui.Int `json:"liquidity"`
	FeeGrowthInside0LastX128 *ui.Int `json:"feeGrowthInside0LastX128"`
	FeeGrowthInside1LastX128 *ui.Int `json:"feeGrowthInside1LastX128"`
	TokensOwed0              *ui.Int `json:"tokensOwed0"`
	TokensOwed1              *ui.Int `json:"tokensOwed1"`
}

// Key is the composite map key for a position.
func Key(owner string, tickLower, tickUpper int) string {
	return fmt.Sprintf("%s:%d:%d", owner, tickLower, tickUpper)
}

func New(owner string, tickLower, tickUpper int) *Info {
	return &Info{
		Owner:                    owner,
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		Liquidity:                new(ui.Int),
		FeeGrowthInside0LastX128: new(ui.Int),
		FeeGrowthInside1LastX128: new(ui.Int),
		TokensOwed0:              new(ui.Int),
		TokensOwed1:              new(ui.Int),
	}
}

func (i *Info) Clone() *Info {
	return &Info{
		Owner:                    i.Owner,
		TickLower:                i.TickLower,
		TickUpper:                i.TickUpper,
		Liquidity:                i.Liquidity.Clone(),
		FeeGrowthInside0LastX128: i.FeeGrowthInside0LastX128.Clone(),
		FeeGrowthInside1LastX128: i.FeeGrowthInside1LastX128.Clone(),
		TokensOwed0:              i.TokensOwed0.Clone(),
		TokensOwed1:              i.TokensOwed1.Clone(),
	}
}

// Update applies a signed liquidity delta and syncs the fee snapshot,
// crediting accrued fees to the owed balances. The fee delta wraps on
// subtraction: growth counters only ever move forward.
func (i *Info) Update(liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128 *ui.Int) error {
	liquidityNext := new(ui.Int).Add(i.Liquidity, liquidityDelta)
	if liquidityNext.Sign() < 0 {
		return ErrLiquidityUnderflow
	}

	delta0 := new(ui.Int).Sub(feeGrowthInside0X128, i.FeeGrowthInside0LastX128)
	delta1 := new(ui.Int).Sub(feeGrowthInside1X128, i.FeeGrowthInside1LastX128)
	owed0 := fullmath.MulDiv(delta0, i.Liquidity, cons.Q128)
	owed1 := fullmath.MulDiv(delta1, i.Liquidity, cons.Q128)

	i.Liquidity = liquidityNext
	i.FeeGrowthInside0LastX128 = feeGrowthInside0X128.Clone()
	i.FeeGrowthInside1LastX128 = feeGrowthInside1X128.Clone()
	i.TokensOwed0.Add(i.TokensOwed0, owed0)
	i.TokensOwed1.Add(i.TokensOwed1, owed1)
	return nil
}

// Collect removes up to the requested amounts from the owed balances
// and returns what was actually taken. Requesting more than is owed
// is not an error; the payout caps at the owed amount.
func (i *Info) Collect(requested0, requested1 *ui.Int) (amount0, amount1 *ui.Int) {
	amount0 = requested0.Clone()
	if amount0.Cmp(i.TokensOwed0) > 0 {
		amount0 = i.TokensOwed0.Clone()
	}
	amount1 = requested1.Clone()
	if amount1.Cmp(i.TokensOwed1) > 0 {
		amount1 = i.TokensOwed1.Clone()
	}
	i.TokensOwed0.Sub(i.TokensOwed0, amount0)
	i.TokensOwed1.Sub(i.TokensOwed1, amount1)
	return amount0, amount1
}

// Empty reports whether the position holds no liquidity and no
// uncollected fees, and can therefore be forgotten.
func (i *Info) Empty() bool {
	return i.Liquidity.IsZero() && i.TokensOwed0.IsZero() && i.TokensOwed1.IsZero()
}
