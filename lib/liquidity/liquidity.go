// Package liquidity sizes positions: given token amounts and a price
// range, how much liquidity do they buy. The inverse of the deposit
// math in sqrtmath.
package liquidity

import (
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	fm "clmm/lib/fullmath"
)

// ForAmount0 returns the liquidity amount0 buys across [a, b].
func ForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := fm.MulDiv(sqrtRatioAX96, sqrtRatioBX96, cons.Q96)
	return fm.MulDiv(amount0, intermediate, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// ForAmount1 returns the liquidity amount1 buys across [a, b].
func ForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	return fm.MulDiv(amount1, cons.Q96, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// ForAmounts returns the largest liquidity both amounts can cover at
// the current price. Above the range only amount1 matters, below it
// only amount0; inside, the binding side wins.
func ForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0 {
		return ForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	}
	if sqrtRatioX96.Cmp(sqrtRatioBX96) < 0 {
		liquidity0 := ForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		liquidity1 := ForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	}
	return ForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
}
