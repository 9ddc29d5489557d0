// Package sqrtmath converts between liquidity, sqrt prices and token
// amounts. Rounding direction is always explicit: amounts the pool is
// owed round up, amounts the pool pays out round down, so rounding
// dust accumulates in favor of the pool.
package sqrtmath

import (
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	fm "clmm/lib/fullmath"
)

var MaxUint160 = new(ui.Int).Sub(new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(160)), cons.One)

func multiplyIn256(x, y *ui.Int) *ui.Int {
	product := new(ui.Int).Mul(x, y)
	return new(ui.Int).And(product, cons.MaxUint256)
}

func addIn256(x, y *ui.Int) *ui.Int {
	sum := new(ui.Int).Add(x, y)
	return new(ui.Int).And(sum, cons.MaxUint256)
}

// Amount0Delta returns the amount0 required to cover a position of
// the given liquidity between the two sqrt ratios.
func Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int, roundUp bool) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	numerator1 := new(ui.Int).Lsh(liquidity, 96)
	numerator2 := new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return fm.DivRoundingUp(fm.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96), sqrtRatioAX96)
	}
	res := fm.MulDiv(numerator1, numerator2, sqrtRatioBX96)
	res.Div(res, sqrtRatioAX96)
	return res
}

// Amount1Delta returns the amount1 required to cover a position of
// the given liquidity between the two sqrt ratios.
func Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int, roundUp bool) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return fm.MulDivRoundingUp(liquidity, diff, cons.Q96)
	}
	return fm.MulDiv(liquidity, diff, cons.Q96)
}

// Amount0DeltaSigned treats liquidity as a signed two's complement
// value: deposits (positive) round up, withdrawals (negative) round
// down, and the result carries the sign of the liquidity delta.
func Amount0DeltaSigned(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int) *ui.Int {
	if liquidity.Sign() < 0 {
		return new(ui.Int).Neg(Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, new(ui.Int).Neg(liquidity), false))
	}
	return Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
}

// Amount1DeltaSigned is the amount1 analogue of Amount0DeltaSigned.
func Amount1DeltaSigned(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int) *ui.Int {
	if liquidity.Sign() < 0 {
		return new(ui.Int).Neg(Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, new(ui.Int).Neg(liquidity), false))
	}
	return Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
}

// NextSqrtPriceFromInput returns the price after swapping amountIn of
// the input asset, rounding in the pool's favor.
func NextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *ui.Int, zeroForOne bool) *ui.Int {
	if zeroForOne {
		return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// NextSqrtPriceFromOutput returns the price after paying out amountOut
// of the output asset, rounding in the pool's favor.
func NextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *ui.Int, zeroForOne bool) *ui.Int {
	if zeroForOne {
		return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

func nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *ui.Int, add bool) *ui.Int {
	if amount.IsZero() {
		return sqrtPX96.Clone()
	}

	numerator1 := new(ui.Int).Lsh(liquidity, 96)
	if add {
		product := multiplyIn256(amount, sqrtPX96)
		if new(ui.Int).Div(product, amount).Eq(sqrtPX96) {
			denominator := addIn256(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				return fm.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		return fm.DivRoundingUp(numerator1, new(ui.Int).Add(new(ui.Int).Div(numerator1, sqrtPX96), amount))
	}

	product := multiplyIn256(amount, sqrtPX96)
	denominator := new(ui.Int).Sub(numerator1, product)
	return fm.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

func nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *ui.Int, add bool) *ui.Int {
	if add {
		var quotient *ui.Int
		if amount.Cmp(MaxUint160) <= 0 {
			quotient = new(ui.Int).Div(new(ui.Int).Lsh(amount, 96), liquidity)
		} else {
			quotient = new(ui.Int).Div(new(ui.Int).Mul(amount, cons.Q96), liquidity)
		}
		return new(ui.Int).Add(sqrtPX96, quotient)
	}

	quotient := fm.MulDivRoundingUp(amount, cons.Q96, liquidity)
	return new(ui.Int).Sub(sqrtPX96, quotient)
}
