// Package swapmath computes a single segment of a swap: how far the
// price moves within one liquidity range for a given remaining amount.
package swapmath

import (
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	fm "clmm/lib/fullmath"
	"clmm/lib/sqrtmath"
)

// ComputeSwapStep moves the price from sqrtRatioCurrentX96 toward
// sqrtRatioTargetX96, consuming at most amountRemaining (signed:
// positive = exact input, negative = exact output). feePips is the
// fee in hundredths of a bip, taken from the input side.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *ui.Int, feePips int) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *ui.Int) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	fee := ui.NewInt(uint64(feePips))
	feeDenominator := new(ui.Int).Sub(cons.E6, fee)

	if exactIn {
		amountRemainingLessFee := new(ui.Int).Div(new(ui.Int).Mul(amountRemaining, feeDenominator), cons.E6)
		if zeroForOne {
			amountIn = sqrtmath.Amount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn = sqrtmath.Amount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96.Clone()
		} else {
			sqrtRatioNextX96 = sqrtmath.NextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
		}
	} else {
		if zeroForOne {
			amountOut = sqrtmath.Amount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut = sqrtmath.Amount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if new(ui.Int).Neg(amountRemaining).Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96.Clone()
		} else {
			sqrtRatioNextX96 = sqrtmath.NextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, new(ui.Int).Neg(amountRemaining), zeroForOne)
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(sqrtRatioNextX96) == 0

	if zeroForOne {
		if !(reachedTarget && exactIn) {
			amountIn = sqrtmath.Amount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = sqrtmath.Amount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(reachedTarget && exactIn) {
			amountIn = sqrtmath.Amount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = sqrtmath.Amount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
		}
	}

	// exact output never pays out more than requested
	if !exactIn && amountOut.Cmp(new(ui.Int).Neg(amountRemaining)) > 0 {
		amountOut = new(ui.Int).Neg(amountRemaining)
	}

	if exactIn && !reachedTarget {
		// the target was not reached, so the remainder of the
		// maximum input is the fee
		feeAmount = new(ui.Int).Sub(amountRemaining, amountIn)
	} else {
		feeAmount = fm.MulDivRoundingUp(amountIn, fee, feeDenominator)
	}

	return sqrtRatioNextX96, amountIn, amountOut, feeAmount
}
