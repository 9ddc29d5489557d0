package fullmath

import (
	cons "clmm/lib/constants"

	ui "github.com/holiman/uint256"
)

// MulDiv computes a*b/denominator with full 512-bit intermediate
// precision, rounding down. It panics if the result does not fit in
// 256 bits or if denominator is zero; callers at the operation
// boundary recover this into an abort of the whole call.
func MulDiv(a, b, denominator *ui.Int) *ui.Int {
	if denominator.IsZero() {
		panic("fullmath: division by zero")
	}
	result, overflow := new(ui.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		panic("fullmath: mulDiv overflow")
	}
	return result
}

// MulDivRoundingUp is MulDiv rounding up instead of down.
func MulDivRoundingUp(a, b, denominator *ui.Int) *ui.Int {
	if a.IsZero() || b.IsZero() {
		return ui.NewInt(0)
	}
	result := MulDiv(a, b, denominator)
	rem := new(ui.Int).MulMod(a, b, denominator)
	if !rem.IsZero() {
		if result.Eq(cons.MaxUint256) {
			panic("fullmath: mulDivRoundingUp overflow")
		}
		result.Add(result, cons.One)
	}
	return result
}

// DivRoundingUp computes a/denominator rounding up.
func DivRoundingUp(a, denominator *ui.Int) *ui.Int {
	if denominator.IsZero() {
		panic("fullmath: division by zero")
	}
	result := new(ui.Int).Div(a, denominator)
	rem := new(ui.Int).Mod(a, denominator)
	if !rem.IsZero() {
		result.Add(result, cons.One)
	}
	return result
}
