package constants

import (
	"math/big"

	ui "github.com/holiman/uint256"
)

var (
	Zero          = new(ui.Int)
	One           = new(ui.Int).SetOne()
	MaxUint256, _ = ui.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	// used in fee growth and liquidity amount math
	Q128, _ = ui.FromHex("0x100000000000000000000000000000000")
	Q96     = new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(96))
	Q192    = new(ui.Int).Exp(Q96, ui.NewInt(2))
	E6      = new(ui.Int).Exp(ui.NewInt(10), ui.NewInt(6))
)

// Fee tiers in hundredths of a bip (pips). Only these may be used to
// create a pool; the tick spacing is derived from the tier.
const (
	FeeLow    = 500
	FeeMedium = 3000
	FeeHigh   = 10000
)

var TickSpacings = map[int]int{
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// MustBig parses a base-10 integer into a uint256 and panics on
// failure. Intended for fixtures and wiring code, not request paths.
func MustBig(s string) *ui.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("constants: bad integer literal " + s)
	}
	v, overflow := ui.FromBig(b)
	if overflow {
		panic("constants: integer literal overflows uint256 " + s)
	}
	return v
}
