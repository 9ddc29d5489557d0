package tickmath

import (
	"errors"

	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
)

const (
	// MinTick is the minimum tick that can be used on any pool.
	MinTick int = -887272
	// MaxTick is the maximum tick that can be used on any pool.
	MaxTick int = -MinTick
)

var (
	// MinSqrtRatio is the sqrt price at MinTick.
	MinSqrtRatio = ui.NewInt(4295128739)
	// MaxSqrtRatio is the sqrt price at MaxTick.
	MaxSqrtRatio = cons.MustBig("1461446703485210103287273052203988822378723970342")

	ErrTickRange      = errors.New("tickmath: tick out of range")
	ErrSqrtRatioRange = errors.New("tickmath: sqrt ratio out of range")
)

var mulConstants = []string{
	"0xfff97272373d413259a46990580e213a",
	"0xfff2e50f5f656932ef12357cf3c7fdcc",
	"0xffe5caca7e10e4e61c3624eaa0941cd0",
	"0xffcb9843d60f6159c9db58835c926644",
	"0xff973b41fa98c081472e6896dfb254c0",
	"0xff2ea16466c96a3843ec78b326b52861",
	"0xfe5dee046a99a2a811c461f1969c3053",
	"0xfcbe86c7900a88aedcffc83b479aa3a4",
	"0xf987a7253ac413176f2b074cf7815e54",
	"0xf3392b0822b70005940c7a398e4b70f3",
	"0xe7159475a2c29b7443b29c7fa6e889d9",
	"0xd097f3bdfd2022b8845ad8f792aa5825",
	"0xa9f746462d870fdf8a65dc1f90e061e5",
	"0x70d869a156d2a1b890bb3df62baf32f7",
	"0x31be135f97d08fd981231505542fcfa6",
	"0x9aa508b5b7a84e1c677de54f3e99bc9",
	"0x5d6af8dedb81196699c329225ee604",
	"0x2216e584f5fa1ea926041bedfe98",
	"0x48a170391f7dc42444e8fa2",
}

var (
	q32              = ui.NewInt(1 << 32)
	sqrtRatioOddTick = mustHex("0xfffcb933bd6fad37aa2d162d1a594001")
	one128           = mustHex("0x100000000000000000000000000000000")
	magicSqrt10001   = mustHex("0x3627A301D71055774C85")
	magicTickLow     = mustHex("0x28F6481AB7F045A5AF012A19D003AAA")
	magicTickHigh    = mustHex("0xDB2DF09E81959A81455E260799A0632F")
)

func mustHex(s string) *ui.Int {
	v, err := ui.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

// SqrtRatioAtTick returns the sqrt price as a Q64.96 for the given
// tick, computed as sqrt(1.0001)^tick. Monotonic in tick and exact
// across platforms: only integer arithmetic.
func SqrtRatioAtTick(tick int) (*ui.Int, error) {
	absTick := tick
	if tick < 0 {
		absTick = -tick
	}
	if absTick > MaxTick {
		return nil, ErrTickRange
	}

	var ratio *ui.Int
	if absTick&0x1 != 0 {
		ratio = sqrtRatioOddTick.Clone()
	} else {
		ratio = one128.Clone()
	}
	for i, mul := range mulConstants {
		if absTick&(0x2<<i) != 0 {
			ratio = new(ui.Int).Rsh(new(ui.Int).Mul(ratio, mustHex(mul)), 128)
		}
	}
	if tick > 0 {
		ratio = new(ui.Int).Div(cons.MaxUint256, ratio)
	}

	// back to Q96, rounding up
	if new(ui.Int).Mod(ratio, q32).Sign() > 0 {
		return new(ui.Int).Add(new(ui.Int).Div(ratio, q32), cons.One), nil
	}
	return new(ui.Int).Div(ratio, q32), nil
}

// TickAtSqrtRatio returns the greatest tick whose sqrt ratio is at
// most sqrtRatioX96, so that
// SqrtRatioAtTick(t) <= p < SqrtRatioAtTick(t+1).
func TickAtSqrtRatio(sqrtRatioX96 *ui.Int) (int, error) {
	if sqrtRatioX96.Cmp(MinSqrtRatio) < 0 || sqrtRatioX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtRatioRange
	}

	sqrtRatioX128 := new(ui.Int).Lsh(sqrtRatioX96, 32)
	msb := uint(sqrtRatioX128.BitLen() - 1)

	var r *ui.Int
	if msb >= 128 {
		r = new(ui.Int).Rsh(sqrtRatioX128, msb-127)
	} else {
		r = new(ui.Int).Lsh(sqrtRatioX128, 127-msb)
	}

	// log2 as a signed Q64.64, refined bit by bit
	log2 := new(ui.Int).Lsh(new(ui.Int).Sub(ui.NewInt(uint64(msb)), ui.NewInt(128)), 64)
	for i := 0; i < 14; i++ {
		r = new(ui.Int).Rsh(new(ui.Int).Mul(r, r), 127)
		f := new(ui.Int).Rsh(r, 128)
		log2 = new(ui.Int).Or(log2, new(ui.Int).Lsh(f, uint(63-i)))
		r = new(ui.Int).Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := new(ui.Int).Mul(log2, magicSqrt10001)

	tickLow := signedTick(new(ui.Int).SRsh(new(ui.Int).Sub(logSqrt10001, magicTickLow), 128))
	tickHigh := signedTick(new(ui.Int).SRsh(new(ui.Int).Add(logSqrt10001, magicTickHigh), 128))

	if tickLow == tickHigh {
		return tickLow, nil
	}
	sqrtRatio, err := SqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if sqrtRatio.Cmp(sqrtRatioX96) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}

func signedTick(v *ui.Int) int {
	return int(int64(v.Uint64()))
}
