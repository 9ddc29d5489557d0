// Package tickdata keeps the per-pool sparse tick registry: boundary
// liquidity and the fee-growth checkpoints on the far side of each
// initialized tick.
package tickdata

import (
	"errors"
	"sort"

	ui "github.com/holiman/uint256"

	"clmm/lib/tickmath"
)

var ErrTickUnderflow = errors.New("tickdata: tick liquidity underflow")

type Tick struct {
	Index          int     `json:"index"`
	LiquidityGross *ui.Int `json:"liquidityGross"`
	// LiquidityNet is signed (two's complement): added to the pool's
	// active liquidity when the tick is crossed left to right.
	LiquidityNet          *ui.Int `json:"liquidityNet"`
	FeeGrowthOutside0X128 *ui.Int `json:"feeGrowthOutside0X128"`
	FeeGrowthOutside1X128 *ui.Int `json:"feeGrowthOutside1X128"`
}

func (t *Tick) Clone() *Tick {
	return &Tick{
		Index:                 t.Index,
		LiquidityGross:        t.LiquidityGross.Clone(),
		LiquidityNet:          t.LiquidityNet.Clone(),
		FeeGrowthOutside0X128: t.FeeGrowthOutside0X128.Clone(),
		FeeGrowthOutside1X128: t.FeeGrowthOutside1X128.Clone(),
	}
}

// TickData is an ordered sparse set of initialized ticks.
type TickData struct {
	Ticks       []*Tick `json:"ticks"`
	TickSpacing int     `json:"tickSpacing"`
}

func New(tickSpacing int) *TickData {
	return &TickData{TickSpacing: tickSpacing}
}

func (t *TickData) Clone() *TickData {
	ticks := make([]*Tick, len(t.Ticks))
	for i, tk := range t.Ticks {
		ticks[i] = tk.Clone()
	}
	return &TickData{Ticks: ticks, TickSpacing: t.TickSpacing}
}

// search returns the position of index in the sorted slice, or the
// position it would be inserted at.
func (t *TickData) search(index int) int {
	return sort.Search(len(t.Ticks), func(i int) bool {
		return t.Ticks[i].Index >= index
	})
}

func (t *TickData) Get(index int) (*Tick, bool) {
	i := t.search(index)
	if i < len(t.Ticks) && t.Ticks[i].Index == index {
		return t.Ticks[i], true
	}
	return nil, false
}

// Update applies a signed liquidity delta to a boundary tick, creating
// it on first reference. flipped reports that the tick went from empty
// to initialized or back; the caller clears a tick it emptied once it
// is done reading it. A tick initialized below the current tick starts
// with the full global fee growth recorded as "outside", so
// fee-growth-inside math stays consistent regardless of when the tick
// was created.
func (t *TickData) Update(index, tickCurrent int, liquidityDelta, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int, upper bool) (flipped bool, err error) {
	i := t.search(index)
	var tick *Tick
	if i < len(t.Ticks) && t.Ticks[i].Index == index {
		tick = t.Ticks[i]
	} else {
		if liquidityDelta.Sign() < 0 {
			return false, ErrTickUnderflow
		}
		tick = &Tick{
			Index:                 index,
			LiquidityGross:        new(ui.Int),
			LiquidityNet:          new(ui.Int),
			FeeGrowthOutside0X128: new(ui.Int),
			FeeGrowthOutside1X128: new(ui.Int),
		}
		if index <= tickCurrent {
			tick.FeeGrowthOutside0X128.Set(feeGrowthGlobal0X128)
			tick.FeeGrowthOutside1X128.Set(feeGrowthGlobal1X128)
		}
		t.Ticks = append(t.Ticks, nil)
		copy(t.Ticks[i+1:], t.Ticks[i:])
		t.Ticks[i] = tick
	}

	grossAfter := new(ui.Int).Add(tick.LiquidityGross, liquidityDelta)
	if grossAfter.Sign() < 0 {
		return false, ErrTickUnderflow
	}
	flipped = grossAfter.IsZero() != tick.LiquidityGross.IsZero()
	tick.LiquidityGross = grossAfter

	if upper {
		tick.LiquidityNet.Sub(tick.LiquidityNet, liquidityDelta)
	} else {
		tick.LiquidityNet.Add(tick.LiquidityNet, liquidityDelta)
	}

	return flipped, nil
}

// Clear forgets a tick whose gross liquidity has dropped to zero.
// Separate from Update so fee-growth-inside can still be read between
// the flip and the clear.
func (t *TickData) Clear(index int) {
	i := t.search(index)
	if i < len(t.Ticks) && t.Ticks[i].Index == index {
		t.Ticks = append(t.Ticks[:i], t.Ticks[i+1:]...)
	}
}

// Cross re-baselines the tick's fee-growth-outside checkpoints for
// the new side of the price and returns the signed liquidity net.
func (t *TickData) Cross(index int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int) *ui.Int {
	tick, ok := t.Get(index)
	if !ok {
		return new(ui.Int)
	}
	tick.FeeGrowthOutside0X128 = new(ui.Int).Sub(feeGrowthGlobal0X128, tick.FeeGrowthOutside0X128)
	tick.FeeGrowthOutside1X128 = new(ui.Int).Sub(feeGrowthGlobal1X128, tick.FeeGrowthOutside1X128)
	return tick.LiquidityNet.Clone()
}

// FeeGrowthInside returns the cumulative fee growth per unit of
// liquidity inside [lower, upper). Subtraction wraps, which keeps the
// deltas positions take against their snapshots correct even when the
// individual terms underflow.
func (t *TickData) FeeGrowthInside(lower, upper, tickCurrent int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int) (*ui.Int, *ui.Int) {
	var below0, below1, above0, above1 ui.Int

	if lowerTick, ok := t.Get(lower); ok {
		if tickCurrent >= lower {
			below0.Set(lowerTick.FeeGrowthOutside0X128)
			below1.Set(lowerTick.FeeGrowthOutside1X128)
		} else {
			below0.Sub(feeGrowthGlobal0X128, lowerTick.FeeGrowthOutside0X128)
			below1.Sub(feeGrowthGlobal1X128, lowerTick.FeeGrowthOutside1X128)
		}
	}
	if upperTick, ok := t.Get(upper); ok {
		if tickCurrent < upper {
			above0.Set(upperTick.FeeGrowthOutside0X128)
			above1.Set(upperTick.FeeGrowthOutside1X128)
		} else {
			above0.Sub(feeGrowthGlobal0X128, upperTick.FeeGrowthOutside0X128)
			above1.Sub(feeGrowthGlobal1X128, upperTick.FeeGrowthOutside1X128)
		}
	}

	inside0 := new(ui.Int).Sub(feeGrowthGlobal0X128, &below0)
	inside0.Sub(inside0, &above0)
	inside1 := new(ui.Int).Sub(feeGrowthGlobal1X128, &below1)
	inside1.Sub(inside1, &above1)
	return inside0, inside1
}

// NextInitializedTick returns the next initialized tick at or below
// the given tick (lte) or strictly above it (!lte). When no such tick
// exists it returns the global bound and false, which the swap loop
// uses as its clamp.
func (t *TickData) NextInitializedTick(tick int, lte bool) (int, bool) {
	if lte {
		i := sort.Search(len(t.Ticks), func(i int) bool {
			return t.Ticks[i].Index > tick
		})
		if i == 0 {
			return tickmath.MinTick, false
		}
		return t.Ticks[i-1].Index, true
	}
	i := t.search(tick + 1)
	if i == len(t.Ticks) {
		return tickmath.MaxTick, false
	}
	return t.Ticks[i].Index, true
}
