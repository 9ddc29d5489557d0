// Package pool implements the per-pair concentrated liquidity state
// machine: price, active liquidity, fee accumulators, and the swap
// executor that walks the tick registry.
package pool

import (
	"errors"
	"fmt"
	"strings"

	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	fm "clmm/lib/fullmath"
	"clmm/lib/position"
	"clmm/lib/sqrtmath"
	"clmm/lib/swapmath"
	"clmm/lib/tickdata"
	"clmm/lib/tickmath"
)

var (
	ErrIdenticalAssets    = errors.New("pool: identical assets")
	ErrUnknownFeeTier     = errors.New("pool: unknown fee tier")
	ErrNotInitialized     = errors.New("pool: not initialized")
	ErrAlreadyInitialized = errors.New("pool: already initialized")
	ErrInvalidTickRange   = errors.New("pool: invalid tick range")
	ErrZeroLiquidity      = errors.New("pool: zero liquidity amount")
	ErrZeroAmount         = errors.New("pool: zero amount")
	ErrPositionNotFound   = errors.New("pool: position not found")
	ErrInvalidPriceLimit  = errors.New("pool: invalid price limit")
	ErrProtocolFeeRatio   = errors.New("pool: protocol fee ratio out of range")
)

// Pool holds all persisted state for one (asset pair, fee tier).
type Pool struct {
	Asset0      string `json:"asset0"`
	Asset1      string `json:"asset1"`
	Fee         int    `json:"fee"`
	TickSpacing int    `json:"tickSpacing"`

	Initialized  bool    `json:"initialized"`
	SqrtPriceX96 *ui.Int `json:"sqrtPriceX96"`
	Tick         int     `json:"tick"`
	Liquidity    *ui.Int `json:"liquidity"`

	FeeGrowthGlobal0X128 *ui.Int `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 *ui.Int `json:"feeGrowthGlobal1X128"`

	// ProtocolFeeRatio is the denominator of the protocol's share of
	// fees (1/n), or 0 when the protocol takes nothing.
	ProtocolFeeRatio int     `json:"protocolFeeRatio"`
	ProtocolFees0    *ui.Int `json:"protocolFees0"`
	ProtocolFees1    *ui.Int `json:"protocolFees1"`

	Ticks     *tickdata.TickData        `json:"ticks"`
	Positions map[string]*position.Info `json:"positions"`
}

// SortAssets returns the pair in canonical order.
func SortAssets(assetA, assetB string) (string, string) {
	if strings.Compare(assetA, assetB) < 0 {
		return assetA, assetB
	}
	return assetB, assetA
}

// ID derives the composite pool key from an unordered pair and a tier.
func ID(assetA, assetB string, fee int) string {
	a0, a1 := SortAssets(assetA, assetB)
	return fmt.Sprintf("%s/%s/%d", a0, a1, fee)
}

// New creates an empty, uninitialized pool.
func New(assetA, assetB string, fee int) (*Pool, error) {
	if assetA == assetB {
		return nil, ErrIdenticalAssets
	}
	spacing, ok := cons.TickSpacings[fee]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFeeTier, fee)
	}
	a0, a1 := SortAssets(assetA, assetB)
	return &Pool{
		Asset0:               a0,
		Asset1:               a1,
		Fee:                  fee,
		TickSpacing:          spacing,
		SqrtPriceX96:         new(ui.Int),
		Liquidity:            new(ui.Int),
		FeeGrowthGlobal0X128: new(ui.Int),
		FeeGrowthGlobal1X128: new(ui.Int),
		ProtocolFees0:        new(ui.Int),
		ProtocolFees1:        new(ui.Int),
		Ticks:                tickdata.New(spacing),
		Positions:            make(map[string]*position.Info),
	}, nil
}

func (p *Pool) PoolID() string {
	return ID(p.Asset0, p.Asset1, p.Fee)
}

// Initialize sets the starting price exactly once.
func (p *Pool) Initialize(sqrtPriceX96 *ui.Int) error {
	if p.Initialized {
		return ErrAlreadyInitialized
	}
	tick, err := tickmath.TickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	p.SqrtPriceX96 = sqrtPriceX96.Clone()
	p.Tick = tick
	p.Initialized = true
	return nil
}

func (p *Pool) Clone() *Pool {
	positions := make(map[string]*position.Info, len(p.Positions))
	for k, v := range p.Positions {
		positions[k] = v.Clone()
	}
	return &Pool{
		Asset0:               p.Asset0,
		Asset1:               p.Asset1,
		Fee:                  p.Fee,
		TickSpacing:          p.TickSpacing,
		Initialized:          p.Initialized,
		SqrtPriceX96:         p.SqrtPriceX96.Clone(),
		Tick:                 p.Tick,
		Liquidity:            p.Liquidity.Clone(),
		FeeGrowthGlobal0X128: p.FeeGrowthGlobal0X128.Clone(),
		FeeGrowthGlobal1X128: p.FeeGrowthGlobal1X128.Clone(),
		ProtocolFeeRatio:     p.ProtocolFeeRatio,
		ProtocolFees0:        p.ProtocolFees0.Clone(),
		ProtocolFees1:        p.ProtocolFees1.Clone(),
		Ticks:                p.Ticks.Clone(),
		Positions:            positions,
	}
}

func (p *Pool) checkTicks(tickLower, tickUpper int) error {
	switch {
	case tickLower >= tickUpper:
		return fmt.Errorf("%w: lower %d >= upper %d", ErrInvalidTickRange, tickLower, tickUpper)
	case tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick:
		return fmt.Errorf("%w: [%d, %d] outside global bounds", ErrInvalidTickRange, tickLower, tickUpper)
	case tickLower%p.TickSpacing != 0 || tickUpper%p.TickSpacing != 0:
		return fmt.Errorf("%w: [%d, %d] not aligned to spacing %d", ErrInvalidTickRange, tickLower, tickUpper, p.TickSpacing)
	}
	return nil
}

// modifyPosition applies a signed liquidity delta to a position and
// its boundary ticks. Returned amounts are signed: positive amounts
// are owed to the pool, negative amounts are owed by the pool.
func (p *Pool) modifyPosition(owner string, tickLower, tickUpper int, liquidityDelta *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if !p.Initialized {
		return nil, nil, ErrNotInitialized
	}
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, nil, err
	}

	key := position.Key(owner, tickLower, tickUpper)
	pos, ok := p.Positions[key]
	if !ok {
		if liquidityDelta.Sign() <= 0 {
			return nil, nil, ErrPositionNotFound
		}
		pos = position.New(owner, tickLower, tickUpper)
		p.Positions[key] = pos
	}

	flippedLower, err := p.Ticks.Update(tickLower, p.Tick, liquidityDelta, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, false)
	if err != nil {
		return nil, nil, err
	}
	flippedUpper, err := p.Ticks.Update(tickUpper, p.Tick, liquidityDelta, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, true)
	if err != nil {
		return nil, nil, err
	}

	inside0, inside1 := p.Ticks.FeeGrowthInside(tickLower, tickUpper, p.Tick, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	if err := pos.Update(liquidityDelta, inside0, inside1); err != nil {
		return nil, nil, err
	}

	if liquidityDelta.Sign() < 0 {
		if flippedLower {
			p.Ticks.Clear(tickLower)
		}
		if flippedUpper {
			p.Ticks.Clear(tickUpper)
		}
	}

	lowerRatio, err := tickmath.SqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	upperRatio, err := tickmath.SqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}

	amount0, amount1 = new(ui.Int), new(ui.Int)
	switch {
	case p.Tick < tickLower:
		// range entirely above the price: only asset0
		amount0 = sqrtmath.Amount0DeltaSigned(lowerRatio, upperRatio, liquidityDelta)
	case p.Tick < tickUpper:
		amount0 = sqrtmath.Amount0DeltaSigned(p.SqrtPriceX96, upperRatio, liquidityDelta)
		amount1 = sqrtmath.Amount1DeltaSigned(lowerRatio, p.SqrtPriceX96, liquidityDelta)
		p.Liquidity.Add(p.Liquidity, liquidityDelta)
	default:
		// range entirely below the price: only asset1
		amount1 = sqrtmath.Amount1DeltaSigned(lowerRatio, upperRatio, liquidityDelta)
	}
	return amount0, amount1, nil
}

// Mint registers liquidity over [tickLower, tickUpper) and returns
// the deposit amounts the owner must supply, rounded up.
func (p *Pool) Mint(owner string, tickLower, tickUpper int, liquidity *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if liquidity.Sign() <= 0 {
		return nil, nil, ErrZeroLiquidity
	}
	return p.modifyPosition(owner, tickLower, tickUpper, liquidity)
}

// Burn removes liquidity and credits the withdrawn principal, rounded
// down, to the position's owed balances. Tokens move only via Collect.
func (p *Pool) Burn(owner string, tickLower, tickUpper int, liquidity *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if liquidity.Sign() <= 0 {
		return nil, nil, ErrZeroLiquidity
	}
	a0, a1, err := p.modifyPosition(owner, tickLower, tickUpper, new(ui.Int).Neg(liquidity))
	if err != nil {
		return nil, nil, err
	}
	amount0 = new(ui.Int).Neg(a0)
	amount1 = new(ui.Int).Neg(a1)

	pos := p.Positions[position.Key(owner, tickLower, tickUpper)]
	pos.TokensOwed0.Add(pos.TokensOwed0, amount0)
	pos.TokensOwed1.Add(pos.TokensOwed1, amount1)
	return amount0, amount1, nil
}

// Collect pays out up to the requested amounts from a position's owed
// balances and drops the position once it is empty.
func (p *Pool) Collect(owner string, tickLower, tickUpper int, requested0, requested1 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if !p.Initialized {
		return nil, nil, ErrNotInitialized
	}
	key := position.Key(owner, tickLower, tickUpper)
	pos, ok := p.Positions[key]
	if !ok {
		return nil, nil, ErrPositionNotFound
	}
	amount0, amount1 = pos.Collect(requested0, requested1)
	if pos.Empty() {
		delete(p.Positions, key)
	}
	return amount0, amount1, nil
}

type swapState struct {
	amountRemaining     *ui.Int // signed
	amountCalculated    *ui.Int // signed
	sqrtPriceX96        *ui.Int
	tick                int
	feeGrowthGlobalX128 *ui.Int
	protocolFee         *ui.Int
	liquidity           *ui.Int
}

type swapStep struct {
	sqrtPriceStartX96 *ui.Int
	tickNext          int
	initialized       bool
	sqrtPriceNextX96  *ui.Int
	amountIn          *ui.Int
	amountOut         *ui.Int
	feeAmount         *ui.Int
}

// Swap trades against the pool's liquidity. amountSpecified is signed:
// positive swaps an exact input, negative an exact output. The price
// never moves past sqrtPriceLimitX96 (zero selects the global bound).
// Returned amounts are signed: positive enters the pool, negative
// leaves it. Running out of liquidity before the limit is not an
// error, the fill is simply smaller than requested.
func (p *Pool) Swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if !p.Initialized {
		return nil, nil, ErrNotInitialized
	}
	if amountSpecified.IsZero() {
		return nil, nil, ErrZeroAmount
	}

	limit := sqrtPriceLimitX96.Clone()
	if limit.IsZero() {
		if zeroForOne {
			limit = new(ui.Int).Add(tickmath.MinSqrtRatio, cons.One)
		} else {
			limit = new(ui.Int).Sub(tickmath.MaxSqrtRatio, cons.One)
		}
	}
	if zeroForOne {
		if limit.Cmp(p.SqrtPriceX96) >= 0 || limit.Cmp(tickmath.MinSqrtRatio) <= 0 {
			return nil, nil, ErrInvalidPriceLimit
		}
	} else {
		if limit.Cmp(p.SqrtPriceX96) <= 0 || limit.Cmp(tickmath.MaxSqrtRatio) >= 0 {
			return nil, nil, ErrInvalidPriceLimit
		}
	}

	exactInput := amountSpecified.Sign() >= 0

	var feeGrowthGlobal *ui.Int
	if zeroForOne {
		feeGrowthGlobal = p.FeeGrowthGlobal0X128.Clone()
	} else {
		feeGrowthGlobal = p.FeeGrowthGlobal1X128.Clone()
	}
	state := swapState{
		amountRemaining:     amountSpecified.Clone(),
		amountCalculated:    new(ui.Int),
		sqrtPriceX96:        p.SqrtPriceX96.Clone(),
		tick:                p.Tick,
		feeGrowthGlobalX128: feeGrowthGlobal,
		protocolFee:         new(ui.Int),
		liquidity:           p.Liquidity.Clone(),
	}

	for !state.amountRemaining.IsZero() && state.sqrtPriceX96.Cmp(limit) != 0 {
		var step swapStep
		step.sqrtPriceStartX96 = state.sqrtPriceX96
		step.tickNext, step.initialized = p.Ticks.NextInitializedTick(state.tick, zeroForOne)

		step.sqrtPriceNextX96, err = tickmath.SqrtRatioAtTick(step.tickNext)
		if err != nil {
			return nil, nil, err
		}

		target := step.sqrtPriceNextX96
		if zeroForOne {
			if step.sqrtPriceNextX96.Cmp(limit) < 0 {
				target = limit
			}
		} else {
			if step.sqrtPriceNextX96.Cmp(limit) > 0 {
				target = limit
			}
		}

		state.sqrtPriceX96, step.amountIn, step.amountOut, step.feeAmount =
			swapmath.ComputeSwapStep(state.sqrtPriceX96, target, state.liquidity, state.amountRemaining, p.Fee)

		if exactInput {
			state.amountRemaining.Sub(state.amountRemaining, new(ui.Int).Add(step.amountIn, step.feeAmount))
			state.amountCalculated.Sub(state.amountCalculated, step.amountOut)
		} else {
			state.amountRemaining.Add(state.amountRemaining, step.amountOut)
			state.amountCalculated.Add(state.amountCalculated, new(ui.Int).Add(step.amountIn, step.feeAmount))
		}

		if p.ProtocolFeeRatio > 0 && step.feeAmount.Sign() > 0 {
			delta := new(ui.Int).Div(step.feeAmount, ui.NewInt(uint64(p.ProtocolFeeRatio)))
			step.feeAmount.Sub(step.feeAmount, delta)
			state.protocolFee.Add(state.protocolFee, delta)
		}

		if state.liquidity.Sign() > 0 {
			growth := fm.MulDiv(step.feeAmount, cons.Q128, state.liquidity)
			state.feeGrowthGlobalX128.Add(state.feeGrowthGlobalX128, growth)
		}

		if state.sqrtPriceX96.Cmp(step.sqrtPriceNextX96) == 0 {
			if step.initialized {
				var fg0, fg1 *ui.Int
				if zeroForOne {
					fg0, fg1 = state.feeGrowthGlobalX128, p.FeeGrowthGlobal1X128
				} else {
					fg0, fg1 = p.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128
				}
				liquidityNet := p.Ticks.Cross(step.tickNext, fg0, fg1)
				if zeroForOne {
					state.liquidity.Sub(state.liquidity, liquidityNet)
				} else {
					state.liquidity.Add(state.liquidity, liquidityNet)
				}
			}
			if zeroForOne {
				state.tick = step.tickNext - 1
			} else {
				state.tick = step.tickNext
			}
		} else if state.sqrtPriceX96.Cmp(step.sqrtPriceStartX96) != 0 {
			state.tick, err = tickmath.TickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	p.SqrtPriceX96 = state.sqrtPriceX96
	p.Tick = state.tick
	p.Liquidity = state.liquidity
	if zeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
		p.ProtocolFees0.Add(p.ProtocolFees0, state.protocolFee)
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
		p.ProtocolFees1.Add(p.ProtocolFees1, state.protocolFee)
	}

	amount0, amount1 = new(ui.Int), new(ui.Int)
	if zeroForOne == exactInput {
		amount0.Sub(amountSpecified, state.amountRemaining)
		amount1.Set(state.amountCalculated)
	} else {
		amount0.Set(state.amountCalculated)
		amount1.Sub(amountSpecified, state.amountRemaining)
	}
	return amount0, amount1, nil
}

// FlashFees returns the fee due on each requested flash amount,
// rounded up.
func (p *Pool) FlashFees(amount0, amount1 *ui.Int) (fee0, fee1 *ui.Int) {
	fee := ui.NewInt(uint64(p.Fee))
	fee0 = fm.MulDivRoundingUp(amount0, fee, cons.E6)
	fee1 = fm.MulDivRoundingUp(amount1, fee, cons.E6)
	return fee0, fee1
}

// AccrueFlashFees books repaid flash fees: the protocol's cut goes to
// its counters, the rest to the per-liquidity growth accumulators.
// With no active liquidity there is no one to accrue to, so the whole
// fee goes to the protocol.
func (p *Pool) AccrueFlashFees(paid0, paid1 *ui.Int) {
	p.accrueFlashFee(paid0, p.ProtocolFees0, p.FeeGrowthGlobal0X128)
	p.accrueFlashFee(paid1, p.ProtocolFees1, p.FeeGrowthGlobal1X128)
}

func (p *Pool) accrueFlashFee(paid, protocolFees, feeGrowthGlobal *ui.Int) {
	if paid.IsZero() {
		return
	}
	if p.Liquidity.IsZero() {
		protocolFees.Add(protocolFees, paid)
		return
	}
	lpShare := paid.Clone()
	if p.ProtocolFeeRatio > 0 {
		cut := new(ui.Int).Div(paid, ui.NewInt(uint64(p.ProtocolFeeRatio)))
		protocolFees.Add(protocolFees, cut)
		lpShare.Sub(lpShare, cut)
	}
	feeGrowthGlobal.Add(feeGrowthGlobal, fm.MulDiv(lpShare, cons.Q128, p.Liquidity))
}

// SetProtocolFeeRatio sets the protocol's 1/n fee share. Zero turns
// the protocol fee off; otherwise n must be within [4, 10].
func (p *Pool) SetProtocolFeeRatio(ratio int) error {
	if ratio != 0 && (ratio < 4 || ratio > 10) {
		return fmt.Errorf("%w: %d", ErrProtocolFeeRatio, ratio)
	}
	p.ProtocolFeeRatio = ratio
	return nil
}
