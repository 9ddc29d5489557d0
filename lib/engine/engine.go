// Package engine exposes the public operations of the exchange:
// pool lifecycle, liquidity provision, swaps, flash loans and the
// protocol-fee administration. Every operation is atomic: it either
// commits in full or leaves no observable change in the store or the
// token ledger.
package engine

import (
	"errors"
	"fmt"
	"sync"

	ui "github.com/holiman/uint256"
	"go.uber.org/zap"

	"clmm/lib/pool"
	"clmm/lib/store"
	"clmm/lib/token"
)

var (
	ErrPoolExists     = errors.New("engine: pool already exists")
	ErrPoolLocked     = errors.New("engine: pool locked")
	ErrArithmetic     = errors.New("engine: arithmetic overflow")
	ErrUnauthorized   = errors.New("engine: caller lacks governance role")
	ErrNilCallback    = errors.New("engine: flash callback required")
	ErrFlashShortfall = errors.New("engine: flash loan repayment short")
)

// GovernanceRole guards the protocol-fee operations.
const GovernanceRole = "governance"

// TokenLedger is the asset-movement collaborator. A transfer moves
// the exact amount or fails; snapshots let the engine undo transfers
// issued earlier in an aborted call.
type TokenLedger interface {
	Balance(account, asset string) *ui.Int
	Transfer(asset, from, to string, amount *ui.Int) error
	TakeSnapshot() token.Snapshot
	Revert(token.Snapshot)
}

// RoleChecker is the external authorization collaborator.
type RoleChecker interface {
	HasRole(account, role string) bool
}

// FlashCallback receives the lent amounts and the fees due, and must
// arrange repayment before it returns. It runs with the pool locked:
// calling back into the same pool fails with ErrPoolLocked.
type FlashCallback func(asset0, asset1 string, amount0, amount1, fee0, fee1 *ui.Int) error

type Engine struct {
	store  store.Store
	ledger TokenLedger
	roles  RoleChecker
	log    *zap.Logger

	mu     sync.Mutex
	locked map[string]bool
}

func New(st store.Store, ledger TokenLedger, roles RoleChecker, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:  st,
		ledger: ledger,
		roles:  roles,
		log:    log,
		locked: make(map[string]bool),
	}
}

func (e *Engine) lockPool(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked[id] {
		return fmt.Errorf("%w: %s", ErrPoolLocked, id)
	}
	e.locked[id] = true
	return nil
}

func (e *Engine) unlockPool(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locked, id)
}

// withPool runs fn against a private copy of the pool under the
// pool's re-entrancy lock. On success the copy replaces the stored
// record; on any error, panic included, the ledger is reverted and
// the stored record is untouched.
func (e *Engine) withPool(id string, fn func(p *pool.Pool) error) error {
	if err := e.lockPool(id); err != nil {
		return err
	}
	defer e.unlockPool(id)

	p, err := e.store.Get(id)
	if err != nil {
		return err
	}
	snap := e.ledger.TakeSnapshot()
	if err := guard(fn, p); err != nil {
		e.ledger.Revert(snap)
		return err
	}
	return e.store.Put(p)
}

// guard converts arithmetic panics from the fixed-point layer into an
// abort of the call.
func guard(fn func(p *pool.Pool) error, p *pool.Pool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrArithmetic, r)
		}
	}()
	return fn(p)
}

// settle moves a signed amount between the pool account and a
// counterparty: positive enters the pool, negative leaves it.
func (e *Engine) settle(poolAccount, asset, counterparty string, amount *ui.Int) error {
	switch amount.Sign() {
	case 1:
		return e.ledger.Transfer(asset, counterparty, poolAccount, amount)
	case -1:
		return e.ledger.Transfer(asset, poolAccount, counterparty, new(ui.Int).Neg(amount))
	}
	return nil
}

// CreatePool registers an empty pool for the pair and tier and
// returns its id. The price is set later by Initialize.
func (e *Engine) CreatePool(assetA, assetB string, fee int) (string, error) {
	id := pool.ID(assetA, assetB, fee)
	exists, err := e.store.Has(id)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrPoolExists, id)
	}
	p, err := pool.New(assetA, assetB, fee)
	if err != nil {
		return "", err
	}
	if err := e.store.Put(p); err != nil {
		return "", err
	}
	e.log.Info("pool created", zap.String("pool", id), zap.Int("fee", fee))
	return id, nil
}

// Initialize sets the pool's starting price, once.
func (e *Engine) Initialize(poolID string, sqrtPriceX96 *ui.Int) error {
	return e.withPool(poolID, func(p *pool.Pool) error {
		if err := p.Initialize(sqrtPriceX96); err != nil {
			return err
		}
		e.log.Info("pool initialized",
			zap.String("pool", poolID),
			zap.String("sqrtPriceX96", sqrtPriceX96.Dec()),
			zap.Int("tick", p.Tick))
		return nil
	})
}

// Mint adds liquidity over a tick range. The owner pays the computed
// deposit amounts; if the owner cannot cover them the whole call is
// rolled back.
func (e *Engine) Mint(poolID, owner string, tickLower, tickUpper int, liquidity *ui.Int) (amount0, amount1 *ui.Int, err error) {
	err = e.withPool(poolID, func(p *pool.Pool) error {
		a0, a1, err := p.Mint(owner, tickLower, tickUpper, liquidity)
		if err != nil {
			return err
		}
		account := p.PoolID()
		if err := e.ledger.Transfer(p.Asset0, owner, account, a0); err != nil {
			return err
		}
		if err := e.ledger.Transfer(p.Asset1, owner, account, a1); err != nil {
			return err
		}
		amount0, amount1 = a0, a1
		e.log.Debug("mint",
			zap.String("pool", poolID), zap.String("owner", owner),
			zap.Int("tickLower", tickLower), zap.Int("tickUpper", tickUpper),
			zap.String("liquidity", liquidity.Dec()),
			zap.String("amount0", a0.Dec()), zap.String("amount1", a1.Dec()))
		return nil
	})
	return amount0, amount1, err
}

// Burn removes liquidity and credits the principal to the position's
// owed balances. No tokens move; Collect pays out.
func (e *Engine) Burn(poolID, owner string, tickLower, tickUpper int, liquidity *ui.Int) (amount0, amount1 *ui.Int, err error) {
	err = e.withPool(poolID, func(p *pool.Pool) error {
		a0, a1, err := p.Burn(owner, tickLower, tickUpper, liquidity)
		if err != nil {
			return err
		}
		amount0, amount1 = a0, a1
		e.log.Debug("burn",
			zap.String("pool", poolID), zap.String("owner", owner),
			zap.Int("tickLower", tickLower), zap.Int("tickUpper", tickUpper),
			zap.String("liquidity", liquidity.Dec()))
		return nil
	})
	return amount0, amount1, err
}

// Collect pays out owed balances, capped at what is owed.
func (e *Engine) Collect(poolID, owner string, tickLower, tickUpper int, requested0, requested1 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	err = e.withPool(poolID, func(p *pool.Pool) error {
		a0, a1, err := p.Collect(owner, tickLower, tickUpper, requested0, requested1)
		if err != nil {
			return err
		}
		account := p.PoolID()
		if err := e.ledger.Transfer(p.Asset0, account, owner, a0); err != nil {
			return err
		}
		if err := e.ledger.Transfer(p.Asset1, account, owner, a1); err != nil {
			return err
		}
		amount0, amount1 = a0, a1
		e.log.Debug("collect",
			zap.String("pool", poolID), zap.String("owner", owner),
			zap.String("amount0", a0.Dec()), zap.String("amount1", a1.Dec()))
		return nil
	})
	return amount0, amount1, err
}

// Swap trades against the pool. amountSpecified is signed (positive =
// exact input); the returned amounts follow the same convention:
// positive entered the pool, negative left it. The trader pays the
// positive side and receives the negative side.
func (e *Engine) Swap(poolID, trader string, zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if sqrtPriceLimitX96 == nil {
		sqrtPriceLimitX96 = new(ui.Int)
	}
	err = e.withPool(poolID, func(p *pool.Pool) error {
		a0, a1, err := p.Swap(zeroForOne, amountSpecified, sqrtPriceLimitX96)
		if err != nil {
			return err
		}
		account := p.PoolID()
		if err := e.settle(account, p.Asset0, trader, a0); err != nil {
			return err
		}
		if err := e.settle(account, p.Asset1, trader, a1); err != nil {
			return err
		}
		amount0, amount1 = a0, a1
		e.log.Debug("swap",
			zap.String("pool", poolID), zap.String("trader", trader),
			zap.Bool("zeroForOne", zeroForOne),
			zap.String("amount0", signedDec(a0)), zap.String("amount1", signedDec(a1)),
			zap.String("sqrtPriceX96", p.SqrtPriceX96.Dec()),
			zap.Int("tick", p.Tick))
		return nil
	})
	return amount0, amount1, err
}

// Flash lends the requested amounts for the duration of the callback.
// The pool's balances must have grown by at least the fee for every
// lent asset by the time the callback returns; otherwise the entire
// call, initial transfers included, is rolled back.
func (e *Engine) Flash(poolID, recipient string, amount0, amount1 *ui.Int, cb FlashCallback) error {
	if cb == nil {
		return ErrNilCallback
	}
	if amount0.IsZero() && amount1.IsZero() {
		return pool.ErrZeroAmount
	}
	return e.withPool(poolID, func(p *pool.Pool) error {
		if !p.Initialized {
			return pool.ErrNotInitialized
		}
		fee0, fee1 := p.FlashFees(amount0, amount1)
		account := p.PoolID()

		before0 := e.ledger.Balance(account, p.Asset0)
		before1 := e.ledger.Balance(account, p.Asset1)

		if err := e.ledger.Transfer(p.Asset0, account, recipient, amount0); err != nil {
			return err
		}
		if err := e.ledger.Transfer(p.Asset1, account, recipient, amount1); err != nil {
			return err
		}

		if err := cb(p.Asset0, p.Asset1, amount0.Clone(), amount1.Clone(), fee0.Clone(), fee1.Clone()); err != nil {
			return fmt.Errorf("engine: flash callback: %w", err)
		}

		after0 := e.ledger.Balance(account, p.Asset0)
		after1 := e.ledger.Balance(account, p.Asset1)

		required0 := new(ui.Int).Add(before0, fee0)
		required1 := new(ui.Int).Add(before1, fee1)
		if after0.Cmp(required0) < 0 || after1.Cmp(required1) < 0 {
			return ErrFlashShortfall
		}

		paid0 := new(ui.Int).Sub(after0, before0)
		paid1 := new(ui.Int).Sub(after1, before1)
		p.AccrueFlashFees(paid0, paid1)

		e.log.Debug("flash",
			zap.String("pool", poolID), zap.String("recipient", recipient),
			zap.String("amount0", amount0.Dec()), zap.String("amount1", amount1.Dec()),
			zap.String("paid0", paid0.Dec()), zap.String("paid1", paid1.Dec()))
		return nil
	})
}

// SetProtocolFeeRatio sets the protocol's 1/n share of fees.
// Governance only.
func (e *Engine) SetProtocolFeeRatio(caller, poolID string, ratio int) error {
	if !e.roles.HasRole(caller, GovernanceRole) {
		return ErrUnauthorized
	}
	return e.withPool(poolID, func(p *pool.Pool) error {
		if err := p.SetProtocolFeeRatio(ratio); err != nil {
			return err
		}
		e.log.Info("protocol fee ratio set", zap.String("pool", poolID), zap.Int("ratio", ratio))
		return nil
	})
}

// CollectProtocolFees transfers the accumulated protocol fees to the
// given account and resets the counters. Governance only.
func (e *Engine) CollectProtocolFees(caller, poolID, to string) (amount0, amount1 *ui.Int, err error) {
	if !e.roles.HasRole(caller, GovernanceRole) {
		return nil, nil, ErrUnauthorized
	}
	err = e.withPool(poolID, func(p *pool.Pool) error {
		account := p.PoolID()
		a0 := p.ProtocolFees0.Clone()
		a1 := p.ProtocolFees1.Clone()
		if err := e.ledger.Transfer(p.Asset0, account, to, a0); err != nil {
			return err
		}
		if err := e.ledger.Transfer(p.Asset1, account, to, a1); err != nil {
			return err
		}
		p.ProtocolFees0.Clear()
		p.ProtocolFees1.Clear()
		amount0, amount1 = a0, a1
		e.log.Info("protocol fees collected",
			zap.String("pool", poolID), zap.String("to", to),
			zap.String("amount0", a0.Dec()), zap.String("amount1", a1.Dec()))
		return nil
	})
	return amount0, amount1, err
}

// Pool returns a read-only copy of a pool's current state.
func (e *Engine) Pool(poolID string) (*pool.Pool, error) {
	return e.store.Get(poolID)
}

// Pools lists the ids of all created pools.
func (e *Engine) Pools() ([]string, error) {
	return e.store.List()
}

func signedDec(v *ui.Int) string {
	if v.Sign() < 0 {
		return "-" + new(ui.Int).Neg(v).Dec()
	}
	return v.Dec()
}
