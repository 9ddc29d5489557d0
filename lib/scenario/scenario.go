// Package scenario replays a JSON transaction tape against an engine.
// Tapes drive the command-line runner and make longer operation
// sequences reproducible in tests.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	ui "github.com/holiman/uint256"
	"go.uber.org/zap"

	"clmm/lib/engine"
	"clmm/lib/liquidity"
	"clmm/lib/tickmath"
	"clmm/lib/token"
)

var ErrBadRecord = errors.New("scenario: bad record")

// Record is one tape entry. Amounts are decimal strings so tapes stay
// exact at 256-bit precision; a leading minus selects exact-output on
// swaps.
type Record struct {
	Type    string `json:"type"`
	Pool    string `json:"pool,omitempty"`
	Account string `json:"account,omitempty"`

	AssetA string `json:"assetA,omitempty"`
	AssetB string `json:"assetB,omitempty"`
	Fee    int    `json:"fee,omitempty"`

	SqrtPriceX96 string `json:"sqrtPriceX96,omitempty"`

	TickLower int    `json:"tickLower,omitempty"`
	TickUpper int    `json:"tickUpper,omitempty"`
	Liquidity string `json:"liquidity,omitempty"`

	Asset      string `json:"asset,omitempty"`
	Amount     string `json:"amount,omitempty"`
	Amount0    string `json:"amount0,omitempty"`
	Amount1    string `json:"amount1,omitempty"`
	ZeroForOne bool   `json:"zeroForOne,omitempty"`
	PriceLimit string `json:"priceLimit,omitempty"`

	Ratio int    `json:"ratio,omitempty"`
	To    string `json:"to,omitempty"`
}

// Load reads a tape from a JSON file.
func Load(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read tape: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("scenario: decode tape: %w", err)
	}
	return records, nil
}

// Runner applies tape records to an engine in order. Flash records
// repay principal plus fee from the borrowing account.
type Runner struct {
	engine *engine.Engine
	ledger *token.Ledger
	log    *zap.Logger
}

func NewRunner(e *engine.Engine, ledger *token.Ledger, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{engine: e, ledger: ledger, log: log}
}

// Run applies every record and stops at the first failure.
func (r *Runner) Run(records []Record) error {
	for i, rec := range records {
		if err := r.apply(rec); err != nil {
			return fmt.Errorf("scenario: record %d (%s): %w", i, rec.Type, err)
		}
	}
	r.log.Info("tape replayed", zap.Int("records", len(records)))
	return nil
}

func (r *Runner) apply(rec Record) error {
	switch rec.Type {
	case "fund":
		amount, _, err := parseAmount(rec.Amount)
		if err != nil {
			return err
		}
		r.ledger.Mint(rec.Account, rec.Asset, amount)
		return nil

	case "createPool":
		_, err := r.engine.CreatePool(rec.AssetA, rec.AssetB, rec.Fee)
		return err

	case "initialize":
		price, negative, err := parseAmount(rec.SqrtPriceX96)
		if err != nil || negative {
			return fmt.Errorf("%w: sqrtPriceX96 %q", ErrBadRecord, rec.SqrtPriceX96)
		}
		return r.engine.Initialize(rec.Pool, price)

	case "mint":
		liquidity, _, err := parseAmount(rec.Liquidity)
		if err != nil {
			return err
		}
		_, _, err = r.engine.Mint(rec.Pool, rec.Account, rec.TickLower, rec.TickUpper, liquidity)
		return err

	case "mintAmounts":
		// size the position from token amounts at the current price
		amount0, _, err := parseAmount(rec.Amount0)
		if err != nil {
			return err
		}
		amount1, _, err := parseAmount(rec.Amount1)
		if err != nil {
			return err
		}
		p, err := r.engine.Pool(rec.Pool)
		if err != nil {
			return err
		}
		lowerRatio, err := tickmath.SqrtRatioAtTick(rec.TickLower)
		if err != nil {
			return err
		}
		upperRatio, err := tickmath.SqrtRatioAtTick(rec.TickUpper)
		if err != nil {
			return err
		}
		l := liquidity.ForAmounts(p.SqrtPriceX96, lowerRatio, upperRatio, amount0, amount1)
		_, _, err = r.engine.Mint(rec.Pool, rec.Account, rec.TickLower, rec.TickUpper, l)
		return err

	case "burn":
		liquidity, _, err := parseAmount(rec.Liquidity)
		if err != nil {
			return err
		}
		_, _, err = r.engine.Burn(rec.Pool, rec.Account, rec.TickLower, rec.TickUpper, liquidity)
		return err

	case "collect":
		requested0, _, err := parseAmount(rec.Amount0)
		if err != nil {
			return err
		}
		requested1, _, err := parseAmount(rec.Amount1)
		if err != nil {
			return err
		}
		_, _, err = r.engine.Collect(rec.Pool, rec.Account, rec.TickLower, rec.TickUpper, requested0, requested1)
		return err

	case "swap":
		amount, negative, err := parseAmount(rec.Amount)
		if err != nil {
			return err
		}
		if negative {
			amount.Neg(amount)
		}
		var limit *ui.Int
		if rec.PriceLimit != "" {
			limit, _, err = parseAmount(rec.PriceLimit)
			if err != nil {
				return err
			}
		}
		_, _, err = r.engine.Swap(rec.Pool, rec.Account, rec.ZeroForOne, amount, limit)
		return err

	case "flash":
		amount0, _, err := parseAmount(rec.Amount0)
		if err != nil {
			return err
		}
		amount1, _, err := parseAmount(rec.Amount1)
		if err != nil {
			return err
		}
		borrower := rec.Account
		poolID := rec.Pool
		return r.engine.Flash(poolID, borrower, amount0, amount1,
			func(asset0, asset1 string, lent0, lent1, fee0, fee1 *ui.Int) error {
				if err := r.ledger.Transfer(asset0, borrower, poolID, new(ui.Int).Add(lent0, fee0)); err != nil {
					return err
				}
				return r.ledger.Transfer(asset1, borrower, poolID, new(ui.Int).Add(lent1, fee1))
			})

	case "setProtocolFeeRatio":
		return r.engine.SetProtocolFeeRatio(rec.Account, rec.Pool, rec.Ratio)

	case "collectProtocolFees":
		_, _, err := r.engine.CollectProtocolFees(rec.Account, rec.Pool, rec.To)
		return err
	}
	return fmt.Errorf("%w: unknown type %q", ErrBadRecord, rec.Type)
}

// parseAmount reads a decimal string into a uint256. The empty string
// is zero; a leading minus is reported to the caller.
func parseAmount(s string) (*ui.Int, bool, error) {
	if s == "" {
		return new(ui.Int), false, nil
	}
	negative := strings.HasPrefix(s, "-")
	v, err := ui.FromDecimal(strings.TrimPrefix(s, "-"))
	if err != nil {
		return nil, false, fmt.Errorf("%w: amount %q: %v", ErrBadRecord, s, err)
	}
	return v, negative, nil
}
