// Package token provides the asset-transfer collaborator the engine
// settles against. Transfers are exact-or-fail; snapshots give the
// engine the all-or-nothing call boundary the execution model
// requires without assuming an external VM.
package token

import (
	"errors"
	"fmt"
	"sync"

	ui "github.com/holiman/uint256"
)

var ErrInsufficientBalance = errors.New("token: insufficient balance")

// Ledger is an in-memory balance book: account -> asset -> amount.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]map[string]*ui.Int
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]map[string]*ui.Int)}
}

// Mint credits new units to an account. Test and scenario funding.
func (l *Ledger) Mint(account, asset string, amount *ui.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(account, asset, amount)
}

// Balance returns a copy of the account's balance for an asset.
func (l *Ledger) Balance(account, asset string) *ui.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if assets, ok := l.balances[account]; ok {
		if b, ok := assets[asset]; ok {
			return b.Clone()
		}
	}
	return new(ui.Int)
}

// Transfer moves exactly amount of asset from one account to another,
// or fails without moving anything.
func (l *Ledger) Transfer(asset, from, to string, amount *ui.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount.IsZero() {
		return nil
	}
	assets, ok := l.balances[from]
	if !ok {
		return fmt.Errorf("%w: %s has no %s", ErrInsufficientBalance, from, asset)
	}
	balance, ok := assets[asset]
	if !ok || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has no %s", ErrInsufficientBalance, from, asset)
	}
	balance.Sub(balance, amount)
	l.credit(to, asset, amount)
	return nil
}

func (l *Ledger) credit(account, asset string, amount *ui.Int) {
	assets, ok := l.balances[account]
	if !ok {
		assets = make(map[string]*ui.Int)
		l.balances[account] = assets
	}
	if b, ok := assets[asset]; ok {
		b.Add(b, amount)
	} else {
		assets[asset] = amount.Clone()
	}
}

// Snapshot is a point-in-time copy of the balance book.
type Snapshot map[string]map[string]*ui.Int

// TakeSnapshot captures the full balance book for a later Revert.
func (l *Ledger) TakeSnapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := make(Snapshot, len(l.balances))
	for account, assets := range l.balances {
		cp := make(map[string]*ui.Int, len(assets))
		for asset, b := range assets {
			cp[asset] = b.Clone()
		}
		snap[account] = cp
	}
	return snap
}

// Revert restores the balance book to a snapshot.
func (l *Ledger) Revert(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	restored := make(map[string]map[string]*ui.Int, len(snap))
	for account, assets := range snap {
		cp := make(map[string]*ui.Int, len(assets))
		for asset, b := range assets {
			cp[asset] = b.Clone()
		}
		restored[account] = cp
	}
	l.balances = restored
}
