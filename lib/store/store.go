// Package store persists pool records keyed by their composite pool
// id. The engine takes the Store interface so tests run against the
// in-memory implementation and deployments against LevelDB.
package store

import (
	"errors"

	"clmm/lib/pool"
)

var ErrPoolNotFound = errors.New("store: pool not found")

type Store interface {
	// Get returns a private copy of the pool; mutating it does not
	// affect the stored record until Put.
	Get(id string) (*pool.Pool, error)
	Put(p *pool.Pool) error
	Has(id string) (bool, error)
	List() ([]string, error)
	Close() error
}
