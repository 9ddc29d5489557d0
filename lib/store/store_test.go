package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
	"clmm/lib/pool"
)

func fixturePool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.New("WETH", "USDC", cons.FeeMedium)
	require.NoError(t, err)
	require.NoError(t, p.Initialize(cons.Q96))
	_, _, err = p.Mint("alice", -600, 600, ui.NewInt(1_000_000))
	require.NoError(t, err)
	return p
}

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	p := fixturePool(t)
	require.NoError(t, s.Put(p))

	got, err := s.Get(p.PoolID())
	require.NoError(t, err)
	require.Equal(t, p.PoolID(), got.PoolID())
	require.Equal(t, 0, got.Liquidity.Cmp(p.Liquidity))

	// the returned pool is a private copy
	got.Liquidity.Add(got.Liquidity, ui.NewInt(1))
	again, err := s.Get(p.PoolID())
	require.NoError(t, err)
	require.Equal(t, 0, again.Liquidity.Cmp(p.Liquidity))
}

func TestMemStoreMissing(t *testing.T) {
	s := NewMemStore()
	_, err := s.Get("USDC/WETH/3000")
	require.ErrorIs(t, err, ErrPoolNotFound)
	ok, err := s.Has("USDC/WETH/3000")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pools")
	s, err := OpenDiskStore(dir)
	require.NoError(t, err)
	defer s.Close()

	p := fixturePool(t)
	require.NoError(t, s.Put(p))

	got, err := s.Get(p.PoolID())
	require.NoError(t, err)
	require.Equal(t, p.Asset0, got.Asset0)
	require.Equal(t, p.Asset1, got.Asset1)
	require.Equal(t, p.Fee, got.Fee)
	require.True(t, got.Initialized)
	require.Equal(t, 0, got.SqrtPriceX96.Cmp(p.SqrtPriceX96))
	require.Equal(t, 0, got.Liquidity.Cmp(p.Liquidity))
	require.Len(t, got.Ticks.Ticks, 2)
	require.Len(t, got.Positions, 1)

	ids, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{p.PoolID()}, ids)

	_, err = s.Get("nope/nope/500")
	require.ErrorIs(t, err, ErrPoolNotFound)
}
