package tickmath

import (
	"testing"

	"github.com/stretchr/testify/require"

	cons "clmm/lib/constants"
)

func TestSqrtRatioAtTickBounds(t *testing.T) {
	min, err := SqrtRatioAtTick(MinTick)
	require.NoError(t, err)
	require.Equal(t, 0, min.Cmp(MinSqrtRatio))

	max, err := SqrtRatioAtTick(MaxTick)
	require.NoError(t, err)
	require.Equal(t, 0, max.Cmp(MaxSqrtRatio))

	_, err = SqrtRatioAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrTickRange)
	_, err = SqrtRatioAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrTickRange)
}

func TestSqrtRatioAtTickKnownValues(t *testing.T) {
	// sqrt(1.0001)^0 == 1 in Q64.96
	p, err := SqrtRatioAtTick(0)
	require.NoError(t, err)
	require.Equal(t, 0, p.Cmp(cons.Q96))

	// reference value from the contract test vectors
	p, err = SqrtRatioAtTick(50)
	require.NoError(t, err)
	require.Equal(t, "79426470787362580746886972461", p.Dec())

	p, err = SqrtRatioAtTick(-50)
	require.NoError(t, err)
	require.Equal(t, "79030349367926598376800521322", p.Dec())
}

func TestSqrtRatioMonotonic(t *testing.T) {
	prev, err := SqrtRatioAtTick(-1000)
	require.NoError(t, err)
	for tick := -999; tick <= 1000; tick++ {
		cur, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		require.Equal(t, -1, prev.Cmp(cur), "tick %d", tick)
		prev = cur
	}
}

func TestTickAtSqrtRatioRoundTrip(t *testing.T) {
	ticks := []int{
		MinTick, MinTick + 1, -887220, -600, -100, -1, 0, 1, 100, 600,
		50000, 190880, 887220, MaxTick - 1,
	}
	for _, tick := range ticks {
		p, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		got, err := TickAtSqrtRatio(p)
		require.NoError(t, err)
		require.Equal(t, tick, got, "tick %d", tick)
	}
}

func TestTickAtSqrtRatioBracketing(t *testing.T) {
	for _, tick := range []int{-600, -60, 0, 60, 600, 12345} {
		lower, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		upper, err := SqrtRatioAtTick(tick + 1)
		require.NoError(t, err)

		// halfway between the two boundaries still resolves to tick
		mid := lower.Clone()
		mid.Add(mid, upper)
		mid.Rsh(mid, 1)
		got, err := TickAtSqrtRatio(mid)
		require.NoError(t, err)
		require.Equal(t, tick, got)

		// one below the next boundary resolves to tick as well
		almost := upper.Clone()
		almost.Sub(almost, cons.One)
		got, err = TickAtSqrtRatio(almost)
		require.NoError(t, err)
		require.Equal(t, tick, got)
	}
}

func TestTickAtSqrtRatioRange(t *testing.T) {
	below := MinSqrtRatio.Clone()
	below.Sub(below, cons.One)
	_, err := TickAtSqrtRatio(below)
	require.ErrorIs(t, err, ErrSqrtRatioRange)
	_, err = TickAtSqrtRatio(MaxSqrtRatio)
	require.ErrorIs(t, err, ErrSqrtRatioRange)
}
