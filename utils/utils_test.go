package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllDistinct(t *testing.T) {
	require.True(t, AllDistinct([]uint64{}))
	require.True(t, AllDistinct([]uint64{1}))
	require.True(t, AllDistinct([]uint64{1, 2, 3}))
	require.False(t, AllDistinct([]uint64{1, 1}))
	require.False(t, AllDistinct([]uint64{1, 2, 3, 4, 5, 5}))
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, uint64(2), Max(uint64(1), uint64(2)))
	require.Equal(t, -3, Min(-3, -3))
}

func TestGCD(t *testing.T) {
	require.Equal(t, uint64(1), GCD(uint64(65537), uint64(1152921504606846977)))
	require.Equal(t, uint64(6), GCD(uint64(12), uint64(18)))
	require.Equal(t, uint64(5), GCD(uint64(0), uint64(5)))
}

func TestEqualSlice(t *testing.T) {
	require.True(t, EqualSlice([]uint64{1, 2}, []uint64{1, 2}))
	require.False(t, EqualSlice([]uint64{1, 2}, []uint64{1, 3}))
	require.False(t, EqualSlice([]uint64{1, 2}, []uint64{1}))
}

func TestBitReverse(t *testing.T) {
	require.Equal(t, uint64(4), BitReverse64(1, 3))
	require.Equal(t, uint64(6), BitReverse64(3, 3))

	require.Equal(t, uint64(0), BitReverse64(0, 3))

	for i, want := range []uint64{0, 4, 2, 6, 1, 5, 3, 7} {
		require.Equal(t, want, BitReverse64(i, 3))
	}

	for i := uint64(0); i < 1<<10; i++ {
		require.Equal(t, i, BitReverse64(BitReverse64(i, 10), 10))
	}
}
