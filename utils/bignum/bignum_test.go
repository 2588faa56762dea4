package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivRound(t *testing.T) {

	testCases := []struct {
		a, b, want int64
	}{
		{7, 2, 4},
		{5, 2, 3},
		{-5, 2, -3},
		{4, 3, 1},
		{5, 3, 2},
		{-4, 3, -1},
		{-5, 3, -2},
		{6, -4, -2},
		{0, 7, 0},
	}

	for _, tc := range testCases {
		i := new(big.Int)
		DivRound(big.NewInt(tc.a), big.NewInt(tc.b), i)
		require.Equal(t, tc.want, i.Int64(), "round(%d/%d)", tc.a, tc.b)
	}

	a := big.NewInt(9)
	DivRound(a, big.NewInt(2), a)
	require.Equal(t, int64(5), a.Int64())
}

func TestCenter(t *testing.T) {
	m := big.NewInt(10)
	mHalf := big.NewInt(5)
	require.Equal(t, int64(4), Center(big.NewInt(4), m, mHalf).Int64())
	require.Equal(t, int64(-5), Center(big.NewInt(5), m, mHalf).Int64())
	require.Equal(t, int64(-1), Center(big.NewInt(9), m, mHalf).Int64())
}

func TestProduct(t *testing.T) {
	require.Equal(t, int64(30), Product([]uint64{2, 3, 5}).Int64())
	require.Equal(t, int64(1), Product(nil).Int64())
}

func TestLog2(t *testing.T) {
	require.InDelta(t, 10.0, Log2(big.NewInt(1024)), 1e-12)
	require.InDelta(t, 10.0, Log2(big.NewInt(-1024)), 1e-12)
	require.InDelta(t, 200.0, Log2(new(big.Int).Lsh(big.NewInt(1), 200)), 1e-12)
	require.True(t, math.IsInf(Log2(new(big.Int)), -1))
}
