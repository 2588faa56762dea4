// Package bignum implements arbitrary precision arithmetic helpers on top of math/big.
package bignum

import (
	"fmt"
	"math/big"
)

// NewInt allocates a new *big.Int.
// Accepted types are: string, uint, uint64, int64, int, *big.Float or *big.Int.
func NewInt(x interface{}) (y *big.Int) {

	y = new(big.Int)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case string:
		y.SetString(x, 0)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case int64:
		y.SetInt64(x)
	case int:
		y.SetInt64(int64(x))
	case *big.Float:
		x.Int(y)
	case *big.Int:
		y.Set(x)
	default:
		panic(fmt.Sprintf("cannot NewInt: accepted types are string, uint, uint64, int, int64, *big.Float, *big.Int, but is %T", x))
	}

	return
}

// DivRound sets i to round(a/b), rounding half away from zero.
// The receiver i may alias a or b.
func DivRound(a, b, i *big.Int) {
	var q, r big.Int
	q.QuoRem(a, b, &r)
	r.Lsh(&r, 1)
	if r.CmpAbs(b) >= 0 {
		if a.Sign() == b.Sign() {
			q.Add(&q, big.NewInt(1))
		} else {
			q.Sub(&q, big.NewInt(1))
		}
	}
	i.Set(&q)
}

// Center maps x in [0, m) to the representative in [-m/2, m/2).
// The value is modified in place and returned.
func Center(x, m, mHalf *big.Int) *big.Int {
	if x.Cmp(mHalf) >= 0 {
		x.Sub(x, m)
	}
	return x
}

// Product returns the product of all the given moduli.
func Product(moduli []uint64) (prod *big.Int) {
	prod = big.NewInt(1)
	tmp := new(big.Int)
	for _, qi := range moduli {
		prod.Mul(prod, tmp.SetUint64(qi))
	}
	return
}
