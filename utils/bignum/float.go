package bignum

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// DefaultPrecision is the precision used by the logarithm helpers.
const DefaultPrecision = uint(128)

const ln2 = "0.6931471805599453094172321214581765680755001343602552541206800094933936219696947156058633269964186875"

// Ln2 returns ln(2) with prec bits of precision.
func Ln2(prec uint) *big.Float {
	f, _ := new(big.Float).SetPrec(prec).SetString(ln2)
	return f
}

// NewFloat creates a new big.Float element with "prec" bits of precision.
// Valid types for x are: int, int64, uint, uint64, float64, *big.Int or *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float)
	y.SetPrec(prec)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case float64:
		y.SetFloat64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Errorf("cannot NewFloat: valid types are int, int64, uint, uint64, float64, *big.Int or *big.Float but is %T", x))
	}

	return
}

// Log returns ln(x) with the precision of x.
func Log(x *big.Float) (ln *big.Float) {
	return bigfloat.Log(x)
}

// Log2 returns log2(|x|) as a float64.
// Returns -Inf if x is zero.
func Log2(x *big.Int) float64 {

	if x.Sign() == 0 {
		return math.Inf(-1)
	}

	xf := NewFloat(new(big.Int).Abs(x), DefaultPrecision)

	log2, _ := new(big.Float).Quo(Log(xf), Ln2(DefaultPrecision)).Float64()

	return log2
}
