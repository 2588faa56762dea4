package bgv

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils/bignum"
)

// Plaintext is a vector of N integers modulo the plaintext modulus T,
// embedded coefficient-wise in Z_T[X]/(X^N+1).
type Plaintext struct {
	Value []uint64
}

// NewPlaintext allocates a new zero [Plaintext].
func NewPlaintext(params Parameters) *Plaintext {
	return &Plaintext{Value: make([]uint64, params.N())}
}

// Encoder is a type that embeds plaintexts into polynomials over Q and back.
// It is not safe for concurrent use; see [Encoder.ShallowCopy].
type Encoder struct {
	params Parameters

	// qDivTMForm[level][i] = MForm(floor(Q_level/T) mod q_i)
	qDivTMForm [][]uint64
	// qModT[level] = Q_level mod T
	qModT []uint64

	T       *big.Int
	bigBuff []*big.Int
}

// NewEncoder creates a new [Encoder] from the provided parameters.
func NewEncoder(params Parameters) *Encoder {

	ringQ := params.RingQ()

	T := bignum.NewInt(params.T())

	qDivTMForm := make([][]uint64, params.QCount())
	qModT := make([]uint64, params.QCount())

	quo, rem, tmp, qi := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	for level := range qDivTMForm {
		quo.QuoRem(ringQ.ModulusAtLevel[level], T, rem)
		qModT[level] = rem.Uint64()
		qDivTMForm[level] = make([]uint64, level+1)
		for i, s := range ringQ.SubRings[:level+1] {
			d := tmp.Mod(quo, qi.SetUint64(s.Modulus)).Uint64()
			qDivTMForm[level][i] = ring.MForm(d, s.Modulus, s.BRedConstant)
		}
	}

	return &Encoder{
		params:     params,
		qDivTMForm: qDivTMForm,
		qModT:      qModT,
		T:          T,
		bigBuff:    make([]*big.Int, params.N()),
	}
}

// ShallowCopy creates a shallow copy of [Encoder] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated.
func (ecd *Encoder) ShallowCopy() *Encoder {
	return &Encoder{
		params:     ecd.params,
		qDivTMForm: ecd.qDivTMForm,
		qModT:      ecd.qModT,
		T:          ecd.T,
		bigBuff:    make([]*big.Int, ecd.params.N()),
	}
}

// Encode stores values in pt, padded with zeros.
// It returns an error wrapping [ErrPlaintextOutOfRange] if len(values) > N
// or if a value is not smaller than T.
func (ecd *Encoder) Encode(values []uint64, pt *Plaintext) (err error) {

	if len(values) > ecd.params.N() {
		return fmt.Errorf("cannot Encode: %w: %d values for N=%d", ErrPlaintextOutOfRange, len(values), ecd.params.N())
	}

	T := ecd.params.T()
	for i, v := range values {
		if v >= T {
			return fmt.Errorf("cannot Encode: %w: values[%d]=%d is not smaller than T=%d", ErrPlaintextOutOfRange, i, v, T)
		}
	}

	if len(pt.Value) != ecd.params.N() {
		pt.Value = make([]uint64, ecd.params.N())
	}

	copy(pt.Value, values)
	clear(pt.Value[len(values):])

	return
}

// EncodeNew encodes values on a newly allocated [Plaintext].
func (ecd *Encoder) EncodeNew(values []uint64) (pt *Plaintext, err error) {
	pt = NewPlaintext(ecd.params)
	return pt, ecd.Encode(values, pt)
}

// ScaleUp sets pol to round(Q_level * pt / T) mod Q_level, in the coefficient domain.
// With Q_level = floor(Q_level/T) * T + r, each coefficient is computed exactly as
// floor(Q_level/T) * m + round(r * m / T), so that [ScaleDown] recovers m for any T < q_i.
func (ecd *Encoder) ScaleUp(pt *Plaintext, level int, pol ring.Poly) {

	ringQ := ecd.params.RingQ().AtLevel(level)

	T := ecd.params.T()
	r := ecd.qModT[level]

	// round(r * m / T) < T
	corr := make([]uint64, len(pt.Value))
	for j, m := range pt.Value {
		hi, lo := bits.Mul64(r, m)
		lo, carry := bits.Add64(lo, T>>1, 0)
		corr[j], _ = bits.Div64(hi+carry, lo, T)
	}

	for i, s := range ringQ.SubRings[:level+1] {
		qDivT := ecd.qDivTMForm[level][i]
		q, mredconstant := s.Modulus, s.MRedConstant
		row := pol.Coeffs[i]
		for j, m := range pt.Value {
			row[j] = ring.CRed(ring.MRed(m, qDivT, q, mredconstant)+corr[j], q)
		}
	}
}

// ScaleDown sets pt to round(T * pol / Q_level) mod T, where pol is in the
// coefficient domain and its coefficients are centered modulo Q_level.
func (ecd *Encoder) ScaleDown(pol ring.Poly, level int, pt *Plaintext) {

	ringQ := ecd.params.RingQ().AtLevel(level)

	ringQ.PolyToBigintCentered(pol, ecd.bigBuff)

	Q := ringQ.Modulus()

	if len(pt.Value) != ecd.params.N() {
		pt.Value = make([]uint64, ecd.params.N())
	}

	for j, c := range ecd.bigBuff {
		c.Mul(c, ecd.T)
		bignum.DivRound(c, Q, c)
		pt.Value[j] = c.Mod(c, ecd.T).Uint64()
	}
}
