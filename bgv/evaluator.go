package bgv

import (
	"fmt"
	"math/big"

	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils"
	"github.com/libfhe/go-fhe/utils/bignum"
)

// Evaluator is a struct that holds the necessary elements to perform the homomorphic operations between ciphertexts.
// It is not safe for concurrent use; see [Evaluator.ShallowCopy].
type Evaluator struct {
	*evaluatorBase
	*evaluatorBuffers
}

type evaluatorBase struct {
	params Parameters
	rlk    *RelinearizationKey

	// ringQP[level] is ringQ at the given level concatenated with ringP.
	ringQP []*ring.Ring

	T *big.Int
}

type evaluatorBuffers struct {
	buffQ   [4]ring.Poly
	buffQP  [7]ring.Poly
	bigBuff []*big.Int
}

func newEvaluatorBuffers(params Parameters) *evaluatorBuffers {

	ringQ := params.RingQ()

	buff := new(evaluatorBuffers)
	for i := range buff.buffQ {
		buff.buffQ[i] = ringQ.NewPoly()
	}

	levelQP := params.QCount() + params.PCount() - 1
	for i := range buff.buffQP {
		buff.buffQP[i] = ring.NewPoly(params.N(), levelQP)
	}

	buff.bigBuff = make([]*big.Int, params.N())

	return buff
}

// NewEvaluator creates a new [Evaluator] that can be used to do homomorphic
// operations on ciphertexts. rlk can be nil, in which case [Evaluator.Relinearize]
// and [Evaluator.MulRelin] return an error.
func NewEvaluator(params Parameters, rlk *RelinearizationKey) (eval *Evaluator, err error) {

	if params.IsZero() {
		return nil, fmt.Errorf("cannot NewEvaluator: %w: parameters are not initialized", ErrInvalidParameters)
	}

	if rlk != nil && len(rlk.Value) != params.QCount() {
		return nil, fmt.Errorf("cannot NewEvaluator: %w: relinearization key has %d components for %d moduli", ErrParameterMismatch, len(rlk.Value), params.QCount())
	}

	ringQ, ringP := params.RingQ(), params.RingP()

	base := &evaluatorBase{
		params: params,
		rlk:    rlk,
		ringQP: make([]*ring.Ring, params.QCount()),
		T:      bignum.NewInt(params.T()),
	}

	for level := range base.ringQP {
		if base.ringQP[level], err = ring.ConcatRings(ringQ.AtLevel(level), ringP); err != nil {
			return nil, fmt.Errorf("cannot NewEvaluator: %w", err)
		}
	}

	return &Evaluator{
		evaluatorBase:    base,
		evaluatorBuffers: newEvaluatorBuffers(params),
	}, nil
}

// ShallowCopy creates a shallow copy of this [Evaluator] in which the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		evaluatorBase:    eval.evaluatorBase,
		evaluatorBuffers: newEvaluatorBuffers(eval.params),
	}
}

// Parameters returns the parameters of the evaluator.
func (eval *Evaluator) Parameters() Parameters {
	return eval.params
}

func (eval *Evaluator) checkBinary(op0, op1 *Ciphertext) (err error) {

	if err = op0.checkShape(eval.params); err != nil {
		return
	}

	if err = op1.checkShape(eval.params); err != nil {
		return
	}

	if op0.Level() != op1.Level() {
		return fmt.Errorf("%w: operands are at levels %d and %d", ErrLevelMismatch, op0.Level(), op1.Level())
	}

	return
}

// prepareOutput binds opOut to the evaluator parameters and resizes it.
func (eval *Evaluator) prepareOutput(opOut *Ciphertext, degree, level int) {
	opOut.params = eval.params
	opOut.Resize(degree, level)
}

// Add adds op1 to op0 and returns the result in opOut.
// The operands must be at the same level; the degree of opOut is the largest of both degrees.
func (eval *Evaluator) Add(op0, op1, opOut *Ciphertext) (err error) {
	if err = eval.addSub(op0, op1, opOut, false); err != nil {
		return fmt.Errorf("cannot Add: %w", err)
	}
	return
}

// AddNew adds op1 to op0 and returns the result in a newly created element.
func (eval *Evaluator) AddNew(op0, op1 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.Add(op0, op1, opOut)
}

// Sub subtracts op1 from op0 and returns the result in opOut.
// The operands must be at the same level; the degree of opOut is the largest of both degrees.
func (eval *Evaluator) Sub(op0, op1, opOut *Ciphertext) (err error) {
	if err = eval.addSub(op0, op1, opOut, true); err != nil {
		return fmt.Errorf("cannot Sub: %w", err)
	}
	return
}

// SubNew subtracts op1 from op0 and returns the result in a newly created element.
func (eval *Evaluator) SubNew(op0, op1 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.Sub(op0, op1, opOut)
}

func (eval *Evaluator) addSub(op0, op1, opOut *Ciphertext, sub bool) (err error) {

	if err = eval.checkBinary(op0, op1); err != nil {
		return
	}

	level := op0.Level()
	d0, d1 := op0.Degree(), op1.Degree()
	degree := utils.Max(d0, d1)

	ringQ := eval.params.RingQ().AtLevel(level)

	eval.prepareOutput(opOut, degree, level)

	for i := 0; i <= degree; i++ {
		switch {
		case i <= d0 && i <= d1:
			if sub {
				ringQ.Sub(op0.Value[i], op1.Value[i], opOut.Value[i])
			} else {
				ringQ.Add(op0.Value[i], op1.Value[i], opOut.Value[i])
			}
		case i <= d0:
			opOut.Value[i].Copy(op0.Value[i])
		default:
			if sub {
				ringQ.Neg(op1.Value[i], opOut.Value[i])
			} else {
				opOut.Value[i].Copy(op1.Value[i])
			}
		}
	}

	return
}

// Neg negates op0 and returns the result in opOut.
func (eval *Evaluator) Neg(op0, opOut *Ciphertext) (err error) {

	if err = op0.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot Neg: %w", err)
	}

	ringQ := eval.params.RingQ().AtLevel(op0.Level())

	eval.prepareOutput(opOut, op0.Degree(), op0.Level())

	for i := range op0.Value {
		ringQ.Neg(op0.Value[i], opOut.Value[i])
	}

	return
}

// MulScalar multiplies op0 by the plaintext scalar (taken modulo T) and returns the result in opOut.
func (eval *Evaluator) MulScalar(op0 *Ciphertext, scalar uint64, opOut *Ciphertext) (err error) {

	if err = op0.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot MulScalar: %w", err)
	}

	scalar %= eval.params.T()

	ringQ := eval.params.RingQ().AtLevel(op0.Level())

	eval.prepareOutput(opOut, op0.Degree(), op0.Level())

	for i := range op0.Value {
		ringQ.MulScalar(op0.Value[i], scalar, opOut.Value[i])
	}

	return
}

// Mul multiplies op0 by op1 and returns the result, of degree 2, in opOut.
// op0 and op1 must be of degree 1 and at the same level.
//
// The tensor product is computed exactly over the RNS basis Q_level * P and
// scaled by T/Q_level with rounding.
func (eval *Evaluator) Mul(op0, op1, opOut *Ciphertext) (err error) {

	if err = eval.checkBinary(op0, op1); err != nil {
		return fmt.Errorf("cannot Mul: %w", err)
	}

	if op0.Degree() != 1 || op1.Degree() != 1 {
		return fmt.Errorf("cannot Mul: %w: operands must be of degree 1 but are of degree %d and %d", ErrInvalidCiphertext, op0.Degree(), op1.Degree())
	}

	level := op0.Level()
	ringQ := eval.params.RingQ().AtLevel(level)
	ringQP := eval.ringQP[level]

	buffQP := eval.buffQP

	for i, p := range []ring.Poly{op0.Value[0], op0.Value[1], op1.Value[0], op1.Value[1]} {
		eval.extend(ringQ, ringQP, p, buffQP[i])
	}

	a0, a1, b0, b1 := buffQP[0], buffQP[1], buffQP[2], buffQP[3]
	d0, d1, d2 := buffQP[4], buffQP[5], buffQP[6]

	ringQP.MulCoeffsBarrett(a0, b0, d0)
	ringQP.MulCoeffsBarrett(a0, b1, d1)
	ringQP.MulCoeffsBarrettThenAdd(a1, b0, d1)
	ringQP.MulCoeffsBarrett(a1, b1, d2)

	eval.prepareOutput(opOut, 2, level)

	for i, d := range []ring.Poly{d0, d1, d2} {
		eval.scaleDown(ringQ, ringQP, d, opOut.Value[i])
	}

	return
}

// MulNew multiplies op0 by op1 and returns the result in a newly created element.
func (eval *Evaluator) MulNew(op0, op1 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.Mul(op0, op1, opOut)
}

// MulRelin multiplies op0 by op1, relinearizes the result and returns it in opOut.
func (eval *Evaluator) MulRelin(op0, op1, opOut *Ciphertext) (err error) {

	if eval.rlk == nil {
		return fmt.Errorf("cannot MulRelin: relinearization key is missing")
	}

	if err = eval.Mul(op0, op1, opOut); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	if err = eval.Relinearize(opOut, opOut); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	return
}

// MulRelinNew multiplies op0 by op1, relinearizes the result and returns it in a newly created element.
func (eval *Evaluator) MulRelinNew(op0, op1 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.MulRelin(op0, op1, opOut)
}

// extend maps the NTT-domain polynomial p over Q_level to its centered
// representative over Q_level * P, in the NTT domain.
func (eval *Evaluator) extend(ringQ, ringQP *ring.Ring, p, pQP ring.Poly) {
	buffQ := eval.buffQ[0]
	ringQ.INTT(p, buffQ)
	ringQ.PolyToBigintCentered(buffQ, eval.bigBuff)
	ringQP.SetCoefficientsBigint(eval.bigBuff, pQP)
	ringQP.NTT(pQP, pQP)
}

// scaleDown sets p to round(T * pQP / Q_level) mod Q_level, in the NTT domain,
// where pQP is in the NTT domain over Q_level * P. pQP is modified.
func (eval *Evaluator) scaleDown(ringQ, ringQP *ring.Ring, pQP, p ring.Poly) {

	ringQP.INTT(pQP, pQP)
	ringQP.PolyToBigintCentered(pQP, eval.bigBuff)

	Q := ringQ.Modulus()
	for _, c := range eval.bigBuff {
		c.Mul(c, eval.T)
		bignum.DivRound(c, Q, c)
	}

	ringQ.SetCoefficientsBigint(eval.bigBuff, p)
	ringQ.NTT(p, p)
}

// Relinearize switches the degree 2 ciphertext op0 back to degree 1 with the
// relinearization key, and returns the result in opOut. Degree 1 ciphertexts are copied.
//
// With d_i = [c2]_{q_i}, the result is (c0 + sum d_i*b_i, c1 + sum d_i*a_i).
func (eval *Evaluator) Relinearize(op0, opOut *Ciphertext) (err error) {

	if err = op0.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot Relinearize: %w", err)
	}

	level := op0.Level()

	if op0.Degree() == 1 {
		if op0 != opOut {
			eval.prepareOutput(opOut, 1, level)
			opOut.Value[0].Copy(op0.Value[0])
			opOut.Value[1].Copy(op0.Value[1])
		}
		return
	}

	if eval.rlk == nil {
		return fmt.Errorf("cannot Relinearize: relinearization key is missing")
	}

	ringQ := eval.params.RingQ().AtLevel(level)

	c2, c0, c1, d := eval.buffQ[0], eval.buffQ[1], eval.buffQ[2], eval.buffQ[3]

	ringQ.INTT(op0.Value[2], c2)
	c0.Copy(op0.Value[0])
	c1.Copy(op0.Value[1])

	for i, si := range ringQ.SubRings[:level+1] {

		row := c2.Coeffs[i]

		for j, sj := range ringQ.SubRings[:level+1] {
			if si.Modulus <= sj.Modulus {
				copy(d.Coeffs[j], row)
			} else {
				qj, bredconstant := sj.Modulus, sj.BRedConstant
				dj := d.Coeffs[j]
				for k, c := range row {
					dj[k] = ring.BRedAdd(c, qj, bredconstant)
				}
			}
		}

		ringQ.NTT(d, d)
		ringQ.MulCoeffsBarrettThenAdd(d, eval.rlk.Value[i][0], c0)
		ringQ.MulCoeffsBarrettThenAdd(d, eval.rlk.Value[i][1], c1)
	}

	eval.prepareOutput(opOut, 1, level)
	opOut.Value[0].Copy(c0)
	opOut.Value[1].Copy(c1)

	return
}

// RelinearizeNew relinearizes op0 and returns the result in a newly created element.
func (eval *Evaluator) RelinearizeNew(op0 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.Relinearize(op0, opOut)
}

// ModSwitch divides op0 by its last modulus q_level with rounding and returns the
// result, at level-1, in opOut. It returns an error wrapping [ErrLevelMismatch] if
// op0 is already at level 0.
func (eval *Evaluator) ModSwitch(op0, opOut *Ciphertext) (err error) {

	if err = op0.checkShape(eval.params); err != nil {
		return fmt.Errorf("cannot ModSwitch: %w", err)
	}

	level := op0.Level()

	if level == 0 {
		return fmt.Errorf("cannot ModSwitch: %w: ciphertext is already at level 0", ErrLevelMismatch)
	}

	ringQ := eval.params.RingQ().AtLevel(level)

	if op0 != opOut {
		eval.prepareOutput(opOut, op0.Degree(), level-1)
	}

	for i := range op0.Value {
		ringQ.DivRoundByLastModulusNTT(op0.Value[i], opOut.Value[i])
	}

	opOut.Resize(op0.Degree(), level-1)

	return
}

// ModSwitchNew divides op0 by its last modulus and returns the result in a newly created element.
func (eval *Evaluator) ModSwitchNew(op0 *Ciphertext) (opOut *Ciphertext, err error) {
	opOut = new(Ciphertext)
	return opOut, eval.ModSwitch(op0, opOut)
}
