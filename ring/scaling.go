package ring

import (
	"fmt"
)

// DivRoundByLastModulus divides (rounded) the polynomial by its last modulus q_l.
// Given p0 at the level l of the ring, p1 = round(p0/q_l) mod Q_{l-1}.
// p0 and p1 must be in the coefficient domain, p1 must be at least at level l-1
// and may alias p0.
func (r *Ring) DivRoundByLastModulus(p0, p1 Poly) {

	level := r.level

	if level == 0 {
		panic(fmt.Errorf("cannot DivRoundByLastModulus: ring is already at level 0"))
	}

	last := r.SubRings[level]
	qL := last.Modulus
	qLHalf := qL >> 1

	// round(x/q_l) = (x + q_l/2 - [x + q_l/2]_{q_l}) / q_l
	lastRow := make([]uint64, r.N())
	for j, c := range p0.Coeffs[level] {
		lastRow[j] = CRed(c+qLHalf, qL)
	}

	for i, s := range r.SubRings[:level] {

		q := s.Modulus
		bredconstant := s.BRedConstant
		mredconstant := s.MRedConstant

		qLInv := MForm(ModInverse(BRedAdd(qL, q, bredconstant), q), q, bredconstant)
		hi := BRedAdd(qLHalf, q, bredconstant)

		a, b := p0.Coeffs[i], p1.Coeffs[i]

		for j := range b {
			x := CRed(a[j]+hi, q)
			y := BRedAdd(lastRow[j], q, bredconstant)
			b[j] = MRed(x+q-y, qLInv, q, mredconstant)
		}
	}
}

// DivRoundByLastModulusNTT divides (rounded) the polynomial by its last modulus q_l.
// Identical to DivRoundByLastModulus but p0 and p1 are in the NTT domain.
// p0 is left unchanged unless it aliases p1.
func (r *Ring) DivRoundByLastModulusNTT(p0, p1 Poly) {

	buff := r.NewPoly()
	r.INTT(p0, buff)
	r.DivRoundByLastModulus(buff, buff)

	rLow := r.AtLevel(r.level - 1)
	rLow.NTT(buff, p1)
}
