package ring

import (
	"math/big"
)

// Add evaluates p3 = p1 + p2 coefficient-wise in the ring.
func (r *Ring) Add(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		a, b, c := p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i]
		for j := range c {
			c[j] = CRed(a[j]+b[j], q)
		}
	}
}

// Sub evaluates p3 = p1 - p2 coefficient-wise in the ring.
func (r *Ring) Sub(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		a, b, c := p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i]
		for j := range c {
			c[j] = CRed(a[j]+q-b[j], q)
		}
	}
}

// Neg evaluates p2 = -p1 coefficient-wise in the ring.
func (r *Ring) Neg(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		a, b := p1.Coeffs[i], p2.Coeffs[i]
		for j := range b {
			b[j] = CRed(q-a[j], q)
		}
	}
}

// AddScalar evaluates p2 = p1 + scalar coefficient-wise in the ring.
func (r *Ring) AddScalar(p1 Poly, scalar uint64, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		sc := BRedAdd(scalar, q, s.BRedConstant)
		a, b := p1.Coeffs[i], p2.Coeffs[i]
		for j := range b {
			b[j] = CRed(a[j]+sc, q)
		}
	}
}

// MulScalar evaluates p2 = p1 * scalar coefficient-wise in the ring.
func (r *Ring) MulScalar(p1 Poly, scalar uint64, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		bredconstant := s.BRedConstant
		sc := MForm(BRedAdd(scalar, q, bredconstant), q, bredconstant)
		a, b := p1.Coeffs[i], p2.Coeffs[i]
		for j := range b {
			b[j] = MRed(a[j], sc, q, s.MRedConstant)
		}
	}
}

// MulScalarBigint evaluates p2 = p1 * scalar coefficient-wise in the ring.
// The scalar may be negative.
func (r *Ring) MulScalarBigint(p1 Poly, scalar *big.Int, p2 Poly) {
	tmp := new(big.Int)
	qi := new(big.Int)
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		sc := MForm(tmp.Mod(scalar, qi.SetUint64(q)).Uint64(), q, s.BRedConstant)
		a, b := p1.Coeffs[i], p2.Coeffs[i]
		for j := range b {
			b[j] = MRed(a[j], sc, q, s.MRedConstant)
		}
	}
}

// MulCoeffsBarrett evaluates p3 = p1 * p2 coefficient-wise in the ring.
// In the NTT domain this is the polynomial product.
func (r *Ring) MulCoeffsBarrett(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		bredconstant := s.BRedConstant
		a, b, c := p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i]
		for j := range c {
			c[j] = BRed(a[j], b[j], q, bredconstant)
		}
	}
}

// MulCoeffsBarrettThenAdd evaluates p3 = p3 + p1 * p2 coefficient-wise in the ring.
func (r *Ring) MulCoeffsBarrettThenAdd(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		bredconstant := s.BRedConstant
		a, b, c := p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i]
		for j := range c {
			c[j] = CRed(c[j]+BRed(a[j], b[j], q, bredconstant), q)
		}
	}
}

// MulPoly evaluates p3 = p1 * p2 in Z_Q[X]/(X^N+1), with p1, p2 and p3 in the
// coefficient domain. The product is computed with the NTT.
// p3 may alias p1 or p2.
func (r *Ring) MulPoly(p1, p2, p3 Poly) {
	a := r.NewPoly()
	b := r.NewPoly()
	r.NTT(p1, a)
	r.NTT(p2, b)
	r.MulCoeffsBarrett(a, b, a)
	r.INTT(a, p3)
}

// MulPolyNaive evaluates p3 = p1 * p2 in Z_Q[X]/(X^N+1) with the schoolbook
// negacyclic convolution, in O(N^2). It returns the same coefficients as MulPoly.
// p3 may alias p1 or p2.
func (r *Ring) MulPolyNaive(p1, p2, p3 Poly) {

	N := r.N()
	acc := make([]uint64, N)

	for i, s := range r.SubRings[:r.level+1] {

		q := s.Modulus
		bredconstant := s.BRedConstant
		a, b := p1.Coeffs[i], p2.Coeffs[i]

		for k := range acc {
			acc[k] = 0
		}

		for j := 0; j < N; j++ {
			if a[j] == 0 {
				continue
			}
			for k := 0; k < N; k++ {
				prod := BRed(a[j], b[k], q, bredconstant)
				if idx := j + k; idx < N {
					acc[idx] = CRed(acc[idx]+prod, q)
				} else {
					// X^N = -1
					acc[idx-N] = CRed(acc[idx-N]+q-prod, q)
				}
			}
		}

		copy(p3.Coeffs[i], acc)
	}
}
