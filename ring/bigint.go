package ring

import (
	"math/big"
)

// crtBasis returns, for each modulus q_i of the ring up to its level, the CRT
// reconstruction constant (Q/q_i) * [(Q/q_i)^-1]_{q_i}.
func (r *Ring) crtBasis() (basis []*big.Int) {

	Q := r.Modulus()
	basis = make([]*big.Int, r.level+1)

	qi := new(big.Int)
	tmp := new(big.Int)

	for i, s := range r.SubRings[:r.level+1] {
		qi.SetUint64(s.Modulus)
		basis[i] = new(big.Int).Quo(Q, qi)
		tmp.ModInverse(basis[i], qi)
		basis[i].Mul(basis[i], tmp)
	}

	return
}

// PolyToBigint reconstructs p1 and stores the coefficients, in [0, Q), in coeffsBigint.
// coeffsBigint must have length N; nil entries are allocated.
func (r *Ring) PolyToBigint(p1 Poly, coeffsBigint []*big.Int) {

	Q := r.Modulus()
	basis := r.crtBasis()

	tmp := new(big.Int)

	for j := range coeffsBigint[:r.N()] {

		if coeffsBigint[j] == nil {
			coeffsBigint[j] = new(big.Int)
		}

		c := coeffsBigint[j].SetUint64(0)

		for i := range basis {
			c.Add(c, tmp.Mul(tmp.SetUint64(p1.Coeffs[i][j]), basis[i]))
		}

		c.Mod(c, Q)
	}
}

// PolyToBigintCentered reconstructs p1 and stores the coefficients, centered
// in [-(Q-1)/2, (Q-1)/2] for an odd Q, in coeffsBigint.
func (r *Ring) PolyToBigintCentered(p1 Poly, coeffsBigint []*big.Int) {

	r.PolyToBigint(p1, coeffsBigint)

	Q := r.Modulus()
	QHalf := new(big.Int).Rsh(Q, 1)

	for _, c := range coeffsBigint[:r.N()] {
		if c.Cmp(QHalf) > 0 {
			c.Sub(c, Q)
		}
	}
}

// SetCoefficientsBigint sets the coefficients of p1 from an array of big integers,
// which may be negative. Each coefficient is reduced modulo every q_i up to the level of the ring.
func (r *Ring) SetCoefficientsBigint(coeffs []*big.Int, p1 Poly) {

	qi := new(big.Int)
	tmp := new(big.Int)

	for i, s := range r.SubRings[:r.level+1] {
		qi.SetUint64(s.Modulus)
		row := p1.Coeffs[i]
		for j, c := range coeffs[:r.N()] {
			row[j] = tmp.Mod(c, qi).Uint64()
		}
	}
}
