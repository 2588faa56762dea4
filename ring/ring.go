// Package ring implements RNS-accelerated modular arithmetic operations for polynomials
// in the negacyclic ring Z_Q[X]/(X^N+1), including: RNS basis extension and scaling,
// number theoretic transforms, and sampling of uniform, ternary and Gaussian polynomials.
package ring

import (
	"fmt"
	"math/big"

	"github.com/libfhe/go-fhe/utils"
	"github.com/libfhe/go-fhe/utils/bignum"
)

// Ring is a structure that keeps all the variables required to operate on
// polynomials represented in the RNS basis of a moduli chain Q = q_0 * ... * q_L.
// A Ring is read-only once created and can be shared among goroutines.
type Ring struct {
	SubRings []*SubRing

	// Product of the moduli for each level
	ModulusAtLevel []*big.Int

	level int
}

// NewRing creates a new RNS Ring with degree N and coefficient moduli Moduli.
// N must be a power of two and each modulus a distinct NTT-friendly prime (q = 1 mod 2N).
func NewRing(N int, Moduli []uint64) (r *Ring, err error) {

	if len(Moduli) == 0 {
		return nil, fmt.Errorf("cannot NewRing: moduli chain is empty")
	}

	if !utils.AllDistinct(Moduli) {
		return nil, fmt.Errorf("cannot NewRing: moduli chain has duplicates")
	}

	subRings := make([]*SubRing, len(Moduli))

	for i, qi := range Moduli {
		if subRings[i], err = NewSubRing(N, qi); err != nil {
			return nil, fmt.Errorf("cannot NewRing: %w", err)
		}
	}

	return newRingFromSubRings(subRings), nil
}

// ConcatRings returns the Ring whose moduli chain is the concatenation of the
// moduli chains of the given rings at their current level. The SubRings are shared,
// no NTT constants are recomputed.
func ConcatRings(rings ...*Ring) (r *Ring, err error) {

	var subRings []*SubRing

	for _, ri := range rings {
		if len(subRings) != 0 && ri.N() != subRings[0].N {
			return nil, fmt.Errorf("cannot ConcatRings: ring degrees do not match")
		}
		subRings = append(subRings, ri.SubRings[:ri.level+1]...)
	}

	if len(subRings) == 0 {
		return nil, fmt.Errorf("cannot ConcatRings: no ring given")
	}

	moduli := make([]uint64, len(subRings))
	for i, s := range subRings {
		moduli[i] = s.Modulus
	}

	if !utils.AllDistinct(moduli) {
		return nil, fmt.Errorf("cannot ConcatRings: moduli chain has duplicates")
	}

	return newRingFromSubRings(subRings), nil
}

func newRingFromSubRings(subRings []*SubRing) (r *Ring) {

	r = &Ring{
		SubRings:       subRings,
		ModulusAtLevel: make([]*big.Int, len(subRings)),
		level:          len(subRings) - 1,
	}

	r.ModulusAtLevel[0] = bignum.NewInt(subRings[0].Modulus)
	for i := 1; i < len(subRings); i++ {
		r.ModulusAtLevel[i] = new(big.Int).Mul(r.ModulusAtLevel[i-1], bignum.NewInt(subRings[i].Modulus))
	}

	return
}

// AtLevel returns a shallow copy of the target ring configured to
// carry on operations at the specified level.
func (r *Ring) AtLevel(level int) *Ring {

	if level < 0 || level > r.MaxLevel() {
		panic(fmt.Errorf("cannot AtLevel: level=%d must be in [0, %d]", level, r.MaxLevel()))
	}

	return &Ring{
		SubRings:       r.SubRings,
		ModulusAtLevel: r.ModulusAtLevel,
		level:          level,
	}
}

// N returns the ring degree.
func (r *Ring) N() int {
	return r.SubRings[0].N
}

// LogN returns log2(ring degree).
func (r *Ring) LogN() int {
	return r.SubRings[0].LogN()
}

// Level returns the level of the current ring.
func (r *Ring) Level() int {
	return r.level
}

// MaxLevel returns the maximum level allowed by the ring (#NbModuli -1).
func (r *Ring) MaxLevel() int {
	return len(r.SubRings) - 1
}

// ModuliChain returns the list of primes in the modulus chain, up to the level of the ring.
func (r *Ring) ModuliChain() (moduli []uint64) {
	moduli = make([]uint64, r.level+1)
	for i := range moduli {
		moduli[i] = r.SubRings[i].Modulus
	}
	return
}

// ModuliChainLength returns the number of primes in the RNS basis of the ring, up to its level.
func (r *Ring) ModuliChainLength() int {
	return r.level + 1
}

// Modulus returns the modulus of the target ring at the current level as a *big.Int.
func (r *Ring) Modulus() *big.Int {
	return r.ModulusAtLevel[r.level]
}

// NewPoly creates a new polynomial with all coefficients set to 0, at the level of the ring.
func (r *Ring) NewPoly() Poly {
	return NewPoly(r.N(), r.level)
}

// Equal checks if p1 = p2 in the given Ring, up to its level.
func (r *Ring) Equal(p1, p2 Poly) bool {
	for i := 0; i < r.level+1; i++ {
		if !utils.EqualSlice(p1.Coeffs[i], p2.Coeffs[i]) {
			return false
		}
	}
	return true
}

// CheckRange returns an error if a coefficient of p is not in [0, q_i), up to the level of the ring.
func (r *Ring) CheckRange(p Poly) error {

	if p.Level() < r.level {
		return fmt.Errorf("cannot CheckRange: polynomial level %d is smaller than ring level %d", p.Level(), r.level)
	}

	for i, s := range r.SubRings[:r.level+1] {

		if len(p.Coeffs[i]) != s.N {
			return fmt.Errorf("cannot CheckRange: row %d has %d coefficients but N=%d", i, len(p.Coeffs[i]), s.N)
		}

		for j, c := range p.Coeffs[i] {
			if c >= s.Modulus {
				return fmt.Errorf("cannot CheckRange: coefficient [%d][%d]=%d is not smaller than q_%d=%d", i, j, c, i, s.Modulus)
			}
		}
	}

	return nil
}
