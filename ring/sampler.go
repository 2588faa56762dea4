package ring

import (
	"fmt"

	"github.com/libfhe/go-fhe/utils/sampling"
)

// Sampler is an interface for random polynomial samplers.
// Any failure of the underlying PRNG is returned as an error
// wrapping sampling.ErrInsufficientEntropy.
type Sampler interface {
	Read(pol Poly) (err error)
	ReadNew() (pol Poly, err error)
	ReadAndAdd(pol Poly) (err error)
	AtLevel(level int) Sampler
}

// DistributionParameters is an interface for distribution
// parameters in the ring.
// There are three implementation of this interface:
//   - DiscreteGaussian for sampling polynomials with discretized
//     gaussian coefficient of given standard deviation and bound.
//   - Ternary for sampling polynomials with coefficients in [-1, 1].
//   - Uniform for sampling polynomial with uniformly random
//     coefficients in the ring.
type DistributionParameters interface {
	// Type returns a string representation of the distribution name.
	Type() string
	mustBeDist()
}

// DiscreteGaussian represents the parameters of a
// discrete Gaussian distribution with standard
// deviation Sigma and bounds [-Bound, Bound].
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Ternary represent the parameters of a distribution with coefficients
// in [-1, 0, 1]. Only one of its field must be set to a non-zero value:
//
//   - If P is set, each coefficient in the polynomial is sampled in [-1, 0, 1]
//     with probabilities [0.5*P, 1-P, 0.5*P].
//   - if H is set, the coefficients are sampled uniformly in the set of ternary
//     polynomials with H non-zero coefficients (i.e., of hamming weight H).
type Ternary struct {
	P float64
	H int
}

// Uniform represents the parameters of a uniform distribution
// i.e., with coefficients uniformly distributed in the given ring.
type Uniform struct{}

// Type returns the distribution name.
func (d DiscreteGaussian) Type() string {
	return "DiscreteGaussian"
}

func (d DiscreteGaussian) mustBeDist() {}

// Type returns the distribution name.
func (d Ternary) Type() string {
	return "Ternary"
}

func (d Ternary) mustBeDist() {}

// Type returns the distribution name.
func (d Uniform) Type() string {
	return "Uniform"
}

func (d Uniform) mustBeDist() {}

// NewSampler instantiates a new Sampler of distribution X reading from prng,
// operating at the level of baseRing.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters) (Sampler, error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X)
	case Ternary:
		return NewTernarySampler(prng, baseRing, X)
	case Uniform:
		return NewUniformSampler(prng, baseRing), nil
	default:
		return nil, fmt.Errorf("cannot NewSampler: invalid distribution: want ring.DiscreteGaussian, ring.Ternary or ring.Uniform but have %T", X)
	}
}

type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
}

// signedToRNS writes the signed small integers coeffs in each RNS row of pol,
// up to the level of the ring. If add is true, the values are added instead.
func (r *Ring) signedToRNS(coeffs []int64, pol Poly, add bool) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		row := pol.Coeffs[i]
		for j, c := range coeffs {
			var v uint64
			if c >= 0 {
				v = BRedAdd(uint64(c), q, s.BRedConstant)
			} else {
				v = q - BRedAdd(uint64(-c), q, s.BRedConstant)
				if v == q {
					v = 0
				}
			}
			if add {
				row[j] = CRed(row[j]+v, q)
			} else {
				row[j] = v
			}
		}
	}
}
