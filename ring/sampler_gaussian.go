package ring

import (
	"fmt"
	"math"

	"github.com/libfhe/go-fhe/utils/sampling"
)

// GaussianSampler keeps the state of a truncated Gaussian polynomial sampler.
type GaussianSampler struct {
	baseSampler
	source *sampling.Source
	xe     DiscreteGaussian
	buff   []int64
}

// NewGaussianSampler creates a new instance of GaussianSampler from a PRNG, a ring definition and
// the truncated Gaussian distribution parameters. Sigma is the desired standard deviation and
// Bound is the maximum norm of the sampled coefficients.
func NewGaussianSampler(prng sampling.PRNG, baseRing *Ring, X DiscreteGaussian) (g *GaussianSampler, err error) {

	if X.Sigma <= 0 || X.Bound < X.Sigma || X.Bound > math.MaxInt32 {
		return nil, fmt.Errorf("cannot NewGaussianSampler: invalid parameters Sigma=%f, Bound=%f", X.Sigma, X.Bound)
	}

	g = &GaussianSampler{
		source: sampling.NewSource(prng),
		xe:     X,
		buff:   make([]int64, baseRing.N()),
	}
	g.baseRing = baseRing
	g.prng = prng

	return
}

// AtLevel returns an instance of the target GaussianSampler to sample at the given level.
// The returned sampler cannot be used concurrently to the original sampler.
func (g *GaussianSampler) AtLevel(level int) Sampler {
	return &GaussianSampler{
		baseSampler: baseSampler{prng: g.prng, baseRing: g.baseRing.AtLevel(level)},
		source:      g.source,
		xe:          g.xe,
		buff:        g.buff,
	}
}

// Read samples a truncated Gaussian polynomial on pol at the level of the sampler.
func (g *GaussianSampler) Read(pol Poly) (err error) {
	if err = g.sample(); err != nil {
		return
	}
	g.baseRing.signedToRNS(g.buff, pol, false)
	return
}

// ReadNew samples a new truncated Gaussian polynomial at the level of the sampler.
func (g *GaussianSampler) ReadNew() (pol Poly, err error) {
	pol = g.baseRing.NewPoly()
	err = g.Read(pol)
	return
}

// ReadAndAdd samples a truncated Gaussian polynomial and adds it on pol.
func (g *GaussianSampler) ReadAndAdd(pol Poly) (err error) {
	if err = g.sample(); err != nil {
		return
	}
	g.baseRing.signedToRNS(g.buff, pol, true)
	return
}

// sample fills the internal buffer with rounded normal samples of norm at most Bound.
func (g *GaussianSampler) sample() (err error) {

	r := g.source.Rand()

	sigma := g.xe.Sigma
	bound := g.xe.Bound

	for i := range g.buff {

		var norm float64
		for {
			if norm = r.NormFloat64() * sigma; math.Abs(norm) <= bound {
				break
			}
		}

		g.buff[i] = int64(math.Round(norm))
	}

	if err = g.source.Err(); err != nil {
		return fmt.Errorf("cannot GaussianSampler.Read: %w", err)
	}

	return
}
