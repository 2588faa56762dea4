package ring

import (
	"fmt"

	"github.com/libfhe/go-fhe/utils/sampling"
)

// TernarySampler keeps the state of a polynomial sampler in the ternary distribution.
type TernarySampler struct {
	baseSampler
	source *sampling.Source
	p      float64
	h      int
	buff   []int64
}

// NewTernarySampler creates a new instance of TernarySampler from a PRNG, the ring definition and the distribution
// parameters (see type Ternary).
func NewTernarySampler(prng sampling.PRNG, baseRing *Ring, X Ternary) (ts *TernarySampler, err error) {

	switch {
	case X.P != 0 && X.H == 0:
		if X.P < 0 || X.P > 1 {
			return nil, fmt.Errorf("cannot NewTernarySampler: invalid P=%f: must be in (0, 1]", X.P)
		}
	case X.P == 0 && X.H != 0:
		if X.H < 0 || X.H > baseRing.N() {
			return nil, fmt.Errorf("cannot NewTernarySampler: invalid H=%d: must be in (0, N=%d]", X.H, baseRing.N())
		}
	default:
		return nil, fmt.Errorf("cannot NewTernarySampler: invalid distribution parameters: exactly one of P or H must be set")
	}

	ts = &TernarySampler{
		source: sampling.NewSource(prng),
		p:      X.P,
		h:      X.H,
		buff:   make([]int64, baseRing.N()),
	}
	ts.baseRing = baseRing
	ts.prng = prng

	return
}

// AtLevel returns an instance of the target TernarySampler to sample at the given level.
// The returned sampler cannot be used concurrently to the original sampler.
func (ts *TernarySampler) AtLevel(level int) Sampler {
	return &TernarySampler{
		baseSampler: baseSampler{prng: ts.prng, baseRing: ts.baseRing.AtLevel(level)},
		source:      ts.source,
		p:           ts.p,
		h:           ts.h,
		buff:        ts.buff,
	}
}

// Read samples a polynomial into pol.
func (ts *TernarySampler) Read(pol Poly) (err error) {
	if err = ts.sample(); err != nil {
		return
	}
	ts.baseRing.signedToRNS(ts.buff, pol, false)
	return
}

// ReadNew allocates and samples a polynomial at the level of the sampler.
func (ts *TernarySampler) ReadNew() (pol Poly, err error) {
	pol = ts.baseRing.NewPoly()
	err = ts.Read(pol)
	return
}

// ReadAndAdd samples a polynomial and adds it on pol.
func (ts *TernarySampler) ReadAndAdd(pol Poly) (err error) {
	if err = ts.sample(); err != nil {
		return
	}
	ts.baseRing.signedToRNS(ts.buff, pol, true)
	return
}

// sample fills the internal buffer with ternary coefficients.
func (ts *TernarySampler) sample() (err error) {

	r := ts.source.Rand()
	coeffs := ts.buff

	if ts.h == 0 {
		for i := range coeffs {
			if r.Float64() < ts.p {
				coeffs[i] = 1 - 2*int64(r.Uint64()&1)
			} else {
				coeffs[i] = 0
			}
		}
	} else {

		for i := range coeffs {
			coeffs[i] = 0
		}

		// Partial Fisher-Yates: the first H entries of the permutation are the support.
		N := len(coeffs)
		index := make([]int, N)
		for i := range index {
			index[i] = i
		}

		for i := 0; i < ts.h; i++ {
			j := i + r.IntN(N-i)
			index[i], index[j] = index[j], index[i]
			coeffs[index[i]] = 1 - 2*int64(r.Uint64()&1)
		}
	}

	if err = ts.source.Err(); err != nil {
		return fmt.Errorf("cannot TernarySampler.Read: %w", err)
	}

	return
}
