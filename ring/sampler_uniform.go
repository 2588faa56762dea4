package ring

import (
	"encoding/binary"
	"fmt"

	"github.com/libfhe/go-fhe/utils/sampling"
)

const uniformBufferSize = 1024

// UniformSampler wraps a util.PRNG and represents the state of a sampler of uniform polynomials.
type UniformSampler struct {
	baseSampler
	randomBufferN []byte
	ptr           int
}

// NewUniformSampler creates a new instance of UniformSampler from a PRNG and ring definition.
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) (u *UniformSampler) {
	u = new(UniformSampler)
	u.baseRing = baseRing
	u.prng = prng
	u.randomBufferN = make([]byte, uniformBufferSize)
	u.ptr = uniformBufferSize
	return
}

// AtLevel returns an instance of the target UniformSampler to sample at the given level.
// The returned sampler has its own buffer but reads from the same PRNG, so
// it cannot be used concurrently to the original sampler.
func (u *UniformSampler) AtLevel(level int) Sampler {
	return NewUniformSampler(u.prng, u.baseRing.AtLevel(level))
}

// Read generates a new polynomial with coefficients following a uniform distribution over [0, Qi-1].
func (u *UniformSampler) Read(pol Poly) (err error) {
	return u.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadAndAdd generates a new polynomial with coefficients following a uniform distribution over [0, Qi-1]
// and adds it on pol.
func (u *UniformSampler) ReadAndAdd(pol Poly) (err error) {
	return u.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

// ReadNew generates a new polynomial with coefficients following a uniform distribution over [0, Qi-1].
func (u *UniformSampler) ReadNew() (pol Poly, err error) {
	pol = u.baseRing.NewPoly()
	err = u.Read(pol)
	return
}

func (u *UniformSampler) read(pol Poly, f func(a, b, c uint64) uint64) (err error) {

	for i, s := range u.baseRing.SubRings[:u.baseRing.level+1] {

		qi := s.Modulus
		mask := s.Mask
		coeffs := pol.Coeffs[i]

		for j := range coeffs {

			var v uint64

			// rejection sampling on the masked value
			for {
				if u.ptr == uniformBufferSize {
					if err = sampling.ReadFull(u.prng, u.randomBufferN); err != nil {
						return fmt.Errorf("cannot UniformSampler.Read: %w", err)
					}
					u.ptr = 0
				}

				v = binary.LittleEndian.Uint64(u.randomBufferN[u.ptr:]) & mask
				u.ptr += 8

				if v < qi {
					break
				}
			}

			coeffs[j] = f(coeffs[j], v, qi)
		}
	}

	return
}
