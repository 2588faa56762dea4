package bgv

import (
	"fmt"

	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils/sampling"
)

// KeyGenerator is a structure that stores the elements required to create new keys.
// It is not safe for concurrent use; see [KeyGenerator.ShallowCopy].
type KeyGenerator struct {
	params          Parameters
	prng            sampling.PRNG
	uniformSampler  *ring.UniformSampler
	ternarySampler  ring.Sampler
	gaussianSampler ring.Sampler
	buffQ           ring.Poly
}

// NewKeyGenerator creates a new [KeyGenerator] drawing its randomness from prng.
// The same parameters and PRNG state always produce the same keys.
// If prng is nil, a [sampling.ThreadSafePRNG] is used.
func NewKeyGenerator(params Parameters, prng sampling.PRNG) (kgen *KeyGenerator, err error) {

	if params.IsZero() {
		return nil, fmt.Errorf("cannot NewKeyGenerator: %w: parameters are not initialized", ErrInvalidParameters)
	}

	if prng == nil {
		if prng, err = sampling.NewPRNG(); err != nil {
			return nil, fmt.Errorf("cannot NewKeyGenerator: %w", err)
		}
	}

	return newKeyGenerator(params, prng), nil
}

func newKeyGenerator(params Parameters, prng sampling.PRNG) *KeyGenerator {

	ringQ := params.RingQ()

	ternarySampler, err := ring.NewSampler(prng, ringQ, params.Xs())
	if err != nil {
		panic(fmt.Errorf("cannot newKeyGenerator: %w", err))
	}

	gaussianSampler, err := ring.NewSampler(prng, ringQ, params.Xe())
	if err != nil {
		panic(fmt.Errorf("cannot newKeyGenerator: %w", err))
	}

	return &KeyGenerator{
		params:          params,
		prng:            prng,
		uniformSampler:  ring.NewUniformSampler(prng, ringQ),
		ternarySampler:  ternarySampler,
		gaussianSampler: gaussianSampler,
		buffQ:           ringQ.NewPoly(),
	}
}

// ShallowCopy creates a shallow copy of this [KeyGenerator] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers and samplers are reallocated. The receiver and the returned
// KeyGenerator share the same PRNG, which must then be safe for concurrent use.
func (kgen *KeyGenerator) ShallowCopy() *KeyGenerator {
	return newKeyGenerator(kgen.params, kgen.prng)
}

// GenKeyMaterial generates a new secret key, the corresponding public key and relinearization key.
func (kgen *KeyGenerator) GenKeyMaterial() (km *KeyMaterial, err error) {

	km = &KeyMaterial{params: kgen.params}

	if km.Sk, err = kgen.GenSecretKeyNew(); err != nil {
		return nil, fmt.Errorf("cannot GenKeyMaterial: %w", err)
	}

	if km.Pk, err = kgen.GenPublicKeyNew(km.Sk); err != nil {
		return nil, fmt.Errorf("cannot GenKeyMaterial: %w", err)
	}

	if km.Rlk, err = kgen.GenRelinearizationKeyNew(km.Sk); err != nil {
		return nil, fmt.Errorf("cannot GenKeyMaterial: %w", err)
	}

	return
}

// GenSecretKeyNew generates a new [SecretKey] with ternary coefficients.
func (kgen *KeyGenerator) GenSecretKeyNew() (sk *SecretKey, err error) {
	sk = NewSecretKey(kgen.params)
	if err = kgen.ternarySampler.Read(sk.Value); err != nil {
		return nil, fmt.Errorf("cannot GenSecretKeyNew: %w", err)
	}
	kgen.params.RingQ().NTT(sk.Value, sk.Value)
	return
}

// GenPublicKeyNew generates a new [PublicKey] (-a*s + e, a) from the provided [SecretKey].
func (kgen *KeyGenerator) GenPublicKeyNew(sk *SecretKey) (pk *PublicKey, err error) {
	pk = NewPublicKey(kgen.params)
	if err = kgen.genPair(sk.Value, pk.Value[0], pk.Value[1]); err != nil {
		return nil, fmt.Errorf("cannot GenPublicKeyNew: %w", err)
	}
	return
}

// GenRelinearizationKeyNew generates a new [RelinearizationKey] from the provided [SecretKey].
func (kgen *KeyGenerator) GenRelinearizationKeyNew(sk *SecretKey) (rlk *RelinearizationKey, err error) {

	ringQ := kgen.params.RingQ()

	rlk = NewRelinearizationKey(kgen.params)

	s2 := ringQ.NewPoly()
	ringQ.MulCoeffsBarrett(sk.Value, sk.Value, s2)

	for i := range rlk.Value {

		b, a := rlk.Value[i][0], rlk.Value[i][1]

		if err = kgen.genPair(sk.Value, b, a); err != nil {
			return nil, fmt.Errorf("cannot GenRelinearizationKeyNew: %w", err)
		}

		// g_i is the constant polynomial 1 mod q_i and 0 mod q_j, so that in the
		// NTT domain g_i * s^2 is s^2 on the i-th row and zero elsewhere.
		qi := ringQ.SubRings[i].Modulus
		row, s2i := b.Coeffs[i], s2.Coeffs[i]
		for j := range row {
			row[j] = ring.CRed(row[j]+s2i[j], qi)
		}
	}

	return
}

// genPair samples a uniform a and a Gaussian e and sets b = -a*s + e, all in the NTT domain.
func (kgen *KeyGenerator) genPair(s, b, a ring.Poly) (err error) {

	ringQ := kgen.params.RingQ()

	if err = kgen.uniformSampler.Read(a); err != nil {
		return
	}

	if err = kgen.gaussianSampler.Read(b); err != nil {
		return
	}

	ringQ.NTT(b, b)
	ringQ.MulCoeffsBarrett(a, s, kgen.buffQ)
	ringQ.Sub(b, kgen.buffQ, b)

	return
}
