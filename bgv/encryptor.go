package bgv

import (
	"fmt"

	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils/sampling"
)

// Encryptor is a type for encrypting plaintexts under a [PublicKey].
// It is not safe for concurrent use; see [Encryptor.ShallowCopy].
type Encryptor struct {
	params  Parameters
	pk      *PublicKey
	encoder *Encoder

	prng            sampling.PRNG
	ternarySampler  ring.Sampler
	gaussianSampler ring.Sampler

	// u, e and Delta*m
	buffQ [3]ring.Poly
}

// NewEncryptor instantiates a new [Encryptor] for the given parameters and public key,
// drawing its randomness from prng. If prng is nil, a [sampling.ThreadSafePRNG] is used.
func NewEncryptor(params Parameters, pk *PublicKey, prng sampling.PRNG) (enc *Encryptor, err error) {

	if params.IsZero() {
		return nil, fmt.Errorf("cannot NewEncryptor: %w: parameters are not initialized", ErrInvalidParameters)
	}

	if pk == nil || pk.Value[0].Level() != params.MaxLevel() || pk.Value[1].Level() != params.MaxLevel() {
		return nil, fmt.Errorf("cannot NewEncryptor: %w: public key is not at level %d", ErrParameterMismatch, params.MaxLevel())
	}

	if prng == nil {
		if prng, err = sampling.NewPRNG(); err != nil {
			return nil, fmt.Errorf("cannot NewEncryptor: %w", err)
		}
	}

	return newEncryptor(params, pk, NewEncoder(params), prng), nil
}

func newEncryptor(params Parameters, pk *PublicKey, encoder *Encoder, prng sampling.PRNG) *Encryptor {

	ringQ := params.RingQ()

	ternarySampler, err := ring.NewSampler(prng, ringQ, params.Xs())
	if err != nil {
		panic(fmt.Errorf("cannot newEncryptor: %w", err))
	}

	gaussianSampler, err := ring.NewSampler(prng, ringQ, params.Xe())
	if err != nil {
		panic(fmt.Errorf("cannot newEncryptor: %w", err))
	}

	return &Encryptor{
		params:          params,
		pk:              pk,
		encoder:         encoder,
		prng:            prng,
		ternarySampler:  ternarySampler,
		gaussianSampler: gaussianSampler,
		buffQ:           [3]ring.Poly{ringQ.NewPoly(), ringQ.NewPoly(), ringQ.NewPoly()},
	}
}

// ShallowCopy creates a shallow copy of this [Encryptor] in which the read-only data-structures are
// shared with the receiver and the temporary buffers and samplers are reallocated. The receiver
// and the returned Encryptor share the same PRNG, which must then be safe for concurrent use.
func (enc *Encryptor) ShallowCopy() *Encryptor {
	return newEncryptor(enc.params, enc.pk, enc.encoder.ShallowCopy(), enc.prng)
}

// WithPRNG returns a shallow copy of the receiver drawing its randomness from prng.
func (enc *Encryptor) WithPRNG(prng sampling.PRNG) *Encryptor {
	return newEncryptor(enc.params, enc.pk, enc.encoder.ShallowCopy(), prng)
}

// Encrypt encodes values, padded with zeros to N, and encrypts them at the maximum level.
// It returns an error wrapping [ErrPlaintextOutOfRange] if len(values) > N or if a value
// is not smaller than T, and an error wrapping [ErrInsufficientEntropy] if the PRNG fails.
func (enc *Encryptor) Encrypt(values []uint64) (ct *Ciphertext, err error) {

	var pt *Plaintext
	if pt, err = enc.encoder.EncodeNew(values); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	ct = NewCiphertext(enc.params, 1, enc.params.MaxLevel())

	if err = enc.EncryptPlaintext(pt, ct); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	return
}

// EncryptPlaintext encrypts pt on ct, at the level of ct:
//
//	c0 = b*u + e1 + round(Q_level*m/T)
//	c1 = a*u + e2
//
// where u is ternary and e1, e2 are Gaussian. ct is resized to degree 1.
func (enc *Encryptor) EncryptPlaintext(pt *Plaintext, ct *Ciphertext) (err error) {

	if len(pt.Value) != enc.params.N() {
		return fmt.Errorf("cannot EncryptPlaintext: %w: plaintext has %d values for N=%d", ErrPlaintextOutOfRange, len(pt.Value), enc.params.N())
	}

	for i, v := range pt.Value {
		if v >= enc.params.T() {
			return fmt.Errorf("cannot EncryptPlaintext: %w: value %d at index %d is not smaller than T=%d", ErrPlaintextOutOfRange, v, i, enc.params.T())
		}
	}

	if len(ct.Value) == 0 {
		return fmt.Errorf("cannot EncryptPlaintext: %w: ciphertext is empty", ErrInvalidCiphertext)
	}

	if !ct.params.Equal(&enc.params) {
		return fmt.Errorf("cannot EncryptPlaintext: %w", ErrParameterMismatch)
	}

	level := ct.Level()
	if level < 0 || level > enc.params.MaxLevel() {
		return fmt.Errorf("cannot EncryptPlaintext: %w: level %d is not in [0, %d]", ErrInvalidCiphertext, level, enc.params.MaxLevel())
	}

	ct.Resize(1, level)

	ringQ := enc.params.RingQ().AtLevel(level)

	u, e, m := enc.buffQ[0], enc.buffQ[1], enc.buffQ[2]

	if err = enc.ternarySampler.Read(u); err != nil {
		return fmt.Errorf("cannot EncryptPlaintext: %w", err)
	}
	ringQ.NTT(u, u)

	enc.encoder.ScaleUp(pt, level, m)

	// c0 = b*u + NTT(e1 + round(Q_level*m/T))
	if err = enc.gaussianSampler.Read(e); err != nil {
		return fmt.Errorf("cannot EncryptPlaintext: %w", err)
	}
	ringQ.Add(e, m, e)
	ringQ.NTT(e, e)
	c0 := ct.Value[0]
	ringQ.MulCoeffsBarrett(enc.pk.Value[0], u, c0)
	ringQ.Add(c0, e, c0)

	// c1 = a*u + NTT(e2)
	if err = enc.gaussianSampler.Read(e); err != nil {
		return fmt.Errorf("cannot EncryptPlaintext: %w", err)
	}
	ringQ.NTT(e, e)
	c1 := ct.Value[1]
	ringQ.MulCoeffsBarrett(enc.pk.Value[1], u, c1)
	ringQ.Add(c1, e, c1)

	return
}
