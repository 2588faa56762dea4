// Package bgv implements a Ring-Learning-With-Errors based homomorphic encryption scheme
// over integers modulo a plaintext modulus T, with BGV parameters and plaintexts scaled by
// Delta = round(Q/T). It provides key generation, encryption, decryption, homomorphic
// arithmetic and a versioned binary serialization of keys and ciphertexts.
package bgv

import (
	"fmt"
	"runtime"

	"github.com/libfhe/go-fhe/utils"
	"github.com/libfhe/go-fhe/utils/concurrency"
	"github.com/libfhe/go-fhe/utils/sampling"
)

// Scheme bundles the operations of the cryptosystem for one parameter set.
// A Scheme is read-only and can be shared among goroutines; the objects it
// returns (keys, ciphertexts, evaluators) are not.
type Scheme struct {
	params Parameters
}

// NewScheme creates a new [Scheme] bound to params.
func NewScheme(params Parameters) (*Scheme, error) {
	if params.IsZero() {
		return nil, fmt.Errorf("cannot NewScheme: %w: parameters are not initialized", ErrInvalidParameters)
	}
	return &Scheme{params: params}, nil
}

// Parameters returns the parameters of the scheme.
func (s *Scheme) Parameters() Parameters {
	return s.params
}

func (s *Scheme) checkKeyMaterial(km *KeyMaterial) error {
	if km == nil {
		return fmt.Errorf("%w: key material is nil", ErrInvalidParameters)
	}
	if !km.params.Equal(&s.params) {
		return fmt.Errorf("%w: key material parameters %s do not match %s", ErrParameterMismatch, km.params, s.params)
	}
	return nil
}

// KeyGen generates a new [KeyMaterial] drawing its randomness from prng.
// If prng is nil, a [sampling.ThreadSafePRNG] is used.
func (s *Scheme) KeyGen(prng sampling.PRNG) (km *KeyMaterial, err error) {

	var kgen *KeyGenerator
	if kgen, err = NewKeyGenerator(s.params, prng); err != nil {
		return nil, fmt.Errorf("cannot KeyGen: %w", err)
	}

	if km, err = kgen.GenKeyMaterial(); err != nil {
		return nil, fmt.Errorf("cannot KeyGen: %w", err)
	}

	return
}

// KeyGenFromSeed deterministically generates a new [KeyMaterial] from seed.
// The randomness of the key generator is a SHAKE256 stream keyed by a key derived from seed.
func (s *Scheme) KeyGenFromSeed(seed []byte) (km *KeyMaterial, err error) {

	var prng sampling.PRNG
	if prng, err = sampling.NewShakePRNG(sampling.DeriveKey(seed, "bgv/keygen")); err != nil {
		return nil, fmt.Errorf("cannot KeyGenFromSeed: %w", err)
	}

	if km, err = s.KeyGen(prng); err != nil {
		return nil, fmt.Errorf("cannot KeyGenFromSeed: %w", err)
	}

	return
}

// Encrypt encrypts values under the public key of km, drawing its randomness from prng.
// If prng is nil, a [sampling.ThreadSafePRNG] is used.
func (s *Scheme) Encrypt(km *KeyMaterial, values []uint64, prng sampling.PRNG) (ct *Ciphertext, err error) {

	if err = s.checkKeyMaterial(km); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	var enc *Encryptor
	if enc, err = NewEncryptor(s.params, km.Pk, prng); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	if ct, err = enc.Encrypt(values); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	return
}

// EncryptBatch encrypts each vector of values under the public key of km, concurrently.
// Each worker draws its randomness from its own [sampling.ThreadSafePRNG].
// The i-th ciphertext encrypts values[i]. The first error encountered is returned.
func (s *Scheme) EncryptBatch(km *KeyMaterial, values [][]uint64) (cts []*Ciphertext, err error) {

	if err = s.checkKeyMaterial(km); err != nil {
		return nil, fmt.Errorf("cannot EncryptBatch: %w", err)
	}

	if len(values) == 0 {
		return []*Ciphertext{}, nil
	}

	workers := utils.Min(runtime.NumCPU(), len(values))

	encryptors := make([]*Encryptor, workers)
	for i := range encryptors {

		var prng sampling.PRNG
		if prng, err = sampling.NewPRNG(); err != nil {
			return nil, fmt.Errorf("cannot EncryptBatch: %w", err)
		}

		if encryptors[i], err = NewEncryptor(s.params, km.Pk, prng); err != nil {
			return nil, fmt.Errorf("cannot EncryptBatch: %w", err)
		}
	}

	cts = make([]*Ciphertext, len(values))

	m := concurrency.NewResourceManager(encryptors)
	for i := range values {
		m.Run(func(enc *Encryptor) (err error) {
			if cts[i], err = enc.Encrypt(values[i]); err != nil {
				return fmt.Errorf("values[%d]: %w", i, err)
			}
			return
		})
	}

	if err = m.Wait(); err != nil {
		return nil, fmt.Errorf("cannot EncryptBatch: %w", err)
	}

	return
}

// Decrypt decrypts ct with the secret key of km and returns the N plaintext values.
func (s *Scheme) Decrypt(km *KeyMaterial, ct *Ciphertext) (values []uint64, err error) {

	if err = s.checkKeyMaterial(km); err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	var dec *Decryptor
	if dec, err = NewDecryptor(s.params, km.Sk); err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	if values, err = dec.Decrypt(ct); err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	return
}

// NewKeyMaterial returns a zero [KeyMaterial] bound to the parameters of the scheme,
// to be used as the target of [KeyMaterial.UnmarshalBinary].
func (s *Scheme) NewKeyMaterial() *KeyMaterial {
	return NewKeyMaterial(s.params)
}

// NewCiphertext returns a zero degree 1 [Ciphertext] at the maximum level bound to the
// parameters of the scheme, to be used as the target of [Ciphertext.UnmarshalBinary].
func (s *Scheme) NewCiphertext() *Ciphertext {
	return NewCiphertext(s.params, 1, s.params.MaxLevel())
}

// Evaluator returns a new [Evaluator] using the relinearization key of km.
func (s *Scheme) Evaluator(km *KeyMaterial) (eval *Evaluator, err error) {

	if err = s.checkKeyMaterial(km); err != nil {
		return nil, fmt.Errorf("cannot Evaluator: %w", err)
	}

	if eval, err = NewEvaluator(s.params, km.Rlk); err != nil {
		return nil, fmt.Errorf("cannot Evaluator: %w", err)
	}

	return
}
