package bgv

import (
	"fmt"

	"github.com/libfhe/go-fhe/ring"
)

// Decryptor is a structure used to decrypt [Ciphertext]. It stores the secret-key.
// It is not safe for concurrent use; see [Decryptor.ShallowCopy].
type Decryptor struct {
	params  Parameters
	sk      *SecretKey
	encoder *Encoder
	buffQ   ring.Poly
}

// NewDecryptor instantiates a new [Decryptor] for the given parameters and secret key.
func NewDecryptor(params Parameters, sk *SecretKey) (dec *Decryptor, err error) {

	if params.IsZero() {
		return nil, fmt.Errorf("cannot NewDecryptor: %w: parameters are not initialized", ErrInvalidParameters)
	}

	if sk == nil || sk.Value.Level() != params.MaxLevel() {
		return nil, fmt.Errorf("cannot NewDecryptor: %w: secret key is not at level %d", ErrParameterMismatch, params.MaxLevel())
	}

	return &Decryptor{
		params:  params,
		sk:      sk,
		encoder: NewEncoder(params),
		buffQ:   params.RingQ().NewPoly(),
	}, nil
}

// ShallowCopy creates a shallow copy of [Decryptor] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated.
func (dec *Decryptor) ShallowCopy() *Decryptor {
	return &Decryptor{
		params:  dec.params,
		sk:      dec.sk,
		encoder: dec.encoder.ShallowCopy(),
		buffQ:   dec.params.RingQ().NewPoly(),
	}
}

// Decrypt decrypts ct and returns the N plaintext values round(T * [c0 + c1*s (+ c2*s^2)]_Q / Q) mod T.
func (dec *Decryptor) Decrypt(ct *Ciphertext) (values []uint64, err error) {
	pt := NewPlaintext(dec.params)
	if err = dec.DecryptPlaintext(ct, pt); err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}
	return pt.Value, nil
}

// DecryptPlaintext decrypts ct on pt.
func (dec *Decryptor) DecryptPlaintext(ct *Ciphertext, pt *Plaintext) (err error) {

	if err = ct.checkShape(dec.params); err != nil {
		return fmt.Errorf("cannot DecryptPlaintext: %w", err)
	}

	level := ct.Level()
	dec.phase(ct, dec.buffQ)
	dec.encoder.ScaleDown(dec.buffQ, level, pt)

	return
}

// phase sets pol to c0 + c1*s (+ c2*s^2) mod Q_level, in the coefficient domain.
func (dec *Decryptor) phase(ct *Ciphertext, pol ring.Poly) {

	ringQ := dec.params.RingQ().AtLevel(ct.Level())

	// Horner evaluation of sum c_i * s^i
	degree := ct.Degree()
	ringQ.MulCoeffsBarrett(ct.Value[degree], dec.sk.Value, pol)
	for i := degree - 1; i > 0; i-- {
		ringQ.Add(pol, ct.Value[i], pol)
		ringQ.MulCoeffsBarrett(pol, dec.sk.Value, pol)
	}
	ringQ.Add(pol, ct.Value[0], pol)

	ringQ.INTT(pol, pol)
}
