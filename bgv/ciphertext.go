package bgv

import (
	"fmt"

	"github.com/libfhe/go-fhe/ring"
	"github.com/zeebo/blake3"
)

// Ciphertext is a BGV ciphertext: a vector of degree+1 polynomials over Q_level,
// in the NTT domain, such that c0 + c1*s (+ c2*s^2) = Delta*m + e mod Q_level.
type Ciphertext struct {
	params Parameters
	Value  []ring.Poly
}

// NewCiphertext returns a new [Ciphertext] of the given degree and level with zero values.
func NewCiphertext(params Parameters, degree, level int) *Ciphertext {
	ct := &Ciphertext{params: params, Value: make([]ring.Poly, degree+1)}
	for i := range ct.Value {
		ct.Value[i] = ring.NewPoly(params.N(), level)
	}
	return ct
}

// Parameters returns the parameters the ciphertext is bound to.
func (ct *Ciphertext) Parameters() Parameters {
	return ct.params
}

// Degree returns the degree of the target ciphertext.
func (ct *Ciphertext) Degree() int {
	return len(ct.Value) - 1
}

// Level returns the level of the target ciphertext.
func (ct *Ciphertext) Level() int {
	return ct.Value[0].Level()
}

// T returns the plaintext modulus of the target ciphertext.
func (ct *Ciphertext) T() uint64 {
	return ct.params.T()
}

// Resize resizes the degree and the level of the target ciphertext.
func (ct *Ciphertext) Resize(degree, level int) {

	if ct.Degree() > degree {
		ct.Value = ct.Value[:degree+1]
	} else if ct.Degree() < degree {
		for ct.Degree() < degree {
			ct.Value = append(ct.Value, ring.NewPoly(ct.params.N(), level))
		}
	}

	for i := range ct.Value {
		ct.Value[i].Resize(level)
	}
}

// Equal performs a deep equal on the parameters, the shape and every coefficient.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {

	if !ct.params.Equal(&other.params) || len(ct.Value) != len(other.Value) {
		return false
	}

	for i := range ct.Value {
		if !ct.Value[i].Equal(&other.Value[i]) {
			return false
		}
	}

	return true
}

// CopyNew creates a deep copy of the receiver ciphertext and returns it.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	Value := make([]ring.Poly, len(ct.Value))
	for i := range Value {
		Value[i] = ct.Value[i].CopyNew()
	}
	return &Ciphertext{params: ct.params, Value: Value}
}

// Fingerprint returns the BLAKE3 digest of the serialization of the ciphertext.
func (ct *Ciphertext) Fingerprint() (digest [32]byte, err error) {
	var data []byte
	if data, err = ct.MarshalBinary(); err != nil {
		return digest, fmt.Errorf("cannot Fingerprint: %w", err)
	}
	return blake3.Sum256(data), nil
}

// checkShape returns an error if the ciphertext is not bound to params or
// has an unsupported degree or level.
func (ct *Ciphertext) checkShape(params Parameters) error {

	if ct == nil || len(ct.Value) == 0 {
		return fmt.Errorf("%w: ciphertext is empty", ErrInvalidCiphertext)
	}

	if !ct.params.Equal(&params) {
		return fmt.Errorf("%w: ciphertext parameters %s do not match %s", ErrParameterMismatch, ct.params, params)
	}

	if d := ct.Degree(); d < 1 || d > 2 {
		return fmt.Errorf("%w: degree %d is not 1 or 2", ErrInvalidCiphertext, d)
	}

	level := ct.Level()
	if level < 0 || level > params.MaxLevel() {
		return fmt.Errorf("%w: level %d is not in [0, %d]", ErrInvalidCiphertext, level, params.MaxLevel())
	}

	for i := range ct.Value {
		if ct.Value[i].Level() != level || ct.Value[i].N() != params.N() {
			return fmt.Errorf("%w: polynomial %d has shape N=%d level=%d", ErrInvalidCiphertext, i, ct.Value[i].N(), ct.Value[i].Level())
		}
	}

	return nil
}
