package bgv

import (
	"fmt"

	"github.com/libfhe/go-fhe/ring"
	"github.com/zeebo/blake3"
)

// SecretKey is a type for generic RLWE secret keys.
// The Value field stores the polynomial in the NTT domain.
type SecretKey struct {
	Value ring.Poly
}

// NewSecretKey generates a new [SecretKey] with zero values.
func NewSecretKey(params Parameters) *SecretKey {
	return &SecretKey{Value: params.RingQ().NewPoly()}
}

// Equal performs a deep equal.
func (sk *SecretKey) Equal(other *SecretKey) bool {
	if sk == nil || other == nil {
		return sk == other
	}
	return sk.Value.Equal(&other.Value)
}

// CopyNew creates a deep copy of the receiver secret key and returns it.
func (sk *SecretKey) CopyNew() *SecretKey {
	if sk == nil {
		return nil
	}
	return &SecretKey{Value: sk.Value.CopyNew()}
}

// PublicKey is a type for generic RLWE public keys.
// The Value field stores the polynomials (b, a) = (-a*s + e, a) in the NTT domain.
type PublicKey struct {
	Value [2]ring.Poly
}

// NewPublicKey returns a new [PublicKey] with zero values.
func NewPublicKey(params Parameters) *PublicKey {
	return &PublicKey{Value: [2]ring.Poly{params.RingQ().NewPoly(), params.RingQ().NewPoly()}}
}

// Equal performs a deep equal.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.Value[0].Equal(&other.Value[0]) && pk.Value[1].Equal(&other.Value[1])
}

// CopyNew creates a deep copy of the receiver public key and returns it.
func (pk *PublicKey) CopyNew() *PublicKey {
	if pk == nil {
		return nil
	}
	return &PublicKey{Value: [2]ring.Poly{pk.Value[0].CopyNew(), pk.Value[1].CopyNew()}}
}

// RelinearizationKey is a key switching key from s^2 to s, decomposed in the RNS basis.
// Value[i] = (-a_i*s + e_i + g_i*s^2, a_i), in the NTT domain, where g_i = 1 mod q_i
// and g_i = 0 mod q_j for j != i.
type RelinearizationKey struct {
	Value [][2]ring.Poly
}

// NewRelinearizationKey allocates a new [RelinearizationKey] with zero values,
// one pair of polynomials per prime of the moduli chain.
func NewRelinearizationKey(params Parameters) *RelinearizationKey {
	rlk := &RelinearizationKey{Value: make([][2]ring.Poly, params.QCount())}
	for i := range rlk.Value {
		rlk.Value[i] = [2]ring.Poly{params.RingQ().NewPoly(), params.RingQ().NewPoly()}
	}
	return rlk
}

// Equal performs a deep equal.
func (rlk *RelinearizationKey) Equal(other *RelinearizationKey) bool {

	if rlk == nil || other == nil {
		return rlk == other
	}

	if len(rlk.Value) != len(other.Value) {
		return false
	}

	for i := range rlk.Value {
		if !rlk.Value[i][0].Equal(&other.Value[i][0]) || !rlk.Value[i][1].Equal(&other.Value[i][1]) {
			return false
		}
	}

	return true
}

// CopyNew creates a deep copy of the receiver relinearization key and returns it.
func (rlk *RelinearizationKey) CopyNew() *RelinearizationKey {
	if rlk == nil {
		return nil
	}
	Value := make([][2]ring.Poly, len(rlk.Value))
	for i := range Value {
		Value[i] = [2]ring.Poly{rlk.Value[i][0].CopyNew(), rlk.Value[i][1].CopyNew()}
	}
	return &RelinearizationKey{Value: Value}
}

// KeyMaterial bundles the keys generated for one parameter set.
type KeyMaterial struct {
	params Parameters
	Sk     *SecretKey
	Pk     *PublicKey
	Rlk    *RelinearizationKey
}

// NewKeyMaterial returns a placeholder [KeyMaterial] bound to params, with all keys
// set to zero. It is meant to be the target of [KeyMaterial.UnmarshalBinary].
func NewKeyMaterial(params Parameters) *KeyMaterial {
	return &KeyMaterial{
		params: params,
		Sk:     NewSecretKey(params),
		Pk:     NewPublicKey(params),
		Rlk:    NewRelinearizationKey(params),
	}
}

// Parameters returns the parameters the key material is bound to.
func (km *KeyMaterial) Parameters() Parameters {
	return km.params
}

// Equal performs a deep equal on the parameters and every coefficient of every key.
// Keys that are not set are equal only to keys that are not set either.
func (km *KeyMaterial) Equal(other *KeyMaterial) bool {
	if km == nil || other == nil {
		return km == other
	}
	return km.params.Equal(&other.params) &&
		km.Sk.Equal(other.Sk) &&
		km.Pk.Equal(other.Pk) &&
		km.Rlk.Equal(other.Rlk)
}

// CopyNew creates a deep copy of the receiver key material and returns it.
func (km *KeyMaterial) CopyNew() *KeyMaterial {
	return &KeyMaterial{
		params: km.params,
		Sk:     km.Sk.CopyNew(),
		Pk:     km.Pk.CopyNew(),
		Rlk:    km.Rlk.CopyNew(),
	}
}

// Fingerprint returns the BLAKE3 digest of the serialization of the key material.
func (km *KeyMaterial) Fingerprint() (digest [32]byte, err error) {
	var data []byte
	if data, err = km.MarshalBinary(); err != nil {
		return digest, fmt.Errorf("cannot Fingerprint: %w", err)
	}
	return blake3.Sum256(data), nil
}
