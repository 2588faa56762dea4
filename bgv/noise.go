package bgv

import (
	"fmt"
	"math"
	"math/big"

	"github.com/libfhe/go-fhe/utils/bignum"
	"github.com/montanaflynn/stats"
)

// Noise gathers statistics on the noise of a ciphertext.
type Noise struct {
	// Max is the log2 of the largest absolute noise coefficient.
	Max float64
	// Std is the log2 of the standard deviation of the noise coefficients.
	Std float64
	// Mean is the mean of the noise coefficients.
	Mean float64
	// Budget is log2(Delta/2) - Max: the ciphertext decrypts correctly while it is positive.
	Budget float64
}

func (n Noise) String() string {
	return fmt.Sprintf("Max=%.2f/Std=%.2f/Mean=%.2f/Budget=%.2f", n.Max, n.Std, n.Mean, n.Budget)
}

// NoiseStats returns the noise of ct, decrypted with the secret key of km, with respect
// to the expected plaintext values want (padded with zeros to N).
// The noise is [c0 + c1*s (+ c2*s^2) - Delta*want]_Q_level, centered.
func NoiseStats(ct *Ciphertext, km *KeyMaterial, want []uint64) (noise Noise, err error) {

	params := km.Parameters()

	var dec *Decryptor
	if dec, err = NewDecryptor(params, km.Sk); err != nil {
		return noise, fmt.Errorf("cannot NoiseStats: %w", err)
	}

	if noise, err = dec.Noise(ct, want); err != nil {
		return noise, fmt.Errorf("cannot NoiseStats: %w", err)
	}

	return
}

// Noise returns the noise of ct with respect to the expected plaintext values want.
// See [NoiseStats].
func (dec *Decryptor) Noise(ct *Ciphertext, want []uint64) (noise Noise, err error) {

	if err = ct.checkShape(dec.params); err != nil {
		return noise, fmt.Errorf("cannot Noise: %w", err)
	}

	var pt *Plaintext
	if pt, err = dec.encoder.EncodeNew(want); err != nil {
		return noise, fmt.Errorf("cannot Noise: %w", err)
	}

	level := ct.Level()
	ringQ := dec.params.RingQ().AtLevel(level)

	dec.phase(ct, dec.buffQ)

	m := ringQ.NewPoly()
	dec.encoder.ScaleUp(pt, level, m)
	ringQ.Sub(dec.buffQ, m, dec.buffQ)

	coeffs := make([]*big.Int, dec.params.N())
	ringQ.PolyToBigintCentered(dec.buffQ, coeffs)

	values := make(stats.Float64Data, len(coeffs))
	maxAbs := new(big.Int)
	for i, c := range coeffs {
		values[i], _ = new(big.Float).SetInt(c).Float64()
		if c.CmpAbs(maxAbs) > 0 {
			maxAbs.Abs(c)
		}
	}

	var std float64
	if std, err = stats.StandardDeviation(values); err != nil {
		return noise, fmt.Errorf("cannot Noise: %w", err)
	}

	if noise.Mean, err = stats.Mean(values); err != nil {
		return noise, fmt.Errorf("cannot Noise: %w", err)
	}

	noise.Max = bignum.Log2(maxAbs)
	noise.Std = math.Log2(std)
	noise.Budget = bignum.Log2(dec.params.Delta(level)) - 1 - noise.Max

	return
}
