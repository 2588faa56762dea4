package bgv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/google/go-cmp/cmp"
	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils"
	"github.com/libfhe/go-fhe/utils/bignum"
	"github.com/libfhe/go-fhe/utils/buffer"
)

const (
	// MaxLogN is the log2 of the largest supported ring degree.
	MaxLogN = 17

	// MaxLogM is the largest supported bit-size of the primes of the moduli chain.
	MaxLogM = 60

	// MaxModuliCount is the largest supported number of primes in the moduli chain.
	MaxModuliCount = 64

	// DefaultSigma is the standard deviation of the error distribution.
	DefaultSigma = 3.2

	// DefaultBound is the truncation bound of the error distribution.
	DefaultBound = 6 * DefaultSigma
)

var (
	// DefaultXs is the secret distribution: uniform over {-1, 0, 1}.
	DefaultXs = ring.Ternary{P: 2.0 / 3.0}

	// DefaultXe is the error distribution.
	DefaultXe = ring.DiscreteGaussian{Sigma: DefaultSigma, Bound: DefaultBound}
)

// ParametersLiteral is a literal representation of BGV parameters. It has public fields and
// is used to express unchecked user-defined parameters literally into Go programs.
// The [NewParametersFromLiteral] function is used to generate the actual checked parameters
// from the literal representation.
//
// LogN is the log2 of the ring degree N, LogM the bit-size of the primes of the moduli chain,
// LogQ the targeted bit-size of the ciphertext modulus and T the plaintext modulus.
// The moduli chain is made of LogQ/LogM + 1 primes.
type ParametersLiteral struct {
	LogN int
	LogQ int
	LogM int
	T    uint64
}

// Parameters represents a parameter set for the BGV cryptosystem. Its fields are private and
// immutable. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	logN   int
	logQ   int
	logM   int
	t      uint64
	qi     []uint64
	pi     []uint64
	ringQ  *ring.Ring
	ringP  *ring.Ring
	deltas []*big.Int
}

// NewParameters instantiates a set of BGV parameters from the log2 of the ring degree, the
// targeted bit-size of the ciphertext modulus, the bit-size of its primes and the plaintext modulus.
// It returns the empty parameters Parameters{} and an error wrapping [ErrInvalidParameters]
// if the specified parameters are invalid.
func NewParameters(logN, logQ, logM int, t uint64) (params Parameters, err error) {

	if err = checkLiteral(logN, logQ, logM, t); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w", err)
	}

	N := 1 << logN

	var qi []uint64
	if qi, err = ring.GenerateNTTPrimes(logM, 2*N, logQ/logM+1); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	for i, q := range qi {
		if t >= q || utils.GCD(t, q) != 1 {
			return Parameters{}, fmt.Errorf("cannot NewParameters: %w: T=%d must be smaller than and coprime with q_%d=%d", ErrInvalidParameters, t, i, q)
		}
	}

	var pi []uint64
	if pi, err = genAuxiliaryModuli(N, qi); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	params = Parameters{
		logN: logN,
		logQ: logQ,
		logM: logM,
		t:    t,
		qi:   qi,
		pi:   pi,
	}

	if params.ringQ, err = ring.NewRing(N, qi); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	if params.ringP, err = ring.NewRing(N, pi); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParameters: %w: %w", ErrInvalidParameters, err)
	}

	T := bignum.NewInt(t)
	params.deltas = make([]*big.Int, len(qi))
	for level := range params.deltas {
		params.deltas[level] = new(big.Int)
		bignum.DivRound(params.ringQ.ModulusAtLevel[level], T, params.deltas[level])
	}

	return
}

// NewParametersFromLiteral instantiates a set of BGV parameters from a [ParametersLiteral] specification.
// It returns the empty parameters Parameters{} and a non-nil error if the specified parameters are invalid.
func NewParametersFromLiteral(pl ParametersLiteral) (Parameters, error) {
	return NewParameters(pl.LogN, pl.LogQ, pl.LogM, pl.T)
}

func checkLiteral(logN, logQ, logM int, t uint64) error {
	switch {
	case logN < 1 || logN > MaxLogN:
		return fmt.Errorf("%w: LogN=%d must be in [1, %d]", ErrInvalidParameters, logN, MaxLogN)
	case t <= 1:
		return fmt.Errorf("%w: T=%d must be greater than 1", ErrInvalidParameters, t)
	case logM <= 0 || logM > MaxLogM:
		return fmt.Errorf("%w: LogM=%d must be in [1, %d]", ErrInvalidParameters, logM, MaxLogM)
	case logM >= logQ:
		return fmt.Errorf("%w: LogM=%d must be smaller than LogQ=%d", ErrInvalidParameters, logM, logQ)
	case logQ/logM+1 > MaxModuliCount:
		return fmt.Errorf("%w: LogQ/LogM+1=%d exceeds the maximum number of moduli %d", ErrInvalidParameters, logQ/logM+1, MaxModuliCount)
	}
	return nil
}

// genAuxiliaryModuli returns NTT-friendly primes, continuing upward from the last prime of qi,
// whose product P satisfies P > 4 * N * Q. The product of two ciphertexts over Q,
// with centered coefficients, is then exact modulo Q * P.
func genAuxiliaryModuli(N int, qi []uint64) (pi []uint64, err error) {

	bound := new(big.Int).Mul(bignum.Product(qi), bignum.NewInt(4*N))

	P := big.NewInt(1)
	tmp := new(big.Int)

	for q := qi[len(qi)-1]; P.Cmp(bound) <= 0; {
		if q, err = ring.NextNTTPrime(q, 2*N); err != nil {
			return nil, fmt.Errorf("cannot generate auxiliary moduli: %w", err)
		}
		pi = append(pi, q)
		P.Mul(P, tmp.SetUint64(q))
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target Parameters.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN: p.logN,
		LogQ: p.logQ,
		LogM: p.logM,
		T:    p.t,
	}
}

// N returns the ring degree.
func (p Parameters) N() int {
	return 1 << p.logN
}

// LogN returns the log2 of the ring degree.
func (p Parameters) LogN() int {
	return p.logN
}

// LogQ returns the targeted bit-size of the ciphertext modulus.
func (p Parameters) LogQ() int {
	return p.logQ
}

// LogM returns the bit-size of the primes of the ciphertext moduli chain.
func (p Parameters) LogM() int {
	return p.logM
}

// LogQTrue returns the log2 of the actual ciphertext modulus Q.
func (p Parameters) LogQTrue() float64 {
	if p.ringQ == nil {
		return 0
	}
	return bignum.Log2(p.ringQ.Modulus())
}

// LogP returns the log2 of the auxiliary modulus P.
func (p Parameters) LogP() float64 {
	if p.ringP == nil {
		return 0
	}
	return bignum.Log2(p.ringP.Modulus())
}

// T returns the plaintext modulus.
func (p Parameters) T() uint64 {
	return p.t
}

// Q returns a new slice with the primes of the ciphertext moduli chain.
func (p Parameters) Q() []uint64 {
	qi := make([]uint64, len(p.qi))
	copy(qi, p.qi)
	return qi
}

// QCount returns the number of primes of the ciphertext moduli chain.
func (p Parameters) QCount() int {
	return len(p.qi)
}

// P returns a new slice with the primes of the auxiliary moduli chain.
func (p Parameters) P() []uint64 {
	pi := make([]uint64, len(p.pi))
	copy(pi, p.pi)
	return pi
}

// PCount returns the number of primes of the auxiliary moduli chain.
func (p Parameters) PCount() int {
	return len(p.pi)
}

// MaxLevel returns the maximum level of a ciphertext.
func (p Parameters) MaxLevel() int {
	return len(p.qi) - 1
}

// RingQ returns a pointer to ringQ.
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// RingP returns a pointer to ringP.
func (p Parameters) RingP() *ring.Ring {
	return p.ringP
}

// Delta returns round(Q_level / T), the scaling factor of the plaintext at the given level.
func (p Parameters) Delta(level int) *big.Int {
	return new(big.Int).Set(p.deltas[level])
}

// Xs returns the distribution of the secret.
func (p Parameters) Xs() ring.DistributionParameters {
	return DefaultXs
}

// Xe returns the distribution of the error.
func (p Parameters) Xe() ring.DistributionParameters {
	return DefaultXe
}

// IsZero returns true if the target Parameters is the zero value Parameters{}.
func (p Parameters) IsZero() bool {
	return p.ringQ == nil
}

// Equal checks two Parameter structs for equality.
func (p Parameters) Equal(other *Parameters) (res bool) {
	res = p.logN == other.logN
	res = res && p.logQ == other.logQ
	res = res && p.logM == other.logM
	res = res && p.t == other.t
	res = res && cmp.Equal(p.qi, other.qi)
	res = res && cmp.Equal(p.pi, other.pi)
	return
}

// String returns a compact description of the parameters.
func (p Parameters) String() string {
	return fmt.Sprintf("LogN=%d/LogQ=%d/LogM=%d/T=%d/Qi=%d/Pi=%d", p.logN, p.logQ, p.logM, p.t, p.QCount(), p.PCount())
}

// BinarySize returns the serialized size of the object in bytes.
func (p Parameters) BinarySize() int {
	return 12
}

// WriteTo writes the object on an io.Writer: LogN as uint8, LogQ as uint16,
// LogM as uint8 and T as uint64, little-endian.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint8(w, uint8(p.logN)); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteUint16(w, uint16(p.logQ)); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteUint8(w, uint8(p.logM)); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteUint64(w, p.t); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()

	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer and instantiates the corresponding
// Parameters. See [Parameters.WriteTo] for the format.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {

	var pl ParametersLiteral
	if n, err = readParametersLiteral(r, &pl); err != nil {
		return
	}

	*p, err = NewParametersFromLiteral(pl)
	return
}

func readParametersLiteral(r io.Reader, pl *ParametersLiteral) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int
		var logN, logM uint8
		var logQ uint16

		if inc, err = buffer.ReadUint8(r, &logN); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if inc, err = buffer.ReadUint16(r, &logQ); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if inc, err = buffer.ReadUint8(r, &logM); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if inc, err = buffer.ReadUint64(r, &pl.T); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		pl.LogN = int(logN)
		pl.LogQ = int(logQ)
		pl.LogM = int(logM)

		return

	default:
		return readParametersLiteral(bufio.NewReader(r), pl)
	}
}

// MarshalBinary returns a []byte representation of the parameter set.
func (p Parameters) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err := p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a []byte created by [Parameters.MarshalBinary] or
// [Parameters.WriteTo] on the object.
func (p *Parameters) UnmarshalBinary(data []byte) (err error) {
	buf := buffer.NewBuffer(data)
	if _, err = p.ReadFrom(buf); err != nil {
		return
	}
	if buf.Size() != 0 {
		return fmt.Errorf("cannot UnmarshalBinary: %d trailing bytes", buf.Size())
	}
	return
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}
