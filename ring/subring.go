package ring

import (
	"fmt"
	"math/bits"

	"github.com/libfhe/go-fhe/utils"
)

// SubRing is a struct storing precomputation
// for fast modular reduction and NTT for
// a given modulus.
type SubRing struct {
	// Polynomial nb.Coefficients
	N int

	// Modulus
	Modulus uint64

	// 2^bit_length(Modulus) - 1
	Mask uint64

	// Fast reduction constants
	BRedConstant [2]uint64 // Barrett Reduction
	MRedConstant uint64    // Montgomery Reduction

	// Primitive 2N-th root of unity
	PrimitiveRoot uint64

	// Powers of the primitive root in bit-reversed order, Montgomery form
	RootsForward  []uint64
	RootsBackward []uint64

	// N^-1 mod Modulus in Montgomery form
	NInv uint64
}

// NewSubRing creates a new SubRing for the negacyclic ring Z_Modulus[X]/(X^N+1)
// and generates its NTT constants.
// N must be a power of two and Modulus an NTT-friendly prime: Modulus = 1 mod 2N.
func NewSubRing(N int, Modulus uint64) (s *SubRing, err error) {

	if N < 2 || N&(N-1) != 0 {
		return nil, fmt.Errorf("cannot NewSubRing: invalid ring degree %d: must be a power of two greater than one", N)
	}

	if bits.Len64(Modulus) > MaxModulusBitSize {
		return nil, fmt.Errorf("cannot NewSubRing: modulus %d exceeds %d bits", Modulus, MaxModulusBitSize)
	}

	if !IsPrime(Modulus) {
		return nil, fmt.Errorf("cannot NewSubRing: modulus %d is not prime", Modulus)
	}

	if Modulus&uint64(2*N-1) != 1 {
		return nil, fmt.Errorf("cannot NewSubRing: modulus %d is not 1 mod 2N=%d", Modulus, 2*N)
	}

	s = &SubRing{
		N:            N,
		Modulus:      Modulus,
		Mask:         (1 << uint64(bits.Len64(Modulus-1))) - 1,
		BRedConstant: GenBRedConstant(Modulus),
		MRedConstant: GenMRedConstant(Modulus),
	}

	s.generateNTTConstants()

	return
}

// LogN returns log2(N).
func (s *SubRing) LogN() int {
	return bits.Len64(uint64(s.N) - 1)
}

// generateNTTConstants computes the primitive 2N-th root of unity psi = g^((q-1)/2N)
// from the smallest quadratic non-residue g, and the tables of its powers.
// Since g^((q-1)/2) = -1, psi^N = -1 and psi has order exactly 2N.
func (s *SubRing) generateNTTConstants() {

	q := s.Modulus
	N := s.N
	logN := s.LogN()
	bredconstant := s.BRedConstant

	g := uint64(2)
	for ModExp(g, (q-1)>>1, q) != q-1 {
		g++
	}

	psi := ModExp(g, (q-1)/uint64(2*N), q)
	psiInv := ModInverse(psi, q)

	s.PrimitiveRoot = psi
	s.RootsForward = make([]uint64, N)
	s.RootsBackward = make([]uint64, N)

	power, powerInv := uint64(1), uint64(1)

	for j := 0; j < N; j++ {
		idx := utils.BitReverse64(j, logN)
		s.RootsForward[idx] = MForm(power, q, bredconstant)
		s.RootsBackward[idx] = MForm(powerInv, q, bredconstant)
		power = BRed(power, psi, q, bredconstant)
		powerInv = BRed(powerInv, psiInv, q, bredconstant)
	}

	s.NInv = MForm(ModInverse(uint64(N), q), q, bredconstant)
}
