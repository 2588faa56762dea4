package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxModulusBitSize is the largest bit size of an NTT-friendly prime returned by the generators.
// Keeping q < 2^61 leaves enough headroom for the lazy additions of the butterflies.
const MaxModulusBitSize = 61

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// NextNTTPrime returns the smallest NthRoot NTT-friendly prime strictly greater than q,
// that is the smallest prime p > q with p = 1 mod NthRoot.
func NextNTTPrime(q uint64, NthRoot int) (qNext uint64, err error) {

	step := uint64(NthRoot)

	// smallest value = 1 mod NthRoot strictly greater than q
	qNext = q - (q-1)%step + step
	if q == 0 {
		qNext = 1 + step
	}

	for !IsPrime(qNext) {

		qNext += step

		if bits.Len64(qNext) > MaxModulusBitSize {
			return 0, fmt.Errorf("cannot NextNTTPrime: next NTT prime exceeds the maximum bit-size of %d bits", MaxModulusBitSize)
		}
	}

	if bits.Len64(qNext) > MaxModulusBitSize {
		return 0, fmt.Errorf("cannot NextNTTPrime: next NTT prime exceeds the maximum bit-size of %d bits", MaxModulusBitSize)
	}

	return qNext, nil
}

// GenerateNTTPrimes generates n distinct NthRoot NTT-friendly primes, in increasing
// order, starting from 2^logQ and going upward. Each prime is thus at least logQ+1 bits.
func GenerateNTTPrimes(logQ, NthRoot, n int) (primes []uint64, err error) {

	if logQ < 1 || logQ >= MaxModulusBitSize {
		return nil, fmt.Errorf("cannot GenerateNTTPrimes: logQ=%d must be in [1, %d)", logQ, MaxModulusBitSize)
	}

	if NthRoot < 2 || NthRoot&(NthRoot-1) != 0 {
		return nil, fmt.Errorf("cannot GenerateNTTPrimes: NthRoot=%d must be a power of two", NthRoot)
	}

	primes = make([]uint64, n)

	q := uint64(1) << logQ

	for i := range primes {
		if q, err = NextNTTPrime(q, NthRoot); err != nil {
			return nil, fmt.Errorf("cannot GenerateNTTPrimes: %w", err)
		}
		primes[i] = q
	}

	return
}
