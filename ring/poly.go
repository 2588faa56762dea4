package ring

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/libfhe/go-fhe/utils/buffer"
)

// ErrCoefficientOutOfRange is returned when a decoded coefficient is not reduced modulo its prime.
var ErrCoefficientOutOfRange = errors.New("coefficient out of range")

// Poly is the structure that contains the coefficients of a polynomial in RNS form:
// Coeffs[i][j] is the j-th coefficient modulo the i-th prime of the moduli chain.
type Poly struct {
	Coeffs [][]uint64
	Buff   []uint64
}

// NewPoly creates a new polynomial with N coefficients set to zero and level+1 moduli.
func NewPoly(N, level int) (pol Poly) {
	pol.Buff = make([]uint64, N*(level+1))
	pol.Coeffs = make([][]uint64, level+1)
	for i := 0; i < level+1; i++ {
		pol.Coeffs[i] = pol.Buff[i*N : (i+1)*N]
	}
	return
}

// N returns the number of coefficients of the polynomial.
func (pol Poly) N() int {
	if len(pol.Coeffs) == 0 {
		return 0
	}
	return len(pol.Coeffs[0])
}

// Level returns the current number of moduli minus 1.
func (pol Poly) Level() int {
	return len(pol.Coeffs) - 1
}

// Resize resizes the level of the target polynomial to the provided level.
// If the provided level is larger than the current level, then allocates zero
// coefficients, otherwise dereferences the coefficients above the provided level.
func (pol *Poly) Resize(level int) {
	N := pol.N()
	if pol.Level() > level {
		pol.Buff = pol.Buff[:N*(level+1)]
		pol.Coeffs = pol.Coeffs[:level+1]
	} else if level > pol.Level() {
		prevLevel := pol.Level()
		pol.Buff = append(pol.Buff, make([]uint64, N*(level-prevLevel))...)
		pol.Coeffs = make([][]uint64, level+1)
		for i := 0; i < level+1; i++ {
			pol.Coeffs[i] = pol.Buff[i*N : (i+1)*N]
		}
	}
}

// Zero sets all coefficients of the target polynomial to 0.
func (pol Poly) Zero() {
	for i := range pol.Buff {
		pol.Buff[i] = 0
	}
}

// CopyNew creates an exact copy of the target polynomial.
func (pol Poly) CopyNew() (p1 Poly) {
	p1 = NewPoly(pol.N(), pol.Level())
	copy(p1.Buff, pol.Buff)
	return
}

// Copy copies the coefficients of p1 on the target polynomial,
// up to the smallest of both levels.
func (pol Poly) Copy(p1 Poly) {
	for i := 0; i < len(pol.Coeffs) && i < len(p1.Coeffs); i++ {
		copy(pol.Coeffs[i], p1.Coeffs[i])
	}
}

// Equal returns true if the receiver Poly is equal to the provided other Poly.
// This function checks for strict equality between the polynomial coefficients
// (i.e., it does not consider congruence as equality within the ring).
func (pol Poly) Equal(other *Poly) bool {
	if other == nil {
		return false
	}
	return cmp.Equal(pol.Coeffs, other.Coeffs)
}

// BinarySize returns the serialized size of the coefficients of the polynomial in bytes.
func (pol Poly) BinarySize() int {
	return len(pol.Buff) << 3
}

// WriteCoeffsTo writes the coefficients of the polynomial, row by row, as little-endian
// uint64 to w. No header is written: the reader must know N and the level.
func (pol Poly) WriteCoeffsTo(w buffer.Writer) (n int64, err error) {
	for i := range pol.Coeffs {
		var inc int64
		if inc, err = buffer.WriteUint64Slice(w, pol.Coeffs[i]); err != nil {
			return n + inc, fmt.Errorf("cannot WriteCoeffsTo: %w", err)
		}
		n += inc
	}
	return
}

// ReadCoeffsFrom reads the coefficients of the polynomial, row by row, from r and checks
// that each coefficient of row i is smaller than moduli[i].
// The polynomial must already be allocated with len(moduli) rows.
func (pol Poly) ReadCoeffsFrom(r buffer.Reader, moduli []uint64) (n int, err error) {

	if len(moduli) != len(pol.Coeffs) {
		return 0, fmt.Errorf("cannot ReadCoeffsFrom: %d moduli given for %d rows", len(moduli), len(pol.Coeffs))
	}

	for i, qi := range moduli {

		var inc int
		if inc, err = buffer.ReadUint64Slice(r, pol.Coeffs[i]); err != nil {
			return n + inc, fmt.Errorf("cannot ReadCoeffsFrom: %w", err)
		}
		n += inc

		for j, c := range pol.Coeffs[i] {
			if c >= qi {
				return n, fmt.Errorf("cannot ReadCoeffsFrom: %w: coefficient [%d][%d]=%d is not smaller than %d", ErrCoefficientOutOfRange, i, j, c, qi)
			}
		}
	}

	return
}
