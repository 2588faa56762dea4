// Package sampling implements secure sampling of bytes and integers.
package sampling

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/zeebo/blake3"
)

// KeySize is the size in bytes of the keys returned by DeriveKey.
const KeySize = 32

// DeriveKey derives a KeySize bytes key from seed, domain separated by label.
// Keys derived from the same seed under different labels are independent.
func DeriveKey(seed []byte, label string) []byte {
	hasher := blake3.New()
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(label)))
	hasher.Write(size[:])
	hasher.Write([]byte(label))
	hasher.Write(seed)
	return hasher.Sum(nil)[:KeySize]
}

const sourceBufferSize = 1024

// Source is a math/rand/v2 Source backed by a PRNG.
// Since rand.Source cannot return errors, the first read error is
// recorded and the source switches to a non-secret filler stream, so that
// rejection loops of the callers still terminate. Callers must check Err
// once they are done sampling and discard the output on error.
type Source struct {
	prng   PRNG
	buf    [sourceBufferSize]byte
	ptr    int
	err    error
	filler uint64
}

// NewSource creates a new Source reading from prng.
func NewSource(prng PRNG) *Source {
	return &Source{prng: prng, ptr: sourceBufferSize}
}

// Uint64 returns the next 8 bytes of the PRNG as a uint64.
func (s *Source) Uint64() uint64 {

	if s.err != nil {
		return s.fill()
	}

	if s.ptr == sourceBufferSize {
		if err := ReadFull(s.prng, s.buf[:]); err != nil {
			s.err = err
			return s.fill()
		}
		s.ptr = 0
	}

	v := binary.LittleEndian.Uint64(s.buf[s.ptr:])
	s.ptr += 8
	return v
}

// fill returns the next value of a splitmix64 sequence.
func (s *Source) fill() uint64 {
	s.filler += 0x9e3779b97f4a7c15
	z := s.filler
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Err returns the first error encountered while reading from the PRNG, if any.
func (s *Source) Err() error {
	return s.err
}

// Rand returns a new *rand.Rand drawing from s.
func (s *Source) Rand() *rand.Rand {
	/* #nosec G404: Source is backed by a cryptographically secure PRNG */
	return rand.New(s)
}
