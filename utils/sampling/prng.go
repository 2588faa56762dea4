package sampling

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ErrInsufficientEntropy is returned when a PRNG cannot supply the requested number of bytes.
var ErrInsufficientEntropy = errors.New("insufficient entropy")

// PRNG is an interface for secure generation of random bytes.
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG is a PRNG reading from crypto/rand.
// It can be used concurrently by multiple goroutines.
type ThreadSafePRNG struct {
}

// NewPRNG returns a new PRNG that is thread-safe.
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read reads len(sum) random bytes from crypto/rand.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	return rand.Read(sum)
}

// KeyedPRNG is a structure storing the parameters used to securely and *deterministically* generate shared
// sequences of random bytes using the hash function blake2b. Backward sequence security (given the digest i,
// compute the digest i-1) is ensured by default, however forward sequence security (given the digest i,
// compute the digest i+1) is only ensured if the KeyedPRNG is keyed.
// KeyedPRNG should not be called by multiple goroutines, as the resulting sequence would not be
// deterministic for a given key.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new instance of KeyedPRNG.
// Accepts an optional key of at most 64 bytes, else set key=nil which is treated as key=[]byte{}.
// A KeyedPRNG initialised with key=nil is insecure.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := new(KeyedPRNG)
	prng.key = append([]byte{}, key...)
	if prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, key); err != nil {
		return nil, fmt.Errorf("cannot NewKeyedPRNG: %w", err)
	}
	return prng, nil
}

// Key returns a copy of the key used to seed the PRNG.
// This value can be used with NewKeyedPRNG to instantiate
// a new PRNG that will produce the same stream of bytes.
func (prng *KeyedPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read reads bytes from the KeyedPRNG on sum.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset resets the PRNG to its initial state.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}

// ShakePRNG is a deterministic PRNG expanding a key with SHAKE256.
// As KeyedPRNG, it should not be shared by multiple goroutines.
type ShakePRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   sha3.ShakeHash
}

// NewShakePRNG creates a new instance of ShakePRNG keyed with key.
func NewShakePRNG(key []byte) (*ShakePRNG, error) {
	prng := &ShakePRNG{key: append([]byte{}, key...)}
	prng.Reset()
	return prng, nil
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *ShakePRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read reads bytes from the ShakePRNG on sum.
func (prng *ShakePRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset resets the PRNG to its initial state.
func (prng *ShakePRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof = sha3.NewShake256()
	// Writes to a ShakeHash never fail before the first read.
	_, _ = prng.xof.Write(prng.key)
}

// ReadFull fills buf with bytes from prng.
// Any error or short read is reported as ErrInsufficientEntropy.
func ReadFull(prng PRNG, buf []byte) (err error) {
	var n int
	if n, err = io.ReadFull(prng, buf); err != nil {
		return fmt.Errorf("%w: read %d of %d bytes: %w", ErrInsufficientEntropy, n, len(buf), err)
	}
	return nil
}
