package bgv

import (
	"errors"

	"github.com/libfhe/go-fhe/utils/sampling"
)

var (
	// ErrInvalidParameters is returned when a parameter set cannot be instantiated.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInsufficientEntropy is returned when a PRNG fails or returns fewer bytes than requested.
	ErrInsufficientEntropy = sampling.ErrInsufficientEntropy

	// ErrPlaintextOutOfRange is returned when a plaintext has more than N values
	// or a value not smaller than the plaintext modulus.
	ErrPlaintextOutOfRange = errors.New("plaintext out of range")

	// ErrMalformedBuffer is returned when a serialized object cannot be decoded.
	ErrMalformedBuffer = errors.New("malformed buffer")

	// ErrParameterMismatch is returned when objects bound to different parameters are combined,
	// including when decoding a buffer into an object declared with other parameters.
	ErrParameterMismatch = errors.New("parameter mismatch")

	// ErrLevelMismatch is returned when operands are not at a compatible level.
	ErrLevelMismatch = errors.New("level mismatch")

	// ErrInvalidCiphertext is returned when a ciphertext has an unsupported degree or shape.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)
