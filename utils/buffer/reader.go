package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ReadUint8 reads a byte from r and stores the result into c.
func ReadUint8(r Reader, c *uint8) (n int, err error) {
	var bb [1]byte
	if n, err = readFull(r, bb[:]); err != nil {
		return n, fmt.Errorf("cannot ReadUint8: %w", err)
	}
	*c = bb[0]
	return
}

// ReadUint16 reads a uint16 from r and stores the result into c.
func ReadUint16(r Reader, c *uint16) (n int, err error) {
	var bb [2]byte
	if n, err = readFull(r, bb[:]); err != nil {
		return n, fmt.Errorf("cannot ReadUint16: %w", err)
	}
	*c = binary.LittleEndian.Uint16(bb[:])
	return
}

// ReadUint32 reads a uint32 from r and stores the result into c.
func ReadUint32(r Reader, c *uint32) (n int, err error) {
	var bb [4]byte
	if n, err = readFull(r, bb[:]); err != nil {
		return n, fmt.Errorf("cannot ReadUint32: %w", err)
	}
	*c = binary.LittleEndian.Uint32(bb[:])
	return
}

// ReadUint64 reads a uint64 from r and stores the result into c.
func ReadUint64(r Reader, c *uint64) (n int, err error) {
	var bb [8]byte
	if n, err = readFull(r, bb[:]); err != nil {
		return n, fmt.Errorf("cannot ReadUint64: %w", err)
	}
	*c = binary.LittleEndian.Uint64(bb[:])
	return
}

// ReadUint64Slice reads a slice of uint64 from r and stores the result into c.
// Values are decoded directly from the internal buffer of r.
func ReadUint64Slice(r Reader, c []uint64) (n int, err error) {

	for len(c) > 0 {

		size := len(c) << 3
		if s := r.Size() &^ 7; s < size {
			size = s
		}

		if size == 0 {
			// r buffers less than one value: fall back to a plain read
			var v uint64
			var inc int
			if inc, err = ReadUint64(r, &v); err != nil {
				return n + inc, fmt.Errorf("cannot ReadUint64Slice: %w", err)
			}
			c[0] = v
			c = c[1:]
			n += inc
			continue
		}

		var slice []byte
		if slice, err = r.Peek(size); err != nil {
			return n, fmt.Errorf("cannot ReadUint64Slice: %w", io.ErrUnexpectedEOF)
		}

		m := len(slice) >> 3

		for i, j := 0, 0; i < m; i, j = i+1, j+8 {
			c[i] = binary.LittleEndian.Uint64(slice[j:])
		}

		var inc int
		if inc, err = r.Discard(m << 3); err != nil {
			return n + inc, fmt.Errorf("cannot ReadUint64Slice: %w", err)
		}

		n += inc
		c = c[m:]
	}

	return
}

// readFull reads exactly len(bb) bytes and reports any short read as io.ErrUnexpectedEOF.
func readFull(r io.Reader, bb []byte) (n int, err error) {
	if n, err = io.ReadFull(r, bb); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
	}
	return
}
