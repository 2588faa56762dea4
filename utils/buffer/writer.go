package buffer

import (
	"encoding/binary"
	"fmt"
)

// Write writes a slice of bytes to w.
func Write(w Writer, c []byte) (n int64, err error) {
	nint, err := w.Write(c)
	return int64(nint), err
}

// WriteUint8 writes a byte c to w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {
	return writeFixed(w, []byte{c})
}

// WriteUint16 writes a uint16 c to w.
func WriteUint16(w Writer, c uint16) (n int64, err error) {
	var bb [2]byte
	binary.LittleEndian.PutUint16(bb[:], c)
	return writeFixed(w, bb[:])
}

// WriteUint32 writes a uint32 c to w.
func WriteUint32(w Writer, c uint32) (n int64, err error) {
	var bb [4]byte
	binary.LittleEndian.PutUint32(bb[:], c)
	return writeFixed(w, bb[:])
}

// WriteUint64 writes a uint64 c to w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {
	var bb [8]byte
	binary.LittleEndian.PutUint64(bb[:], c)
	return writeFixed(w, bb[:])
}

// WriteUint64Slice writes a slice of uint64 c to w.
// Values are packed directly in the available buffer of w,
// which is flushed each time it is full.
func WriteUint64Slice(w Writer, c []uint64) (n int64, err error) {

	for len(c) > 0 {

		available := w.Available() >> 3

		if available == 0 {

			if err = w.Flush(); err != nil {
				return
			}

			if available = w.Available() >> 3; available == 0 {
				return n, fmt.Errorf("cannot WriteUint64Slice: available buffer/8 is zero even after flush")
			}
		}

		if available > len(c) {
			available = len(c)
		}

		buf := w.AvailableBuffer()

		for _, ci := range c[:available] {
			buf = binary.LittleEndian.AppendUint64(buf, ci)
		}

		var inc int
		if inc, err = w.Write(buf); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)

		c = c[available:]
	}

	return
}

// writeFixed writes a small fixed-size value, flushing w first if needed.
func writeFixed(w Writer, bb []byte) (n int64, err error) {

	if w.Available() < len(bb) {
		if err = w.Flush(); err != nil {
			return
		}
	}

	nint, err := w.Write(bb)

	return int64(nint), err
}
