package buffer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {

	t.Run("Scalars", func(t *testing.T) {
		b := NewBufferSize(15)

		_, err := WriteUint8(b, 0x01)
		require.NoError(t, err)
		_, err = WriteUint16(b, 0x0302)
		require.NoError(t, err)
		_, err = WriteUint32(b, 0x07060504)
		require.NoError(t, err)
		_, err = WriteUint64(b, 0x0f0e0d0c0b0a0908)
		require.NoError(t, err)

		require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, b.Bytes())

		var u8 uint8
		var u16 uint16
		var u32 uint32
		var u64 uint64

		_, err = ReadUint8(b, &u8)
		require.NoError(t, err)
		_, err = ReadUint16(b, &u16)
		require.NoError(t, err)
		_, err = ReadUint32(b, &u32)
		require.NoError(t, err)
		_, err = ReadUint64(b, &u64)
		require.NoError(t, err)

		require.Equal(t, uint8(0x01), u8)
		require.Equal(t, uint16(0x0302), u16)
		require.Equal(t, uint32(0x07060504), u32)
		require.Equal(t, uint64(0x0f0e0d0c0b0a0908), u64)

		_, err = ReadUint8(b, &u8)
		require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("Overflow", func(t *testing.T) {
		b := NewBufferSize(4)
		_, err := WriteUint64(b, 1)
		require.Error(t, err)
	})

	t.Run("Uint64Slice", func(t *testing.T) {
		c := make([]uint64, 1000)
		for i := range c {
			c[i] = uint64(i) * 0x9e3779b97f4a7c15
		}

		b := NewBufferSize(len(c) << 3)
		n, err := WriteUint64Slice(b, c)
		require.NoError(t, err)
		require.Equal(t, int64(len(c)<<3), n)

		have := make([]uint64, len(c))
		m, err := ReadUint64Slice(b, have)
		require.NoError(t, err)
		require.Equal(t, len(c)<<3, m)
		require.Equal(t, c, have)
	})

	t.Run("Uint64Slice/Bufio", func(t *testing.T) {
		c := make([]uint64, 3000)
		for i := range c {
			c[i] = uint64(i)<<32 | uint64(i)
		}

		var data bytes.Buffer
		w := bufio.NewWriterSize(&data, 64)
		_, err := WriteUint64Slice(w, c)
		require.NoError(t, err)
		require.NoError(t, w.Flush())

		r := bufio.NewReaderSize(bytes.NewReader(data.Bytes()), 64)
		have := make([]uint64, len(c))
		_, err = ReadUint64Slice(r, have)
		require.NoError(t, err)
		require.Equal(t, c, have)
	})

	t.Run("Uint64Slice/Truncated", func(t *testing.T) {
		b := NewBuffer(make([]byte, 8*4+3))
		have := make([]uint64, 5)
		_, err := ReadUint64Slice(b, have)
		require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})
}
