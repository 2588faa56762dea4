package sampling_test

import (
	"errors"
	"testing"

	"github.com/libfhe/go-fhe/utils/sampling"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	budget int
}

func (r *failingReader) Read(p []byte) (n int, err error) {
	if r.budget <= 0 {
		return 0, errors.New("source exhausted")
	}
	n = len(p)
	if n > r.budget {
		n = r.budget
	}
	r.budget -= n
	return n, nil
}

func Test_PRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
		0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

	t.Run("KeyedPRNG", func(t *testing.T) {

		Ha, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		require.Equal(t, key, Ha.Key())

		sum0 := make([]byte, 512)
		sum1 := make([]byte, 512)

		for i := 0; i < 128; i++ {
			_, err = Hb.Read(sum1)
			require.NoError(t, err)
		}

		Hb.Reset()

		_, err = Ha.Read(sum0)
		require.NoError(t, err)
		_, err = Hb.Read(sum1)
		require.NoError(t, err)

		require.Equal(t, sum0, sum1)
	})

	t.Run("ShakePRNG", func(t *testing.T) {

		Ha, err := sampling.NewShakePRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewShakePRNG(key)
		require.NoError(t, err)
		Hc, err := sampling.NewShakePRNG(key[1:])
		require.NoError(t, err)

		sum0 := make([]byte, 256)
		sum1 := make([]byte, 256)
		sum2 := make([]byte, 256)

		_, err = Hb.Read(sum1)
		require.NoError(t, err)
		Hb.Reset()

		_, err = Ha.Read(sum0)
		require.NoError(t, err)
		_, err = Hb.Read(sum1)
		require.NoError(t, err)
		_, err = Hc.Read(sum2)
		require.NoError(t, err)

		require.Equal(t, sum0, sum1)
		require.NotEqual(t, sum0, sum2)
	})

	t.Run("DeriveKey", func(t *testing.T) {
		k0 := sampling.DeriveKey(key, "keygen")
		k1 := sampling.DeriveKey(key, "keygen")
		k2 := sampling.DeriveKey(key, "encrypt")
		require.Len(t, k0, sampling.KeySize)
		require.Equal(t, k0, k1)
		require.NotEqual(t, k0, k2)
	})

	t.Run("ReadFull/InsufficientEntropy", func(t *testing.T) {
		err := sampling.ReadFull(&failingReader{budget: 10}, make([]byte, 16))
		require.True(t, errors.Is(err, sampling.ErrInsufficientEntropy))
		require.NoError(t, sampling.ReadFull(&failingReader{budget: 16}, make([]byte, 16)))
	})

	t.Run("Source", func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		s := sampling.NewSource(prng)
		r := s.Rand()
		for i := 0; i < 512; i++ {
			r.NormFloat64()
		}
		require.NoError(t, s.Err())

		s = sampling.NewSource(&failingReader{budget: 4})
		r = s.Rand()
		for i := 0; i < 64; i++ {
			r.IntN(3)
		}
		require.True(t, errors.Is(s.Err(), sampling.ErrInsufficientEntropy))
	})
}
