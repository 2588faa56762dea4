package bgv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCodec(tc *testContext, t *testing.T) {

	params := tc.params
	polySize := params.N() * params.QCount() << 3

	t.Run(name("Codec/KeyMaterial", tc, params.MaxLevel()), func(t *testing.T) {

		data, err := tc.km.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, tc.km.BinarySize())
		require.Equal(t, []byte("BGVK"), data[:4])

		rec := NewKeyMaterial(params)
		require.NoError(t, rec.UnmarshalBinary(data))
		require.True(t, tc.km.Equal(rec))

		rec, err = DecodeKeyMaterial(data)
		require.NoError(t, err)
		require.True(t, tc.km.Equal(rec))
		require.True(t, rec.Parameters().Equal(&params))

		// io.Writer and io.Reader that do not implement the buffer interfaces
		var w bytes.Buffer
		n, err := tc.km.WriteTo(&w)
		require.NoError(t, err)
		require.Equal(t, int64(tc.km.BinarySize()), n)
		require.Equal(t, data, w.Bytes())

		rec = new(KeyMaterial)
		_, err = rec.ReadFrom(&w)
		require.NoError(t, err)
		require.True(t, tc.km.Equal(rec))
	})

	for lvl := 0; lvl <= params.MaxLevel(); lvl++ {
		t.Run(name("Codec/Ciphertext", tc, lvl), func(t *testing.T) {

			values, ct := tc.newTestCiphertext(t, lvl)

			data, err := ct.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, data, ct.BinarySize())
			require.Equal(t, []byte("BGVC"), data[:4])
			require.Equal(t, uint8(lvl), data[headerSize])
			require.Equal(t, uint8(1), data[headerSize+1])

			rec := tc.scheme.NewCiphertext()
			require.NoError(t, rec.UnmarshalBinary(data))
			require.True(t, ct.Equal(rec))
			verifyTestVectors(tc, rec, values, t)

			rec, err = DecodeCiphertext(data)
			require.NoError(t, err)
			require.True(t, ct.Equal(rec))

			var w bytes.Buffer
			n, err := ct.WriteTo(&w)
			require.NoError(t, err)
			require.Equal(t, int64(ct.BinarySize()), n)

			rec = new(Ciphertext)
			_, err = rec.ReadFrom(&w)
			require.NoError(t, err)
			require.True(t, ct.Equal(rec))
		})
	}

	t.Run(name("Codec/Ciphertext/Degree2", tc, params.MaxLevel()), func(t *testing.T) {
		_, ct0 := tc.newTestCiphertext(t, params.MaxLevel())
		_, ct1 := tc.newTestCiphertext(t, params.MaxLevel())
		ct, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)
		data, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, headerSize+2+3*polySize)
		rec, err := DecodeCiphertext(data)
		require.NoError(t, err)
		require.True(t, ct.Equal(rec))
	})

	t.Run(name("Codec/Fingerprint", tc, params.MaxLevel()), func(t *testing.T) {

		f0, err := tc.km.Fingerprint()
		require.NoError(t, err)
		f1, err := tc.km.CopyNew().Fingerprint()
		require.NoError(t, err)
		require.Equal(t, f0, f1)

		_, ct := tc.newTestCiphertext(t, params.MaxLevel())
		g0, err := ct.Fingerprint()
		require.NoError(t, err)
		require.NoError(t, tc.eval.Add(ct, ct, ct))
		g1, err := ct.Fingerprint()
		require.NoError(t, err)
		require.NotEqual(t, g0, g1)
	})

	_, ct := tc.newTestCiphertext(t, params.MaxLevel())
	ctData, err := ct.MarshalBinary()
	require.NoError(t, err)

	kmData, err := tc.km.MarshalBinary()
	require.NoError(t, err)

	corrupt := func(data []byte, f func(p []byte) []byte) []byte {
		p := make([]byte, len(data))
		copy(p, data)
		return f(p)
	}

	outOfRange := func(offset int) func(p []byte) []byte {
		return func(p []byte) []byte {
			binary.LittleEndian.PutUint64(p[offset:], params.Q()[params.MaxLevel()])
			return p
		}
	}

	header := []struct {
		name string
		f    func(p []byte) []byte
	}{
		{"Empty", func(p []byte) []byte { return p[:0] }},
		{"Magic", func(p []byte) []byte { p[0] ^= 1; return p }},
		{"Version", func(p []byte) []byte { binary.LittleEndian.PutUint16(p[4:], CodecVersion+1); return p }},
		{"Flags", func(p []byte) []byte { p[18] = 1; return p }},
		{"TruncatedHeader", func(p []byte) []byte { return p[:headerSize-1] }},
		{"Truncated", func(p []byte) []byte { return p[:len(p)-1] }},
		{"TrailingByte", func(p []byte) []byte { return append(p, 0) }},
	}

	t.Run(name("Codec/Malformed/Ciphertext", tc, params.MaxLevel()), func(t *testing.T) {

		cases := append(header, []struct {
			name string
			f    func(p []byte) []byte
		}{
			{"Level", func(p []byte) []byte { p[headerSize] = uint8(params.MaxLevel() + 1); return p }},
			{"Degree0", func(p []byte) []byte { p[headerSize+1] = 0; return p }},
			{"Degree3", func(p []byte) []byte { p[headerSize+1] = 3; return p }},
			{"CoefficientOutOfRange", outOfRange(headerSize + 2)},
			{"LastCoefficientOutOfRange", func(p []byte) []byte {
				binary.LittleEndian.PutUint64(p[len(p)-8:], ^uint64(0))
				return p
			}},
			{"WrongMagic", func(p []byte) []byte { copy(p, "BGVK"); return p }},
			{"InvalidLiteral", func(p []byte) []byte { p[6] = 0; return p }},
		}...)

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {

				data := corrupt(ctData, tt.f)

				_, err := DecodeCiphertext(data)
				require.True(t, errors.Is(err, ErrMalformedBuffer), err)

				rec := new(Ciphertext)
				require.True(t, errors.Is(rec.UnmarshalBinary(data), ErrMalformedBuffer))
				require.Nil(t, rec.Value)

				_, err = new(Ciphertext).ReadFrom(bytes.NewReader(data))
				if tt.name != "TrailingByte" {
					require.True(t, errors.Is(err, ErrMalformedBuffer), err)
				}
			})
		}
	})

	t.Run(name("Codec/Malformed/KeyMaterial", tc, params.MaxLevel()), func(t *testing.T) {

		countOffset := headerSize + 3*polySize

		cases := append(header, []struct {
			name string
			f    func(p []byte) []byte
		}{
			{"CoefficientOutOfRange", outOfRange(headerSize)},
			{"RelinearizationKeyOutOfRange", outOfRange(countOffset + 4)},
			{"Count", func(p []byte) []byte {
				binary.LittleEndian.PutUint32(p[countOffset:], uint32(params.QCount()+1))
				return p
			}},
			{"CountZero", func(p []byte) []byte {
				binary.LittleEndian.PutUint32(p[countOffset:], 0)
				return p
			}},
			{"WrongMagic", func(p []byte) []byte { copy(p, "BGVC"); return p }},
		}...)

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				data := corrupt(kmData, tt.f)
				_, err := DecodeKeyMaterial(data)
				require.True(t, errors.Is(err, ErrMalformedBuffer), err)
			})
		}
	})

	t.Run(name("Codec/ParameterMismatch", tc, params.MaxLevel()), func(t *testing.T) {

		other, err := NewParameters(params.LogN(), params.LogQ(), params.LogM(), params.T()-1)
		require.NoError(t, err)

		otherScheme, err := NewScheme(other)
		require.NoError(t, err)

		rec := otherScheme.NewCiphertext()
		want := rec.CopyNew()
		err = rec.UnmarshalBinary(ctData)
		require.True(t, errors.Is(err, ErrParameterMismatch), err)
		require.False(t, errors.Is(err, ErrMalformedBuffer), err)
		require.True(t, want.Equal(rec))

		_, err = rec.ReadFrom(bytes.NewReader(ctData))
		require.True(t, errors.Is(err, ErrParameterMismatch), err)

		km := otherScheme.NewKeyMaterial()
		err = km.UnmarshalBinary(kmData)
		require.True(t, errors.Is(err, ErrParameterMismatch), err)
		require.True(t, km.Parameters().Equal(&other))

		// structural errors take precedence over the parameters comparison
		err = rec.UnmarshalBinary(corrupt(ctData, func(p []byte) []byte { p[0] ^= 1; return p }))
		require.True(t, errors.Is(err, ErrMalformedBuffer), err)
	})

	t.Run(name("Codec/Atomic", tc, params.MaxLevel()), func(t *testing.T) {

		_, target := tc.newTestCiphertext(t, params.MaxLevel())
		want := target.CopyNew()

		for _, data := range [][]byte{
			corrupt(ctData, outOfRange(len(ctData)-8)),
			corrupt(ctData, func(p []byte) []byte { return p[:len(p)-1] }),
			corrupt(ctData, func(p []byte) []byte { return append(p, 0) }),
		} {
			require.Error(t, target.UnmarshalBinary(data))
			require.True(t, want.Equal(target))
		}

		km := tc.km.CopyNew()
		require.Error(t, km.UnmarshalBinary(corrupt(kmData, outOfRange(len(kmData)-8))))
		require.True(t, tc.km.Equal(km))
	})

	t.Run(name("Codec/Uninitialized", tc, params.MaxLevel()), func(t *testing.T) {
		_, err := new(Ciphertext).MarshalBinary()
		require.True(t, errors.Is(err, ErrInvalidCiphertext), err)
		_, err = new(KeyMaterial).MarshalBinary()
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
	})
}

// forgedHeader returns a valid header announcing a ring much larger than the bytes that follow it.
func forgedHeader(magic string, body ...byte) []byte {
	p := make([]byte, headerSize, headerSize+len(body))
	copy(p, magic)
	binary.LittleEndian.PutUint16(p[4:], CodecVersion)
	p[6] = 15
	binary.LittleEndian.PutUint16(p[7:], 1200)
	p[9] = 60
	binary.LittleEndian.PutUint64(p[10:], 65537)
	return append(p, body...)
}

// allocated returns the number of bytes allocated on the heap by f.
func allocated(f func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	f()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestCodecForgedHeader(t *testing.T) {

	pl := ParametersLiteral{LogN: 15, LogQ: 1200, LogM: 60, T: 65537}
	require.NoError(t, checkLiteral(pl.LogN, pl.LogQ, pl.LogM, pl.T))

	for _, tt := range []struct {
		name   string
		data   []byte
		decode func(p []byte) error
		read   func(p []byte) error
	}{
		{
			name: "KeyMaterial",
			data: forgedHeader("BGVK"),
			decode: func(p []byte) error {
				_, err := DecodeKeyMaterial(p)
				return err
			},
			read: func(p []byte) error {
				_, err := new(KeyMaterial).ReadFrom(bytes.NewReader(p))
				return err
			},
		},
		{
			name: "Ciphertext",
			data: forgedHeader("BGVC", 20, 2),
			decode: func(p []byte) error {
				_, err := DecodeCiphertext(p)
				return err
			},
			read: func(p []byte) error {
				_, err := new(Ciphertext).ReadFrom(bytes.NewReader(p))
				return err
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {

			var err error

			require.Less(t, allocated(func() { err = tt.decode(tt.data) }), uint64(1<<20))
			require.True(t, errors.Is(err, ErrMalformedBuffer), err)

			require.Less(t, allocated(func() { err = tt.read(tt.data) }), uint64(1<<20))
			require.True(t, errors.Is(err, ErrMalformedBuffer), err)
		})
	}
}

func fuzzParameters(f *testing.F) Parameters {
	params, err := NewParametersFromLiteral(TestParameters[0])
	require.NoError(f, err)
	return params
}

func FuzzDecodeCiphertext(f *testing.F) {

	params := fuzzParameters(f)

	scheme, err := NewScheme(params)
	require.NoError(f, err)

	km, err := scheme.KeyGenFromSeed([]byte("fuzz"))
	require.NoError(f, err)

	for _, level := range []int{0, params.MaxLevel()} {
		ct := NewCiphertext(params, 1, level)
		enc, err := NewEncryptor(params, km.Pk, nil)
		require.NoError(f, err)
		require.NoError(f, enc.EncryptPlaintext(&Plaintext{Value: make([]uint64, params.N())}, ct))
		data, err := ct.MarshalBinary()
		require.NoError(f, err)
		f.Add(data)
		f.Add(data[:headerSize+2])
	}

	f.Add([]byte{})
	f.Add([]byte("BGVC"))

	f.Fuzz(func(t *testing.T, data []byte) {

		ct, err := DecodeCiphertext(data)
		if err != nil {
			require.True(t, errors.Is(err, ErrMalformedBuffer), err)
			return
		}

		rec, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, data, rec)
	})
}

func FuzzDecodeKeyMaterial(f *testing.F) {

	params := fuzzParameters(f)

	scheme, err := NewScheme(params)
	require.NoError(f, err)

	km, err := scheme.KeyGenFromSeed([]byte("fuzz"))
	require.NoError(f, err)

	data, err := km.MarshalBinary()
	require.NoError(f, err)

	f.Add(data)
	f.Add(data[:headerSize])
	f.Add([]byte("BGVK"))

	f.Fuzz(func(t *testing.T, data []byte) {

		km, err := DecodeKeyMaterial(data)
		if err != nil {
			require.True(t, errors.Is(err, ErrMalformedBuffer), err)
			return
		}

		rec, err := km.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, data, rec)
	})
}
