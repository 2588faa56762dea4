package bgv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkBGV(b *testing.B) {

	var err error

	for _, p := range testParametersLiterals(b) {

		var tc *testContext
		if tc, err = newTestContext(p); err != nil {
			b.Fatal(err)
		}

		benchKeyGenerator(tc, b)
		benchEncryptor(tc, b)
		benchEvaluator(tc, b)
		benchCodec(tc, b)
	}
}

func benchKeyGenerator(tc *testContext, b *testing.B) {

	b.Run(name("KeyGenerator/GenKeyMaterial", tc, tc.params.MaxLevel()), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.kgen.GenKeyMaterial(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchEncryptor(tc *testContext, b *testing.B) {

	values := tc.newTestVector()

	b.Run(name("Encryptor/Encrypt", tc, tc.params.MaxLevel()), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.enc.Encrypt(values); err != nil {
				b.Fatal(err)
			}
		}
	})

	ct, err := tc.enc.Encrypt(values)
	require.NoError(b, err)

	b.Run(name("Decryptor/Decrypt", tc, tc.params.MaxLevel()), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.dec.Decrypt(ct); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchEvaluator(tc *testContext, b *testing.B) {

	params := tc.params
	eval := tc.eval
	level := params.MaxLevel()

	ct0, err := tc.enc.Encrypt(tc.newTestVector())
	require.NoError(b, err)
	ct1, err := tc.enc.Encrypt(tc.newTestVector())
	require.NoError(b, err)

	b.Run(name("Evaluator/Add", tc, level), func(b *testing.B) {
		opOut := NewCiphertext(params, 1, level)
		for i := 0; i < b.N; i++ {
			if err := eval.Add(ct0, ct1, opOut); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(name("Evaluator/Mul", tc, level), func(b *testing.B) {
		opOut := NewCiphertext(params, 2, level)
		for i := 0; i < b.N; i++ {
			if err := eval.Mul(ct0, ct1, opOut); err != nil {
				b.Fatal(err)
			}
		}
	})

	ct2, err := eval.MulNew(ct0, ct1)
	require.NoError(b, err)

	b.Run(name("Evaluator/Relinearize", tc, level), func(b *testing.B) {
		opOut := NewCiphertext(params, 1, level)
		for i := 0; i < b.N; i++ {
			if err := eval.Relinearize(ct2, opOut); err != nil {
				b.Fatal(err)
			}
		}
	})

	if level > 0 {
		b.Run(name("Evaluator/ModSwitch", tc, level), func(b *testing.B) {
			opOut := NewCiphertext(params, 1, level-1)
			for i := 0; i < b.N; i++ {
				if err := eval.ModSwitch(ct0, opOut); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func benchCodec(tc *testContext, b *testing.B) {

	ct, err := tc.enc.Encrypt(tc.newTestVector())
	require.NoError(b, err)

	data, err := ct.MarshalBinary()
	require.NoError(b, err)

	b.Run(name("Codec/Ciphertext/MarshalBinary", tc, ct.Level()), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := ct.MarshalBinary(); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(name("Codec/Ciphertext/UnmarshalBinary", tc, ct.Level()), func(b *testing.B) {
		rec := NewCiphertext(tc.params, 1, ct.Level())
		for i := 0; i < b.N; i++ {
			if err := rec.UnmarshalBinary(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}
