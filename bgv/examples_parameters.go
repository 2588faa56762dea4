package bgv

var (
	// ExampleParameters is an example parameter set with LogN=14, a moduli chain of
	// four 61-bit primes, the first NTT-friendly primes above 2^60 (LogQ=237, LogM=60),
	// and the 17-bit plaintext modulus 65537.
	ExampleParameters = ParametersLiteral{
		LogN: 14,
		LogQ: 237,
		LogM: 60,
		T:    65537,
	}

	// TestParameters are small, insecure parameter sets for unit tests.
	TestParameters = []ParametersLiteral{
		{
			LogN: 4,
			LogQ: 90,
			LogM: 30,
			T:    257,
		},
		{
			LogN: 5,
			LogQ: 100,
			LogM: 50,
			T:    65537,
		},
		{
			LogN: 8,
			LogQ: 180,
			LogM: 45,
			T:    0x3ee0001,
		},
	}
)
