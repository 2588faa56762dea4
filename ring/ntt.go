package ring

// NTT evaluates p2 = NTT(p1) modulo the SubRing's modulus, with the negacyclic
// Cooley-Tukey butterflies. The output is in bit-reversed order.
// p1 and p2 may alias.
func (s *SubRing) NTT(p1, p2 []uint64) {

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	q := s.Modulus
	mredconstant := s.MRedConstant
	roots := s.RootsForward
	N := s.N

	var U, V, W uint64

	t := N
	for m := 1; m < N; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * t
			W = roots[m+i]
			for j := j1; j < j1+t; j++ {
				U = p2[j]
				V = MRed(p2[j+t], W, q, mredconstant)
				p2[j] = CRed(U+V, q)
				p2[j+t] = CRed(U+q-V, q)
			}
		}
	}
}

// INTT evaluates p2 = INTT(p1) modulo the SubRing's modulus, with the negacyclic
// Gentleman-Sande butterflies. The input is expected in bit-reversed order.
// p1 and p2 may alias.
func (s *SubRing) INTT(p1, p2 []uint64) {

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	q := s.Modulus
	mredconstant := s.MRedConstant
	roots := s.RootsBackward
	N := s.N

	var U, V, W uint64

	t := 1
	for m := N; m > 1; m >>= 1 {
		j1 := 0
		h := m >> 1
		for i := 0; i < h; i++ {
			W = roots[h+i]
			for j := j1; j < j1+t; j++ {
				U = p2[j]
				V = p2[j+t]
				p2[j] = CRed(U+V, q)
				p2[j+t] = MRed(U+q-V, W, q, mredconstant)
			}
			j1 += t << 1
		}
		t <<= 1
	}

	NInv := s.NInv
	for j := range p2[:N] {
		p2[j] = MRed(p2[j], NInv, q, mredconstant)
	}
}

// NTT evaluates p2 = NTT(p1) on each modulus of the ring up to its level.
func (r *Ring) NTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.NTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// INTT evaluates p2 = INTT(p1) on each modulus of the ring up to its level.
func (r *Ring) INTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.INTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}
