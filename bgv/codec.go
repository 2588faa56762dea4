package bgv

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/libfhe/go-fhe/ring"
	"github.com/libfhe/go-fhe/utils/buffer"
)

// Binary layout of the serialized objects, little-endian:
//
//	header (22 bytes)
//	  magic    [4]byte  "BGVK" (key material) or "BGVC" (ciphertext)
//	  version  uint16   CodecVersion
//	  LogN     uint8
//	  LogQ     uint16
//	  LogM     uint8
//	  T        uint64
//	  flags    uint32   reserved, 0
//	key material body
//	  s, pk.b, pk.a, uint32 count, count x (rlk.b_i, rlk.a_i)
//	ciphertext body
//	  uint8 level, uint8 degree, (degree+1) polynomials
//
// Each polynomial is written as (level+1) rows of N uint64 in the coefficient domain.

// CodecVersion is the version of the binary format of keys and ciphertexts.
const CodecVersion uint16 = 1

const headerSize = 22

var (
	magicKeyMaterial = [4]byte{'B', 'G', 'V', 'K'}
	magicCiphertext  = [4]byte{'B', 'G', 'V', 'C'}
)

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedBuffer, fmt.Sprintf(format, a...))
}

func writeHeader(w buffer.Writer, magic [4]byte, params Parameters) (n int64, err error) {

	var inc int64

	if inc, err = buffer.Write(w, magic[:]); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = buffer.WriteUint16(w, CodecVersion); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = params.WriteTo(w); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = buffer.WriteUint32(w, 0); err != nil {
		return n + inc, err
	}
	n += inc

	return
}

// readHeader reads and checks a header. If target is not the zero value, the parameters
// of the header must match it, otherwise they must be a valid [ParametersLiteral].
// No parameters are instantiated: see [resolveParameters].
func readHeader(r buffer.Reader, magic [4]byte, target Parameters) (pl ParametersLiteral, n int64, err error) {

	var got [4]byte
	var inc int

	if inc, err = io.ReadFull(r, got[:]); err != nil {
		return pl, n + int64(inc), malformed("cannot read magic: %v", err)
	}
	n += int64(inc)

	if got != magic {
		return pl, n, malformed("magic %q is not %q", got[:], magic[:])
	}

	var version uint16
	if inc, err = buffer.ReadUint16(r, &version); err != nil {
		return pl, n + int64(inc), malformed("%v", err)
	}
	n += int64(inc)

	if version != CodecVersion {
		return pl, n, malformed("version %d is not %d", version, CodecVersion)
	}

	var inc64 int64
	if inc64, err = readParametersLiteral(r, &pl); err != nil {
		return pl, n + inc64, malformed("%v", err)
	}
	n += inc64

	var flags uint32
	if inc, err = buffer.ReadUint32(r, &flags); err != nil {
		return pl, n + int64(inc), malformed("%v", err)
	}
	n += int64(inc)

	if flags != 0 {
		return pl, n, malformed("reserved flags are %#x", flags)
	}

	if !target.IsZero() {
		if pl != target.ParametersLiteral() {
			return pl, n, fmt.Errorf("%w: buffer parameters %+v do not match %+v", ErrParameterMismatch, pl, target.ParametersLiteral())
		}
		return
	}

	if err = checkLiteral(pl.LogN, pl.LogQ, pl.LogM, pl.T); err != nil {
		return pl, n, fmt.Errorf("%w: %w", ErrMalformedBuffer, err)
	}

	return
}

// literalShape returns the ring degree and the number of moduli of a literal
// that passed [checkLiteral].
func literalShape(pl ParametersLiteral) (N, qCount int) {
	return 1 << pl.LogN, pl.LogQ/pl.LogM + 1
}

// resolveParameters returns target, or instantiates pl if target is the zero value.
func resolveParameters(pl ParametersLiteral, target Parameters) (params Parameters, err error) {
	if !target.IsZero() {
		return target, nil
	}
	if params, err = NewParametersFromLiteral(pl); err != nil {
		return params, fmt.Errorf("%w: %w", ErrMalformedBuffer, err)
	}
	return
}

// readBody returns a reader holding the next size bytes of r. A [buffer.Buffer]
// must already hold them. Other readers are copied into memory as the bytes arrive.
func readBody(r buffer.Reader, size int64) (body buffer.Reader, n int64, err error) {

	if b, ok := r.(*buffer.Buffer); ok {
		if int64(b.Size()) < size {
			return nil, 0, malformed("buffer holds %d bytes but the header requires %d", b.Size(), size)
		}
		return b, 0, nil
	}

	var bb bytes.Buffer
	if n, err = io.CopyN(&bb, r, size); err != nil {
		return nil, n, malformed("cannot read %d bytes of body: %v", size, err)
	}

	return buffer.NewBuffer(bb.Bytes()), 0, nil
}

// writePoly writes the NTT-domain polynomial p in the coefficient domain, using buff as scratch.
func writePoly(w buffer.Writer, ringQ *ring.Ring, p, buff ring.Poly) (n int64, err error) {
	ringQ.INTT(p, buff)
	return buff.WriteCoeffsTo(w)
}

// readPoly reads a coefficient-domain polynomial on p and maps it to the NTT domain.
func readPoly(r buffer.Reader, ringQ *ring.Ring, p ring.Poly) (n int64, err error) {
	var inc int
	if inc, err = p.ReadCoeffsFrom(r, ringQ.ModuliChain()); err != nil {
		return int64(inc), fmt.Errorf("%w: %w", ErrMalformedBuffer, err)
	}
	ringQ.NTT(p, p)
	return int64(inc), nil
}

// keyPolys returns the polynomials of the key material in serialization order,
// with the relinearization key after the count.
func (km *KeyMaterial) keyPolys() (head []ring.Poly, rlk []ring.Poly) {
	head = []ring.Poly{km.Sk.Value, km.Pk.Value[0], km.Pk.Value[1]}
	rlk = make([]ring.Poly, 0, 2*len(km.Rlk.Value))
	for i := range km.Rlk.Value {
		rlk = append(rlk, km.Rlk.Value[i][0], km.Rlk.Value[i][1])
	}
	return
}

func (km *KeyMaterial) checkShape() error {

	if km.params.IsZero() || km.Sk == nil || km.Pk == nil || km.Rlk == nil {
		return fmt.Errorf("%w: key material is not initialized", ErrInvalidParameters)
	}

	if len(km.Rlk.Value) != km.params.QCount() {
		return fmt.Errorf("%w: relinearization key has %d components for %d moduli", ErrParameterMismatch, len(km.Rlk.Value), km.params.QCount())
	}

	head, rlk := km.keyPolys()
	for _, p := range append(head, rlk...) {
		if p.Level() != km.params.MaxLevel() || p.N() != km.params.N() {
			return fmt.Errorf("%w: key polynomial has shape N=%d level=%d", ErrParameterMismatch, p.N(), p.Level())
		}
	}

	return nil
}

// BinarySize returns the serialized size of the object in bytes.
func (km *KeyMaterial) BinarySize() int {
	polySize := km.params.N() * km.params.QCount() << 3
	return headerSize + 3*polySize + 4 + 2*km.params.QCount()*polySize
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/buffer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w.
func (km *KeyMaterial) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if err = km.checkShape(); err != nil {
			return 0, fmt.Errorf("cannot WriteTo: %w", err)
		}

		var inc int64
		if inc, err = writeHeader(w, magicKeyMaterial, km.params); err != nil {
			return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
		}
		n += inc

		ringQ := km.params.RingQ()
		buff := ringQ.NewPoly()

		head, rlk := km.keyPolys()

		for _, p := range head {
			if inc, err = writePoly(w, ringQ, p, buff); err != nil {
				return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
			}
			n += inc
		}

		if inc, err = buffer.WriteUint32(w, uint32(len(km.Rlk.Value))); err != nil {
			return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
		}
		n += inc

		for _, p := range rlk {
			if inc, err = writePoly(w, ringQ, p, buff); err != nil {
				return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return km.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// If the receiver is bound to parameters (e.g. created with [NewKeyMaterial]), the
// parameters of the buffer must match them, otherwise an error wrapping
// [ErrParameterMismatch] is returned. A zero-value receiver takes the parameters of the buffer.
// On error, the receiver is left unchanged.
//
// Unless r implements the buffer.Reader interface, it will be wrapped into a bufio.Reader.
func (km *KeyMaterial) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var tmp *KeyMaterial
		if tmp, n, err = readKeyMaterial(r, km.params); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}
		*km = *tmp
		return
	default:
		return km.ReadFrom(bufio.NewReader(r))
	}
}

func readKeyMaterial(r buffer.Reader, target Parameters) (km *KeyMaterial, n int64, err error) {

	var pl ParametersLiteral
	if pl, n, err = readHeader(r, magicKeyMaterial, target); err != nil {
		return nil, n, err
	}

	N, qCount := literalShape(pl)
	polySize := int64(N) * int64(qCount) << 3

	var inc int64
	if r, inc, err = readBody(r, 3*polySize+4+2*int64(qCount)*polySize); err != nil {
		return nil, n + inc, err
	}

	var params Parameters
	if params, err = resolveParameters(pl, target); err != nil {
		return nil, n, err
	}

	km = NewKeyMaterial(params)
	ringQ := params.RingQ()

	head, rlk := km.keyPolys()

	for _, p := range head {
		if inc, err = readPoly(r, ringQ, p); err != nil {
			return nil, n + inc, err
		}
		n += inc
	}

	var count uint32
	var inc32 int
	if inc32, err = buffer.ReadUint32(r, &count); err != nil {
		return nil, n + int64(inc32), malformed("%v", err)
	}
	n += int64(inc32)

	if int(count) != params.QCount() {
		return nil, n, malformed("relinearization key count %d is not %d", count, params.QCount())
	}

	for _, p := range rlk {
		if inc, err = readPoly(r, ringQ, p); err != nil {
			return nil, n + inc, err
		}
		n += inc
	}

	return
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (km *KeyMaterial) MarshalBinary() (p []byte, err error) {
	if err = km.checkShape(); err != nil {
		return nil, fmt.Errorf("cannot MarshalBinary: %w", err)
	}
	buf := buffer.NewBufferSize(km.BinarySize())
	_, err = km.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// [KeyMaterial.MarshalBinary] or [KeyMaterial.WriteTo] on the object.
// The whole slice must be consumed. On error, the receiver is left unchanged.
func (km *KeyMaterial) UnmarshalBinary(p []byte) (err error) {
	var tmp *KeyMaterial
	if tmp, err = decodeKeyMaterial(p, km.params); err != nil {
		return fmt.Errorf("cannot UnmarshalBinary: %w", err)
	}
	*km = *tmp
	return
}

// DecodeKeyMaterial decodes a slice of bytes generated by [KeyMaterial.MarshalBinary]
// into a new [KeyMaterial], whose parameters are those of the buffer.
func DecodeKeyMaterial(p []byte) (km *KeyMaterial, err error) {
	if km, err = decodeKeyMaterial(p, Parameters{}); err != nil {
		return nil, fmt.Errorf("cannot DecodeKeyMaterial: %w", err)
	}
	return
}

func decodeKeyMaterial(p []byte, target Parameters) (km *KeyMaterial, err error) {

	buf := buffer.NewBuffer(p)

	if km, _, err = readKeyMaterial(buf, target); err != nil {
		return nil, err
	}

	if buf.Size() != 0 {
		return nil, malformed("%d trailing bytes", buf.Size())
	}

	return
}

// BinarySize returns the serialized size of the object in bytes.
func (ct *Ciphertext) BinarySize() int {
	return headerSize + 2 + len(ct.Value)*ct.params.N()*(ct.Level()+1)<<3
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface, it will be wrapped into a bufio.Writer.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if err = ct.checkShape(ct.params); err != nil {
			return 0, fmt.Errorf("cannot WriteTo: %w", err)
		}

		var inc int64
		if inc, err = writeHeader(w, magicCiphertext, ct.params); err != nil {
			return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
		}
		n += inc

		if inc, err = buffer.WriteUint8(w, uint8(ct.Level())); err != nil {
			return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
		}
		n += inc

		if inc, err = buffer.WriteUint8(w, uint8(ct.Degree())); err != nil {
			return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
		}
		n += inc

		ringQ := ct.params.RingQ().AtLevel(ct.Level())
		buff := ringQ.NewPoly()

		for _, p := range ct.Value {
			if inc, err = writePoly(w, ringQ, p, buff); err != nil {
				return n + inc, fmt.Errorf("cannot WriteTo: %w", err)
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// If the receiver is bound to parameters (e.g. created with [NewCiphertext]), the
// parameters of the buffer must match them, otherwise an error wrapping
// [ErrParameterMismatch] is returned. A zero-value receiver takes the parameters of the buffer.
// On error, the receiver is left unchanged.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var tmp *Ciphertext
		if tmp, n, err = readCiphertext(r, ct.params); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}
		*ct = *tmp
		return
	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

func readCiphertext(r buffer.Reader, target Parameters) (ct *Ciphertext, n int64, err error) {

	var pl ParametersLiteral
	if pl, n, err = readHeader(r, magicCiphertext, target); err != nil {
		return nil, n, err
	}

	N, qCount := literalShape(pl)

	var level, degree uint8
	var inc int

	if inc, err = buffer.ReadUint8(r, &level); err != nil {
		return nil, n + int64(inc), malformed("%v", err)
	}
	n += int64(inc)

	if int(level) >= qCount {
		return nil, n, malformed("level %d is greater than %d", level, qCount-1)
	}

	if inc, err = buffer.ReadUint8(r, &degree); err != nil {
		return nil, n + int64(inc), malformed("%v", err)
	}
	n += int64(inc)

	if degree < 1 || degree > 2 {
		return nil, n, malformed("degree %d is not 1 or 2", degree)
	}

	var inc64 int64
	if r, inc64, err = readBody(r, int64(degree+1)*int64(N)*int64(level+1)<<3); err != nil {
		return nil, n + inc64, err
	}

	var params Parameters
	if params, err = resolveParameters(pl, target); err != nil {
		return nil, n, err
	}

	ct = NewCiphertext(params, int(degree), int(level))
	ringQ := params.RingQ().AtLevel(int(level))

	for _, p := range ct.Value {
		if inc64, err = readPoly(r, ringQ, p); err != nil {
			return nil, n + inc64, err
		}
		n += inc64
	}

	return
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct *Ciphertext) MarshalBinary() (p []byte, err error) {
	if err = ct.checkShape(ct.params); err != nil {
		return nil, fmt.Errorf("cannot MarshalBinary: %w", err)
	}
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// [Ciphertext.MarshalBinary] or [Ciphertext.WriteTo] on the object.
// The whole slice must be consumed. On error, the receiver is left unchanged.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	var tmp *Ciphertext
	if tmp, err = decodeCiphertext(p, ct.params); err != nil {
		return fmt.Errorf("cannot UnmarshalBinary: %w", err)
	}
	*ct = *tmp
	return
}

// DecodeCiphertext decodes a slice of bytes generated by [Ciphertext.MarshalBinary]
// into a new [Ciphertext], whose parameters are those of the buffer.
func DecodeCiphertext(p []byte) (ct *Ciphertext, err error) {
	if ct, err = decodeCiphertext(p, Parameters{}); err != nil {
		return nil, fmt.Errorf("cannot DecodeCiphertext: %w", err)
	}
	return
}

func decodeCiphertext(p []byte, target Parameters) (ct *Ciphertext, err error) {

	buf := buffer.NewBuffer(p)

	if ct, _, err = readCiphertext(buf, target); err != nil {
		return nil, err
	}

	if buf.Size() != 0 {
		return nil, malformed("%d trailing bytes", buf.Size())
	}

	return
}
