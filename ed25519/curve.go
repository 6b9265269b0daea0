package ed25519

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"
	"io"

	"filippo.io/edwards25519"

	"github.com/athanorlabs/go-stealth/types"
)

type Curve = types.Curve
type Point = types.Point
type Scalar = types.Scalar

var _ Curve = &CurveImpl{}
var _ Scalar = &ScalarImpl{}
var _ Point = &PointImpl{}

const (
	scalarSize = 32
	pointSize  = 32

	nonceDomain = "stealth/ed25519/nonce"
)

type CurveImpl struct{}

func NewCurve() Curve {
	return &CurveImpl{}
}

func (c *CurveImpl) Name() string {
	return "ed25519"
}

func (c *CurveImpl) ScalarSize() int {
	return scalarSize
}

func (c *CurveImpl) CompressedPointSize() int {
	return pointSize
}

func (c *CurveImpl) BasePoint() Point {
	return &PointImpl{
		inner: edwards25519.NewGeneratorPoint(),
	}
}

// NewRandomScalar draws 64 bytes from r and reduces them modulo the group
// order, which keeps the bias negligible.
func (c *CurveImpl) NewRandomScalar(r io.Reader) (Scalar, error) {
	var b [64]byte
	defer wipe(b[:])

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}

	s, err := edwards25519.NewScalar().SetUniformBytes(b[:])
	if err != nil {
		return nil, err
	}

	return &ScalarImpl{
		inner: s,
	}, nil
}

// ScalarFromBytes interprets b as a little-endian integer and reduces it
// modulo the group order. Non-canonical input is accepted.
func (c *CurveImpl) ScalarFromBytes(b [32]byte) Scalar {
	var wide [64]byte
	defer wipe(wide[:])
	copy(wide[:32], b[:])

	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		// only returned for a wrong input length
		panic(err)
	}

	return &ScalarImpl{
		inner: s,
	}
}

func (c *CurveImpl) DecodeToScalar(in []byte) (Scalar, error) {
	if len(in) != scalarSize {
		return nil, fmt.Errorf("%w: got %d bytes", types.ErrInvalidScalarLength, len(in))
	}

	var b [32]byte
	defer wipe(b[:])
	copy(b[:], in)
	return c.ScalarFromBytes(b), nil
}

// DecodeToPoint decompresses a 32-byte point. Encodings that are not on the
// curve, or that are not the canonical encoding of their point, are rejected.
func (c *CurveImpl) DecodeToPoint(in []byte) (Point, error) {
	if len(in) != pointSize {
		return nil, fmt.Errorf("%w: got %d bytes", types.ErrInvalidPoint, len(in))
	}

	p, err := new(edwards25519.Point).SetBytes(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidPoint, err)
	}

	if !bytes.Equal(p.Bytes(), in) {
		return nil, fmt.Errorf("%w: non-canonical encoding", types.ErrInvalidPoint)
	}

	return &PointImpl{
		inner: p,
	}, nil
}

// HashToScalar hashes the input with SHA-512 and reduces the low 32 bytes of
// the digest modulo the group order.
func (c *CurveImpl) HashToScalar(in []byte) Scalar {
	h := sha512.Sum512(in)
	defer wipe(h[:])

	var lo [32]byte
	defer wipe(lo[:])
	copy(lo[:], h[:32])
	return c.ScalarFromBytes(lo)
}

func (c *CurveImpl) ScalarBaseMul(s Scalar) Point {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	return &PointImpl{
		inner: new(edwards25519.Point).ScalarBaseMult(ss.inner),
	}
}

func (c *CurveImpl) ScalarMul(s Scalar, p Point) Point {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	pp, ok := p.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *ed25519.PointImpl")
	}

	return &PointImpl{
		inner: new(edwards25519.Point).ScalarMult(ss.inner, pp.inner),
	}
}

// Sign produces an Ed25519 signature over msg using the raw scalar s as the
// secret key. The result verifies with crypto/ed25519 against s·G.
//
// The nonce is derived from s and msg, so signing is deterministic.
func (c *CurveImpl) Sign(s Scalar, msg []byte) ([]byte, error) {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	if ss.inner.Equal(edwards25519.NewScalar()) == 1 {
		return nil, fmt.Errorf("cannot sign with zero scalar")
	}

	seed := ss.inner.Bytes()
	defer wipe(seed)

	h := sha512.New()
	h.Write([]byte(nonceDomain))
	h.Write(seed)
	prefix := h.Sum(nil)
	defer wipe(prefix)

	h.Reset()
	h.Write(prefix[32:])
	h.Write(msg)
	nonceDigest := h.Sum(nil)
	defer wipe(nonceDigest)

	r, err := edwards25519.NewScalar().SetUniformBytes(nonceDigest)
	if err != nil {
		return nil, fmt.Errorf("failed to set nonce bytes: %w", err)
	}
	defer r.Set(edwards25519.NewScalar())

	R := new(edwards25519.Point).ScalarBaseMult(r)
	A := new(edwards25519.Point).ScalarBaseMult(ss.inner)

	h.Reset()
	h.Write(R.Bytes())
	h.Write(A.Bytes())
	h.Write(msg)
	hram := h.Sum(nil)

	k, err := edwards25519.NewScalar().SetUniformBytes(hram)
	if err != nil {
		return nil, fmt.Errorf("failed to set challenge bytes: %w", err)
	}

	sigS := edwards25519.NewScalar().MultiplyAdd(k, ss.inner, r)
	return append(R.Bytes(), sigS.Bytes()...), nil
}

// Verify checks an Ed25519 signature with the standard library verifier, the
// same check the ledger runs.
func (c *CurveImpl) Verify(pubkey Point, msg, sig []byte) bool {
	pp, ok := pubkey.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *ed25519.PointImpl")
	}

	if len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pp.inner.Bytes()), msg, sig)
}

type ScalarImpl struct {
	inner *edwards25519.Scalar
}

func (s *ScalarImpl) Add(b Scalar) Scalar {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	return &ScalarImpl{
		inner: edwards25519.NewScalar().Add(s.inner, ss.inner),
	}
}

func (s *ScalarImpl) Mul(b Scalar) Scalar {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	return &ScalarImpl{
		inner: edwards25519.NewScalar().Multiply(s.inner, ss.inner),
	}
}

func (s *ScalarImpl) Negate() Scalar {
	return &ScalarImpl{
		inner: edwards25519.NewScalar().Negate(s.inner),
	}
}

func (s *ScalarImpl) Copy() Scalar {
	return &ScalarImpl{
		inner: edwards25519.NewScalar().Set(s.inner),
	}
}

// Encode returns the 32-byte canonical little-endian encoding.
func (s *ScalarImpl) Encode() []byte {
	return s.inner.Bytes()
}

func (s *ScalarImpl) Eq(b Scalar) bool {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}
	return s.inner.Equal(ss.inner) == 1
}

func (s *ScalarImpl) IsZero() bool {
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

func (s *ScalarImpl) Zero() {
	s.inner.Set(edwards25519.NewScalar())
}

type PointImpl struct {
	inner *edwards25519.Point
}

func (p *PointImpl) Copy() Point {
	return &PointImpl{
		inner: new(edwards25519.Point).Set(p.inner),
	}
}

func (p *PointImpl) Add(b Point) Point {
	pp, ok := b.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *ed25519.PointImpl")
	}

	return &PointImpl{
		inner: new(edwards25519.Point).Add(p.inner, pp.inner),
	}
}

func (p *PointImpl) ScalarMul(s Scalar) Point {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *ed25519.ScalarImpl")
	}

	return &PointImpl{
		inner: new(edwards25519.Point).ScalarMult(ss.inner, p.inner),
	}
}

// Encode returns the 32-byte compressed encoding.
func (p *PointImpl) Encode() []byte {
	return p.inner.Bytes()
}

func (p *PointImpl) Equals(other Point) bool {
	return bytes.Equal(p.Encode(), other.Encode())
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
