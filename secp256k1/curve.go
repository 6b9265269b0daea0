package secp256k1

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

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
	pointSize  = 33
)

type CurveImpl struct{}

func NewCurve() Curve {
	return &CurveImpl{}
}

func (c *CurveImpl) Name() string {
	return "secp256k1"
}

func (c *CurveImpl) ScalarSize() int {
	return scalarSize
}

func (c *CurveImpl) CompressedPointSize() int {
	return pointSize
}

func (c *CurveImpl) BasePoint() Point {
	one := new(secp256k1.ModNScalar).SetInt(1)
	return c.ScalarBaseMul(&ScalarImpl{inner: one})
}

// NewRandomScalar samples a non-zero scalar by rejection, so the result is
// uniform over [1, n).
func (c *CurveImpl) NewRandomScalar(r io.Reader) (Scalar, error) {
	var b [32]byte
	defer wipe(b[:])

	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}

		s := new(secp256k1.ModNScalar)
		overflow := s.SetByteSlice(b[:])
		if overflow || s.IsZero() {
			continue
		}

		return &ScalarImpl{
			inner: s,
		}, nil
	}
}

// ScalarFromBytes interprets b as a big-endian integer and reduces it modulo
// the group order.
func (c *CurveImpl) ScalarFromBytes(b [32]byte) Scalar {
	s := new(secp256k1.ModNScalar)
	_ = s.SetByteSlice(b[:])
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

// DecodeToPoint parses a 33-byte SEC1 compressed point.
func (c *CurveImpl) DecodeToPoint(in []byte) (Point, error) {
	if len(in) != pointSize {
		return nil, fmt.Errorf("%w: got %d bytes", types.ErrInvalidPoint, len(in))
	}

	pub, err := secp256k1.ParsePubKey(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidPoint, err)
	}

	p := new(secp256k1.JacobianPoint)
	pub.AsJacobian(p)
	return &PointImpl{
		inner: p,
	}, nil
}

// HashToScalar hashes the input with SHA3-512 and reduces the low 32 bytes
// of the digest modulo the group order.
func (c *CurveImpl) HashToScalar(in []byte) Scalar {
	h := sha3.Sum512(in)
	defer wipe(h[:])

	var lo [32]byte
	defer wipe(lo[:])
	copy(lo[:], h[:32])
	return c.ScalarFromBytes(lo)
}

func (c *CurveImpl) ScalarBaseMul(s Scalar) Point {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	res := new(secp256k1.JacobianPoint)
	secp256k1.ScalarBaseMultNonConst(ss.inner, res)
	res.ToAffine()
	return &PointImpl{
		inner: res,
	}
}

func (c *CurveImpl) ScalarMul(s Scalar, p Point) Point {
	pp, ok := p.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *secp256k1.PointImpl")
	}

	return pp.ScalarMul(s)
}

// Sign produces a DER-encoded RFC 6979 ECDSA signature over SHA-256(msg).
func (c *CurveImpl) Sign(s Scalar, msg []byte) ([]byte, error) {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	if ss.inner.IsZero() {
		return nil, fmt.Errorf("cannot sign with zero scalar")
	}

	var k secp256k1.ModNScalar
	k.Set(ss.inner)
	priv := secp256k1.NewPrivateKey(&k)
	defer priv.Zero()

	hash := sha256.Sum256(msg)
	sig := ecdsa.Sign(priv, hash[:])
	return sig.Serialize(), nil
}

func (c *CurveImpl) Verify(pubkey Point, msg, sig []byte) bool {
	pp, ok := pubkey.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *secp256k1.PointImpl")
	}

	if pp.isInfinity() {
		return false
	}

	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}

	hash := sha256.Sum256(msg)
	return parsed.Verify(hash[:], pp.pubKey())
}

type ScalarImpl struct {
	inner *secp256k1.ModNScalar
}

func (s *ScalarImpl) Add(b Scalar) Scalar {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	return &ScalarImpl{
		inner: new(secp256k1.ModNScalar).Add2(s.inner, ss.inner),
	}
}

func (s *ScalarImpl) Mul(b Scalar) Scalar {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	return &ScalarImpl{
		inner: new(secp256k1.ModNScalar).Mul2(s.inner, ss.inner),
	}
}

func (s *ScalarImpl) Negate() Scalar {
	return &ScalarImpl{
		inner: new(secp256k1.ModNScalar).NegateVal(s.inner),
	}
}

func (s *ScalarImpl) Copy() Scalar {
	return &ScalarImpl{
		inner: new(secp256k1.ModNScalar).Set(s.inner),
	}
}

// Encode returns the 32-byte big-endian encoding.
func (s *ScalarImpl) Encode() []byte {
	b := s.inner.Bytes()
	return b[:]
}

func (s *ScalarImpl) Eq(b Scalar) bool {
	ss, ok := b.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	return s.inner.Equals(ss.inner)
}

func (s *ScalarImpl) IsZero() bool {
	return s.inner.IsZero()
}

func (s *ScalarImpl) Zero() {
	s.inner.Zero()
}

// PointImpl holds a point in affine form (Z = 1), or the point at infinity.
type PointImpl struct {
	inner *secp256k1.JacobianPoint
}

func (p *PointImpl) Copy() Point {
	res := new(secp256k1.JacobianPoint)
	res.Set(p.inner)
	return &PointImpl{
		inner: res,
	}
}

func (p *PointImpl) Add(b Point) Point {
	pp, ok := b.(*PointImpl)
	if !ok {
		panic("invalid point; type is not *secp256k1.PointImpl")
	}

	res := new(secp256k1.JacobianPoint)
	secp256k1.AddNonConst(p.inner, pp.inner, res)
	res.ToAffine()
	return &PointImpl{
		inner: res,
	}
}

func (p *PointImpl) ScalarMul(s Scalar) Point {
	ss, ok := s.(*ScalarImpl)
	if !ok {
		panic("invalid scalar; type is not *secp256k1.ScalarImpl")
	}

	res := new(secp256k1.JacobianPoint)
	secp256k1.ScalarMultNonConst(ss.inner, p.inner, res)
	res.ToAffine()
	return &PointImpl{
		inner: res,
	}
}

// Encode returns the 33-byte SEC1 compressed encoding. The point at infinity
// has no such encoding and is written as 33 zero bytes, which DecodeToPoint
// rejects.
func (p *PointImpl) Encode() []byte {
	if p.isInfinity() {
		return make([]byte, pointSize)
	}

	return p.pubKey().SerializeCompressed()
}

func (p *PointImpl) Equals(other Point) bool {
	return bytes.Equal(p.Encode(), other.Encode())
}

func (p *PointImpl) isInfinity() bool {
	return p.inner.Z.IsZero() || (p.inner.X.IsZero() && p.inner.Y.IsZero())
}

func (p *PointImpl) pubKey() *secp256k1.PublicKey {
	return secp256k1.NewPublicKey(&p.inner.X, &p.inner.Y)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
