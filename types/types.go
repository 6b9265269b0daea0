package types

import "io"

// Curve is the group a stealth identity lives in.
type Curve interface {
	Name() string
	ScalarSize() int
	CompressedPointSize() int
	BasePoint() Point
	NewRandomScalar(io.Reader) (Scalar, error)
	// ScalarFromBytes reduces b modulo the group order. It never fails.
	ScalarFromBytes(b [32]byte) Scalar
	DecodeToScalar([]byte) (Scalar, error)
	DecodeToPoint([]byte) (Point, error)
	HashToScalar([]byte) Scalar
	ScalarBaseMul(Scalar) Point
	ScalarMul(Scalar, Point) Point
	Sign(s Scalar, msg []byte) ([]byte, error)
	Verify(pub Point, msg, sig []byte) bool
}

type Scalar interface {
	Add(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Copy() Scalar
	Encode() []byte
	Eq(Scalar) bool
	IsZero() bool
	// Zero overwrites the scalar in place.
	Zero()
}

type Point interface {
	Copy() Point
	Add(Point) Point
	ScalarMul(Scalar) Point
	Encode() []byte
	Equals(other Point) bool
}
