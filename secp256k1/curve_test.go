package secp256k1

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athanorlabs/go-stealth/types"
)

// group order n, big-endian
const orderHex = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

func TestScalarFromBytes_Reduces(t *testing.T) {
	c := NewCurve()

	var n [32]byte
	b, err := hex.DecodeString(orderHex)
	require.NoError(t, err)
	copy(n[:], b)
	require.True(t, c.ScalarFromBytes(n).IsZero())

	n[31]++
	var one [32]byte
	one[31] = 1
	require.True(t, c.ScalarFromBytes(n).Eq(c.ScalarFromBytes(one)))
}

func TestBasePoint(t *testing.T) {
	c := NewCurve()
	g, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	require.Equal(t, g, c.BasePoint().Encode())
}

func TestDecodeToPoint(t *testing.T) {
	c := NewCurve()
	x, err := c.NewRandomScalar(rand.Reader)
	require.NoError(t, err)

	enc := c.ScalarBaseMul(x).Encode()
	p, err := c.DecodeToPoint(enc)
	require.NoError(t, err)
	require.Equal(t, enc, p.Encode())

	_, err = c.DecodeToPoint(enc[:32])
	require.ErrorIs(t, err, types.ErrInvalidPoint)

	_, err = c.DecodeToPoint(make([]byte, 33))
	require.ErrorIs(t, err, types.ErrInvalidPoint)
}

func TestSignVerify(t *testing.T) {
	c := NewCurve()
	x, err := c.NewRandomScalar(rand.Reader)
	require.NoError(t, err)
	pub := c.ScalarBaseMul(x)

	sig, err := c.Sign(x, []byte("message"))
	require.NoError(t, err)
	require.True(t, c.Verify(pub, []byte("message"), sig))
	require.False(t, c.Verify(pub, []byte("massage"), sig))
	require.False(t, c.Verify(pub, []byte("message"), sig[1:]))
}

func TestPointArithmetic(t *testing.T) {
	c := NewCurve()
	a, err := c.NewRandomScalar(rand.Reader)
	require.NoError(t, err)
	b, err := c.NewRandomScalar(rand.Reader)
	require.NoError(t, err)

	require.True(t, c.ScalarBaseMul(a.Add(b)).Equals(c.ScalarBaseMul(a).Add(c.ScalarBaseMul(b))))
	require.True(t, c.ScalarMul(a, c.ScalarBaseMul(b)).Equals(c.ScalarBaseMul(b).ScalarMul(a)))

	inf := c.ScalarBaseMul(a).Add(c.ScalarBaseMul(a.Negate()))
	require.Equal(t, make([]byte, 33), inf.Encode())
}

func TestScalar_Zero(t *testing.T) {
	c := NewCurve()
	x, err := c.NewRandomScalar(rand.Reader)
	require.NoError(t, err)
	y := x.Copy()

	x.Zero()
	require.True(t, x.IsZero())
	require.False(t, y.IsZero())
}
