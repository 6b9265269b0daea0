package stealth

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// Disclosure lets a receiver prove to a third party that a published output
// pays to its meta-address, without handing over the view key.
//
// It reveals the shared point S = view_sk·R and proves with a Chaum-Pedersen
// DLEq proof that log_G(view_pk) == log_R(S). Anyone holding the proof can
// then recompute P = spend_pk + H_s(S)·G.
type Disclosure struct {
	SharedSecret Point
	challenge    Scalar
	response     Scalar
}

// Disclose builds a disclosure for the output with ephemeral key R.
func (id *Identity) Disclose(ephemeral Point) (*Disclosure, error) {
	return disclose(id, ephemeral, rand.Reader)
}

func disclose(id *Identity, ephemeral Point, rng io.Reader) (*Disclosure, error) {
	curve := id.Curve
	S := curve.ScalarMul(id.ViewSecret, ephemeral)

	k, err := curve.NewRandomScalar(rng)
	if err != nil {
		return nil, err
	}
	defer k.Zero()

	T1 := curve.ScalarBaseMul(k)
	T2 := curve.ScalarMul(k, ephemeral)

	c, err := hashToScalar(curve, curve.BasePoint(), id.ViewPublic, ephemeral, S, T1, T2)
	if err != nil {
		return nil, err
	}

	// z = k + c·b
	cb := id.ViewSecret.Mul(c)
	defer cb.Zero()
	z := k.Add(cb)

	return &Disclosure{
		SharedSecret: S,
		challenge:    c,
		response:     z,
	}, nil
}

// Verify checks the proof against addr and the published (R, P) pair.
func (d *Disclosure) Verify(addr *MetaAddress, ephemeral, oneTime Point) error {
	curve := addr.Curve
	negC := d.challenge.Negate()

	// T1 = z·G - c·V, T2 = z·R - c·S
	T1 := curve.ScalarBaseMul(d.response).Add(addr.View.ScalarMul(negC))
	T2 := ephemeral.ScalarMul(d.response).Add(d.SharedSecret.ScalarMul(negC))

	c, err := hashToScalar(curve, curve.BasePoint(), addr.View, ephemeral, d.SharedSecret, T1, T2)
	if err != nil {
		return err
	}

	if !c.Eq(d.challenge) {
		return fmt.Errorf("%w: proof does not verify", ErrInvalidDisclosure)
	}

	h := sharedSecretHash(curve, d.SharedSecret)
	if !addr.Spend.Add(curve.ScalarBaseMul(h)).Equals(oneTime) {
		return fmt.Errorf("%w: output does not pay to address", ErrInvalidDisclosure)
	}

	return nil
}

// Serialize encodes the disclosure as S || c || z.
func (d *Disclosure) Serialize() []byte {
	b := d.SharedSecret.Encode()
	b = append(b, d.challenge.Encode()...)
	b = append(b, d.response.Encode()...)
	return b
}

// Deserialize decodes a disclosure for the given curve. Scalars must be in
// canonical form. d is left unchanged on error.
func (d *Disclosure) Deserialize(curve Curve, in []byte) error {
	pointLen := curve.CompressedPointSize()
	scalarLen := curve.ScalarSize()

	if len(in) < pointLen+2*scalarLen {
		return errInputBytesTooShort
	}

	if len(in) > pointLen+2*scalarLen {
		return fmt.Errorf("%w: trailing bytes", ErrInvalidDisclosure)
	}

	reader := bytes.NewBuffer(in)

	shared, err := curve.DecodeToPoint(reader.Next(pointLen))
	if err != nil {
		return err
	}

	challenge, err := decodeCanonicalScalar(curve, reader.Next(scalarLen))
	if err != nil {
		return err
	}

	response, err := decodeCanonicalScalar(curve, reader.Next(scalarLen))
	if err != nil {
		return err
	}

	d.SharedSecret = shared
	d.challenge = challenge
	d.response = response
	return nil
}

func decodeCanonicalScalar(curve Curve, in []byte) (Scalar, error) {
	s, err := curve.DecodeToScalar(in)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(s.Encode(), in) {
		return nil, fmt.Errorf("%w: non-canonical scalar", ErrInvalidDisclosure)
	}

	return s, nil
}

func hashToScalar(curve Curve, elements ...interface{}) (Scalar, error) {
	preimage := []byte{}

	for _, e := range elements {
		switch el := e.(type) {
		case Scalar:
			preimage = append(preimage, el.Encode()...)
		case Point:
			preimage = append(preimage, el.Encode()...)
		default:
			return nil, errors.New("input element must be scalar or point")
		}
	}

	return curve.HashToScalar(preimage), nil
}
