package stealth

import (
	"crypto/rand"
	"io"
)

// InitiatorOutput is what a sender publishes with a payment. It carries no
// secret material.
type InitiatorOutput struct {
	OneTimePublic   Point
	EphemeralPublic Point
}

// Recovery is the result of a successful match. SpendScalar is the secret key
// for the matched one-time public key; wipe the recovery as soon as a Signer
// has been built from it.
type Recovery struct {
	SharedSecretHash Scalar
	SpendScalar      Scalar

	curve Curve
}

// Signer builds a Signer from the recovered spend scalar and wipes the recovery.
func (r *Recovery) Signer() *Signer {
	defer r.Wipe()
	return NewSigner(r.curve, r.SpendScalar)
}

// Wipe zeroes the recovered scalars.
func (r *Recovery) Wipe() {
	if r.SharedSecretHash != nil {
		r.SharedSecretHash.Zero()
	}
	if r.SpendScalar != nil {
		r.SpendScalar.Zero()
	}
}

// Initiate derives a one-time public key for the receiver behind addr:
//
//	r random, R = r·G, S = r·view_pk, P = spend_pk + H_s(S)·G
//
// Every call draws a fresh r from crypto/rand, so outputs for the same
// address are unlinkable.
func Initiate(addr *MetaAddress) (*InitiatorOutput, error) {
	return initiate(addr, rand.Reader)
}

func initiate(addr *MetaAddress, rng io.Reader) (*InitiatorOutput, error) {
	curve := addr.Curve

	r, err := curve.NewRandomScalar(rng)
	if err != nil {
		return nil, err
	}
	defer r.Zero()

	R := curve.ScalarBaseMul(r)
	S := curve.ScalarMul(r, addr.View)

	h := sharedSecretHash(curve, S)
	defer h.Zero()

	return &InitiatorOutput{
		OneTimePublic:   addr.Spend.Add(curve.ScalarBaseMul(h)),
		EphemeralPublic: R,
	}, nil
}

// Recover checks whether (oneTime, ephemeral) was produced for id. It returns
// false when it was not, which is the common case while scanning; no match is
// never an error.
func Recover(id *Identity, oneTime, ephemeral Point) (*Recovery, bool) {
	curve := id.Curve

	// S' = view_sk·R equals r·view_pk when the output is ours
	S := curve.ScalarMul(id.ViewSecret, ephemeral)
	h := sharedSecretHash(curve, S)

	expected := id.SpendPublic.Add(curve.ScalarBaseMul(h))
	if !expected.Equals(oneTime) {
		h.Zero()
		return nil, false
	}

	return &Recovery{
		SharedSecretHash: h,
		SpendScalar:      id.SpendSecret.Add(h),
		curve:            curve,
	}, true
}

// sharedSecretHash is H_s over the canonical encoding of the shared point.
func sharedSecretHash(curve Curve, shared Point) Scalar {
	enc := shared.Encode()
	defer wipe(enc)
	return curve.HashToScalar(enc)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
