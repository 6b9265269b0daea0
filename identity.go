package stealth

import (
	"crypto/rand"
	"io"
)

// Identity is a receiver's long-lived key material.
//
// SpendPublic = SpendSecret·G and ViewPublic = ViewSecret·G always hold for
// identities built by this package.
type Identity struct {
	Curve       Curve
	SpendSecret Scalar
	ViewSecret  Scalar
	SpendPublic Point
	ViewPublic  Point
}

// NewIdentity generates a fresh identity on the given curve using crypto/rand.
func NewIdentity(curve Curve) (*Identity, error) {
	return newIdentity(curve, rand.Reader)
}

func newIdentity(curve Curve, rng io.Reader) (*Identity, error) {
	spend, err := curve.NewRandomScalar(rng)
	if err != nil {
		return nil, err
	}

	view, err := curve.NewRandomScalar(rng)
	if err != nil {
		spend.Zero()
		return nil, err
	}

	return identityFromScalars(curve, spend, view), nil
}

// IdentityFromSecrets rebuilds an identity from previously persisted secret
// scalars. The inputs are reduced modulo the group order; callers importing
// untrusted bytes should check canonicity first. The caller still owns spend
// and view and should wipe them.
func IdentityFromSecrets(curve Curve, spend, view [32]byte) *Identity {
	return identityFromScalars(curve, curve.ScalarFromBytes(spend), curve.ScalarFromBytes(view))
}

func identityFromScalars(curve Curve, spend, view Scalar) *Identity {
	return &Identity{
		Curve:       curve,
		SpendSecret: spend,
		ViewSecret:  view,
		SpendPublic: curve.ScalarBaseMul(spend),
		ViewPublic:  curve.ScalarBaseMul(view),
	}
}

// MetaAddress returns the public half of the identity, which is what senders need.
func (id *Identity) MetaAddress() *MetaAddress {
	return &MetaAddress{
		Curve: id.Curve,
		Spend: id.SpendPublic.Copy(),
		View:  id.ViewPublic.Copy(),
	}
}

// Recover is shorthand for Recover(id, oneTime, ephemeral).
func (id *Identity) Recover(oneTime, ephemeral Point) (*Recovery, bool) {
	return Recover(id, oneTime, ephemeral)
}

// Wipe zeroes both secret scalars. The identity cannot recover outputs afterwards.
func (id *Identity) Wipe() {
	if id.SpendSecret != nil {
		id.SpendSecret.Zero()
	}
	if id.ViewSecret != nil {
		id.ViewSecret.Zero()
	}
}
