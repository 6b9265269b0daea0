package stealth

import (
	"errors"
	"fmt"
)

var errSignerWiped = errors.New("signer has been wiped")

// Signer signs with a secret scalar using the curve's native signature
// scheme. The scalar never leaves the Signer.
//
// A Signer may be used from several goroutines, but Wipe must not race with Sign.
type Signer struct {
	curve  Curve
	secret Scalar
	public Point
}

// NewSigner copies secret into a new Signer. The caller keeps ownership of
// secret and is responsible for wiping it.
func NewSigner(curve Curve, secret Scalar) *Signer {
	s := secret.Copy()
	return &Signer{
		curve:  curve,
		secret: s,
		public: curve.ScalarBaseMul(s),
	}
}

func (s *Signer) Curve() Curve {
	return s.curve
}

// PublicKey returns secret·G. For a signer built from a Recovery this is the
// matched one-time public key.
func (s *Signer) PublicKey() Point {
	return s.public.Copy()
}

// Sign signs msg. Failures are wrapped in ErrSigningFailure.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	if s.secret == nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailure, errSignerWiped)
	}

	sig, err := s.curve.Sign(s.secret, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailure, err)
	}

	return sig, nil
}

// Verify checks sig over msg against the signer's public key.
func (s *Signer) Verify(msg, sig []byte) bool {
	return s.curve.Verify(s.public, msg, sig)
}

// Wipe zeroes the secret scalar. Sign fails afterwards.
func (s *Signer) Wipe() {
	if s.secret != nil {
		s.secret.Zero()
		s.secret = nil
	}
}
