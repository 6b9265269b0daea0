package types

import "errors"

var (
	// ErrInvalidPoint is returned when bytes do not decode to a point on the curve.
	ErrInvalidPoint = errors.New("invalid point encoding")
	// ErrInvalidScalarLength is returned when a scalar encoding has the wrong size.
	ErrInvalidScalarLength = errors.New("invalid scalar length")
)
