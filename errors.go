package stealth

import (
	"errors"

	"github.com/athanorlabs/go-stealth/types"
)

var (
	// ErrInvalidPoint is returned when candidate or address bytes do not
	// decode to a curve point.
	ErrInvalidPoint = types.ErrInvalidPoint
	// ErrSigningFailure wraps any failure of the underlying signature scheme.
	ErrSigningFailure = errors.New("signing failed")
	// ErrInvalidMetaAddress is returned by ParseMetaAddress.
	ErrInvalidMetaAddress = errors.New("invalid meta-address")
	// ErrUnknownCurve is returned for a curve name or id this package does not support.
	ErrUnknownCurve = errors.New("unknown curve")
	// ErrInvalidDisclosure is returned when a disclosure proof does not verify.
	ErrInvalidDisclosure = errors.New("invalid disclosure")

	errInputBytesTooShort = errors.New("input bytes too short")
)
