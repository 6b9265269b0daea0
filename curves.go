package stealth

import (
	"fmt"

	"github.com/athanorlabs/go-stealth/ed25519"
	"github.com/athanorlabs/go-stealth/secp256k1"
	"github.com/athanorlabs/go-stealth/types"
)

type Curve = types.Curve
type Point = types.Point
type Scalar = types.Scalar

// Curve identifiers used in serialized meta-addresses.
const (
	CurveIDEd25519   byte = 0x01
	CurveIDSecp256k1 byte = 0x02
)

// CurveByName returns the curve registered under name ("ed25519" or "secp256k1").
func CurveByName(name string) (Curve, error) {
	switch name {
	case "ed25519":
		return ed25519.NewCurve(), nil
	case "secp256k1":
		return secp256k1.NewCurve(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
}

func curveID(c Curve) (byte, error) {
	switch c.Name() {
	case "ed25519":
		return CurveIDEd25519, nil
	case "secp256k1":
		return CurveIDSecp256k1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurve, c.Name())
	}
}

func curveFromID(id byte) (Curve, error) {
	switch id {
	case CurveIDEd25519:
		return ed25519.NewCurve(), nil
	case CurveIDSecp256k1:
		return secp256k1.NewCurve(), nil
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnknownCurve, id)
	}
}
