// Package memo carries a stealth payment's public keys in a transaction memo.
//
// A memo is Prefix followed by base58(R || P), where R is the ephemeral public
// key and P the one-time public key, both in the curve's compressed encoding.
package memo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	stealth "github.com/athanorlabs/go-stealth"
)

// Prefix identifies a version 1 stealth memo.
const Prefix = "umbra:1:"

var (
	// ErrNotStealthMemo is returned for memos written by something else.
	// Scanners should skip these silently.
	ErrNotStealthMemo = errors.New("not a stealth memo")
	ErrMalformedMemo  = errors.New("malformed stealth memo")
)

// Encode renders out as memo text.
func Encode(out *stealth.InitiatorOutput) string {
	b := out.EphemeralPublic.Encode()
	b = append(b, out.OneTimePublic.Encode()...)
	return Prefix + base58.Encode(b)
}

// Decode splits a memo into the raw ephemeral and one-time key encodings.
// The keys are not decoded as points; that is left to the scanner.
func Decode(memo string) (ephemeral, oneTime []byte, err error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(memo), Prefix)
	if !ok {
		return nil, nil, ErrNotStealthMemo
	}

	raw, err := base58.Decode(body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedMemo, err)
	}

	// 32-byte ed25519 or 33-byte secp256k1 points
	if len(raw) != 64 && len(raw) != 66 {
		return nil, nil, fmt.Errorf("%w: payload is %d bytes", ErrMalformedMemo, len(raw))
	}

	half := len(raw) / 2
	return raw[:half], raw[half:], nil
}

// Candidate decodes memo into a scanner candidate for an output of amount at
// ref.
func Candidate(memo string, amount uint64, ref stealth.LedgerRef) (stealth.Candidate, error) {
	ephemeral, oneTime, err := Decode(memo)
	if err != nil {
		return stealth.Candidate{}, err
	}

	return stealth.Candidate{
		EphemeralPublic: ephemeral,
		OneTimePublic:   oneTime,
		Amount:          amount,
		Ref:             ref,
	}, nil
}
