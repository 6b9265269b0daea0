package keystore

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	stealth "github.com/athanorlabs/go-stealth"
)

const (
	hkdfInfoSpend = "umbra/identity/spend/v1/"
	hkdfInfoView  = "umbra/identity/view/v1/"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic returns a fresh 24-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	defer zeroBytes(entropy)

	return bip39.NewMnemonic(entropy)
}

// IdentityFromMnemonic deterministically derives an identity from a BIP-39
// mnemonic and optional password. Spend and view secrets come from separate
// HKDF expansions of the seed, so the same words give unrelated keys on
// different curves.
func IdentityFromMnemonic(curve stealth.Curve, mnemonic, password string) (*stealth.Identity, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMnemonic, err)
	}
	defer zeroBytes(seed)

	var spend, view [secretSize]byte
	defer zeroBytes(spend[:])
	defer zeroBytes(view[:])

	if err := hkdfExpand(seed, hkdfInfoSpend+curve.Name(), spend[:]); err != nil {
		return nil, err
	}
	if err := hkdfExpand(seed, hkdfInfoView+curve.Name(), view[:]); err != nil {
		return nil, err
	}

	return stealth.IdentityFromSecrets(curve, spend, view), nil
}

func hkdfExpand(seed []byte, info string, out []byte) error {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	_, err := io.ReadFull(reader, out)
	return err
}
