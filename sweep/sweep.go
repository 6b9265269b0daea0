// Package sweep moves funds out of a recovered one-time account with a single
// system-program transfer.
package sweep

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	stealth "github.com/athanorlabs/go-stealth"
)

// MinRemainingLamports is the balance callers should leave behind so the
// account can still pay fees. BuildAndSignTransfer does not enforce it; use
// SweepableAmount to apply it.
const MinRemainingLamports uint64 = 1_000_000

var (
	ErrZeroAmount        = errors.New("sweep amount must be non-zero")
	ErrUnsupportedSigner = errors.New("signer does not produce ed25519 signatures")
)

// Address returns the ledger address controlled by signer.
func Address(signer *stealth.Signer) (solana.PublicKey, error) {
	if signer.Curve().Name() != "ed25519" {
		return solana.PublicKey{}, fmt.Errorf("%w: curve %s", ErrUnsupportedSigner, signer.Curve().Name())
	}

	return solana.PublicKeyFromBytes(signer.PublicKey().Encode()), nil
}

// SweepableAmount is balance minus MinRemainingLamports, or 0 when the
// balance does not cover the reserve.
func SweepableAmount(balance uint64) uint64 {
	if balance <= MinRemainingLamports {
		return 0
	}

	return balance - MinRemainingLamports
}

// BuildAndSignTransfer builds a transaction transferring amount lamports from
// the signer's address to destination, paid for and signed by signer.
//
// The amount is not checked against the account balance.
func BuildAndSignTransfer(
	signer *stealth.Signer,
	destination solana.PublicKey,
	amount uint64,
	recentBlockhash solana.Hash,
) (*solana.Transaction, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	from, err := Address(signer)
	if err != nil {
		return nil, err
	}

	ix := system.NewTransferInstruction(amount, from, destination).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recentBlockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, err
	}

	tx.Signatures = []solana.Signature{solana.SignatureFromBytes(sig)}
	return tx, nil
}
