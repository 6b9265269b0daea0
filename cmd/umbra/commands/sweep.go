package commands

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/athanorlabs/go-stealth/memo"
	"github.com/athanorlabs/go-stealth/sweep"
)

var errNotOurs = errors.New("output does not belong to this identity")

// sweep: sign a transfer out of a one-time account. The transaction is
// printed base64-encoded for broadcasting elsewhere.
func (c *cli) sweepCmd() *cobra.Command {
	var (
		memoText  string
		to        string
		blockhash string
		amount    uint64
		balance   uint64
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sign a transfer of a received payment to another address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, err := solana.PublicKeyFromBase58(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			hash, err := solana.HashFromBase58(blockhash)
			if err != nil {
				return fmt.Errorf("--blockhash: %w", err)
			}

			if amount == 0 {
				amount = sweep.SweepableAmount(balance)
			}

			ephemeralBytes, oneTimeBytes, err := memo.Decode(memoText)
			if err != nil {
				return err
			}

			id, err := c.loadIdentity()
			if err != nil {
				return err
			}
			defer id.Wipe()

			ephemeral, err := id.Curve.DecodeToPoint(ephemeralBytes)
			if err != nil {
				return fmt.Errorf("ephemeral key: %w", err)
			}
			oneTime, err := id.Curve.DecodeToPoint(oneTimeBytes)
			if err != nil {
				return fmt.Errorf("one-time key: %w", err)
			}

			rec, ok := id.Recover(oneTime, ephemeral)
			if !ok {
				return errNotOurs
			}

			signer := rec.Signer()
			defer signer.Wipe()

			tx, err := sweep.BuildAndSignTransfer(signer, destination, amount, hash)
			if err != nil {
				return err
			}

			raw, err := tx.MarshalBinary()
			if err != nil {
				return err
			}

			c.logger.Info("signed sweep",
				"from", tx.Message.AccountKeys[0].String(),
				"to", destination.String(),
				"lamports", amount,
				"signature", tx.Signatures[0].String(),
			)

			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&memoText, "memo", "", "memo of the payment to sweep")
	cmd.Flags().StringVar(&to, "to", "", "destination address")
	cmd.Flags().StringVar(&blockhash, "blockhash", "", "recent blockhash")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "lamports to transfer")
	cmd.Flags().Uint64Var(&balance, "balance", 0, "current balance; transfers all but the fee reserve when --amount is not set")
	_ = cmd.MarkFlagRequired("memo")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("blockhash")
	return cmd
}
