package commands

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	stealth "github.com/athanorlabs/go-stealth"
	"github.com/athanorlabs/go-stealth/memo"
)

// pay <meta-address>: derive a fresh one-time address for a payment.
func (c *cli) payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <meta-address>",
		Short: "Derive a one-time address and memo for paying a meta-address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := stealth.ParseMetaAddress(args[0])
			if err != nil {
				return err
			}

			out, err := addr.Initiate()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "one-time: %s\n", base58.Encode(out.OneTimePublic.Encode()))
			fmt.Fprintf(w, "ephemeral: %s\n", base58.Encode(out.EphemeralPublic.Encode()))
			fmt.Fprintf(w, "memo: %s\n", memo.Encode(out))
			return nil
		},
	}
}
