package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	stealth "github.com/athanorlabs/go-stealth"
	"github.com/athanorlabs/go-stealth/keystore"
)

func (c *cli) keygenCmd() *cobra.Command {
	var (
		withMnemonic bool
		restore      string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an identity and store it encrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.passphrase == "" {
				return errPassphraseRequired
			}

			if !force {
				_, err := os.Stat(c.cfg.Keystore)
				if err == nil {
					return fmt.Errorf("%s already exists (use --force to replace it)", c.cfg.Keystore)
				}
				if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			curve, err := stealth.CurveByName(c.cfg.Curve)
			if err != nil {
				return err
			}

			mnemonic := restore
			if withMnemonic && mnemonic == "" {
				mnemonic, err = keystore.NewMnemonic()
				if err != nil {
					return err
				}
			}

			var id *stealth.Identity
			if mnemonic != "" {
				id, err = keystore.IdentityFromMnemonic(curve, mnemonic, "")
			} else {
				id, err = stealth.NewIdentity(curve)
			}
			if err != nil {
				return err
			}
			defer id.Wipe()

			if err := c.saveIdentity(id); err != nil {
				return err
			}

			c.logger.Info("identity created", "keystore", c.cfg.Keystore, "curve", curve.Name())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "meta-address: %s\n", id.MetaAddress())
			if withMnemonic && restore == "" {
				fmt.Fprintf(out, "mnemonic: %s\n", mnemonic)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withMnemonic, "mnemonic", false, "derive the identity from a new mnemonic and print it")
	cmd.Flags().StringVar(&restore, "restore", "", "derive the identity from an existing mnemonic")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing keystore")
	return cmd
}

func (c *cli) addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the meta-address to give to senders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.loadIdentity()
			if err != nil {
				return err
			}
			defer id.Wipe()

			fmt.Fprintln(cmd.OutOrStdout(), id.MetaAddress())
			return nil
		},
	}
}
