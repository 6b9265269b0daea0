package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	stealth "github.com/athanorlabs/go-stealth"
	"github.com/athanorlabs/go-stealth/internal/logging"
	"github.com/athanorlabs/go-stealth/keystore"
)

var errPassphraseRequired = errors.New("passphrase required (-p or UMBRA_PASSPHRASE)")

type cli struct {
	configPath string
	passphrase string

	keystore  string
	curve     string
	workers   int
	logLevel  string
	logFormat string

	cfg    Config
	logger *slog.Logger
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:               "umbra",
		Short:             "Stealth payments on Solana",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.umbra/config.yaml)")
	flags.StringVarP(&c.passphrase, "passphrase", "p", "", "keystore passphrase (or UMBRA_PASSPHRASE)")
	flags.StringVar(&c.keystore, "keystore", "", "encrypted identity file (default ~/.umbra/identity.json)")
	flags.StringVar(&c.curve, "curve", "", "curve for new identities: ed25519 or secp256k1")
	flags.IntVar(&c.workers, "workers", 0, "scan goroutines (default GOMAXPROCS)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		c.keygenCmd(),
		c.addressCmd(),
		c.payCmd(),
		c.scanCmd(),
		c.sweepCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	if c.configPath == "" {
		c.configPath = os.Getenv("UMBRA_CONFIG")
	}

	cfg, err := LoadConfig(c.configPath, home, os.Getenv)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("keystore") {
		cfg.Keystore = c.keystore
	}
	if flags.Changed("curve") {
		cfg.Curve = c.curve
	}
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}

	if c.passphrase == "" {
		c.passphrase = os.Getenv("UMBRA_PASSPHRASE")
	}

	c.logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	c.cfg = cfg
	return nil
}

func (c *cli) loadIdentity() (*stealth.Identity, error) {
	if c.passphrase == "" {
		return nil, errPassphraseRequired
	}

	id, err := keystore.Load(c.cfg.Keystore, []byte(c.passphrase))
	if err != nil {
		return nil, fmt.Errorf("load keystore %s: %w", c.cfg.Keystore, err)
	}

	c.logger.Debug("loaded identity", "keystore", c.cfg.Keystore, "curve", id.Curve.Name())
	return id, nil
}

func (c *cli) saveIdentity(id *stealth.Identity) error {
	if err := os.MkdirAll(filepath.Dir(c.cfg.Keystore), 0o700); err != nil {
		return err
	}

	return keystore.Save(c.cfg.Keystore, id, []byte(c.passphrase))
}
