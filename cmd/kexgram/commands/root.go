package commands

import (
	"time"

	"github.com/spf13/cobra"

	"kexgram/internal/app"
)

var (
	home       string
	passphrase string
	rsaDir     string
	envFile    string
	testDCs    bool
	verbose    bool
	wire       *app.Wire

	tempKey bool
	keyTTL  time.Duration
)

func Execute() error {
	root := &cobra.Command{
		Use:   "kexgram",
		Short: "Negotiate MTProto auth keys with Telegram data centers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(envFile)
			if err != nil {
				return err
			}

			// Flags override the environment.
			if home != "" {
				cfg.Home = home
			}
			if rsaDir != "" {
				cfg.RSADir = rsaDir
			}
			if passphrase != "" {
				cfg.Passphrase = passphrase
			}
			if testDCs {
				cfg.Test = true
			}
			if verbose {
				cfg.Verbose = true
			}

			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.kexgram)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the stored keys")
	root.PersistentFlags().StringVar(&rsaDir, "rsa-dir", "", "directory of trusted server RSA keys (PEM)")
	root.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default .env)")
	root.PersistentFlags().BoolVar(&testDCs, "test", false, "use the test data centers")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log sent and received frames")

	root.AddCommand(authCmd(), keysCmd(), dcsCmd(), fingerprintCmd())
	return root.Execute()
}
