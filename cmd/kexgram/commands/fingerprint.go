package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kexgram/internal/crypto"
)

// fingerprint: show the 64-bit ids a ResPQ could name for the given keys.
func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint <pem-file>...",
		Short: "Print fingerprints of server RSA key files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				keys, err := crypto.ParsePublicKeys(data)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", path, err)
				}
				for _, key := range keys {
					fmt.Printf("%s: %#x\n", path, uint64(key.Fingerprint()))
				}
			}
			return nil
		},
	}
	return cmd
}
