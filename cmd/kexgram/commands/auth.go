package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"kexgram/internal/dc"
	"kexgram/internal/protocol/handshake"
)

// auth: run the full key exchange against one data center.
func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <dc-id>",
		Short: "Negotiate an auth key with a data center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || !dc.Valid(id) {
				return fmt.Errorf("invalid dc id %q", args[0])
			}
			target, ok := dc.Find(id, wire.Config.Test)
			if !ok {
				return fmt.Errorf("no known endpoint for dc %d", id)
			}

			// Permanent keys are written to the store and need the
			// passphrase; temporary keys never touch disk.
			mode := handshake.ModeMain
			if tempKey {
				mode = handshake.ModeTemp
			} else if wire.Config.Passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}

			key, salt, err := wire.Auth.Negotiate(cmd.Context(), wire.Config.Passphrase, target, mode, keyTTL)
			if err != nil {
				return fmt.Errorf("negotiating with dc %d: %w", id, err)
			}

			fmt.Printf("Negotiated auth key with DC %d (%s)\n", id, target.Addr())
			fmt.Printf("Key ID:      %#x\n", uint64(key.ID))
			fmt.Printf("Server salt: %#x\n", uint64(salt.Value))
			if !key.Permanent() {
				fmt.Printf("Expires:     %s\n", key.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tempKey, "temp", false, "negotiate a temporary key (kept out of the store)")
	cmd.Flags().DurationVar(&keyTTL, "ttl", 24*time.Hour, "temporary key lifetime")
	return cmd
}
