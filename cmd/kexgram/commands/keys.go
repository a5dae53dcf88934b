package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List stored auth keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Config.Passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}

			keys, err := wire.Auth.Keys(wire.Config.Passphrase)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No stored keys")
				return nil
			}

			ids := make([]int, 0, len(keys))
			for id := range keys {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			for _, id := range ids {
				fmt.Printf("DC %d: key id %#x\n", id, uint64(keys[id].ID))
			}
			return nil
		},
	}
	return cmd
}
