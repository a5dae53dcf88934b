package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"kexgram/internal/dc"
)

func dcsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dcs",
		Short: "List known data center endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			flavor := "production"
			if wire.Config.Test {
				flavor = "test"
			}
			fmt.Printf("Known %s data centers:\n", flavor)
			for _, o := range dc.List(wire.Config.Test) {
				fmt.Printf("  DC %d  %s\n", o.ID, o.Addr())
			}
			return nil
		},
	}
	return cmd
}
