package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// import-key <hex>: seal the participant key under the passphrase.
func importKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-key <hex-private-key>",
		Short: "Import the participant key and store it encrypted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			addr, err := wire.Identity.ImportKey(passphrase, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key imported.\nAddress: %s\n", addr.Hex())
			return nil
		},
	}
}
