package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

// flip-keys: print the public halves of the epoch's derived flip keys. The
// private scalars never leave the process.
func flipKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flip-keys",
		Short: "Print the public flip keys derived for an epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key, err := wire.Identity.UnlockKey(passphrase)
			if err != nil {
				return err
			}
			defer crypto.ZeroKey(key)

			ep := domain.Epoch(wire.Config.Epoch)
			if ep == 0 {
				info, err := wire.Node.Epoch(cmd.Context())
				if err != nil {
					return err
				}
				ep = info.Epoch
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Epoch:   %d\n", ep)
			for _, role := range []struct {
				name string
				role crypto.FlipKeyRole
			}{
				{"public", crypto.PublicFlipKey},
				{"private", crypto.PrivateFlipKey},
			} {
				fk, err := crypto.DeriveFlipKey(key, ep, role.role)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-8s %s\n", role.name+":", crypto.BytesToHex(crypto.PublicKeyBytes(&fk.PublicKey)))
				crypto.ZeroKey(fk)
			}
			return nil
		},
	}
}
