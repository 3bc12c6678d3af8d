package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ceremony/internal/crypto"
)

// words: list the keyword pairs assigned to the identity for flip authoring.
func wordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the keyword pairs assigned for this epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key, err := wire.Identity.UnlockKey(passphrase)
			if err != nil {
				return err
			}
			defer crypto.ZeroKey(key)

			pairs, err := wire.WordPairs(cmd.Context(), key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range pairs {
				used := ""
				if p.Used {
					used = " (used)"
				}
				fmt.Fprintf(out, "%3d  %d/%d%s\n", p.ID, p.Words[0], p.Words[1], used)
			}
			return nil
		},
	}
}
