package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/validation"
)

// run: drive the ceremony for the current epoch from a line console.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Take part in the validation ceremony",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key, err := wire.Identity.UnlockKey(passphrase)
			if err != nil {
				return err
			}
			defer crypto.ZeroKey(key)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			e, resumed, err := wire.NewEngine(ctx, key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if resumed {
				fmt.Fprintf(out, "resuming run %s\n", e.RunID())
			}

			c := &console{e: e, out: out, last: e.View()}
			done := make(chan error, 1)
			go func() { done <- e.Run(ctx) }()
			if err := e.Send(ctx, validation.StartSession{}); err != nil {
				return err
			}

			err = c.run(ctx, cmd.InOrStdin(), done)
			if xerrors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "interrupted, state saved")
				return nil
			}
			return err
		},
	}
}
