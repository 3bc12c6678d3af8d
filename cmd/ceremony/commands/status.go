package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// status: node sync state, identity and the ceremony timeline.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show node, identity and ceremony status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sync, err := wire.Node.Syncing(ctx)
			if err != nil {
				return err
			}
			ready, err := wire.Node.IsValidationReady(ctx)
			if err != nil {
				return err
			}
			ep, timing, err := wire.Timing(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Node:        %s (syncing=%t block=%d/%d ready=%t)\n",
				wire.Config.NodeURL, sync.Syncing, sync.CurrentBlock, sync.HighestBlock, ready)
			fmt.Fprintf(out, "Epoch:       %d\n", ep)
			fmt.Fprintf(out, "Validation:  %s\n", timing.ValidationStart.Local().Format(time.RFC1123))
			fmt.Fprintf(out, "Short ends:  %s\n", timing.ShortEnd().Local().Format(time.RFC1123))
			fmt.Fprintf(out, "Long ends:   %s\n", timing.LongEnd().Local().Format(time.RFC1123))

			if passphrase != "" {
				addr, err := wire.Identity.Address(passphrase)
				if err != nil {
					return err
				}
				id, err := wire.Node.Identity(ctx, addr)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Identity:    %s %s (flips %d/%d, online=%t)\n",
					addr.Hex(), id.State, id.MadeFlips, id.RequiredFlips, id.Online)
			}

			snap, ok, err := wire.Snapshots.LoadSnapshot(ep)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "Run:         %s phase=%s short=%s long=%s saved=%s\n",
					snap.RunID, snap.Phase, snap.Short.State, snap.Long.State,
					snap.SavedAt.Local().Format(time.RFC1123))
				if snap.Error != "" {
					fmt.Fprintf(out, "Last error:  %s\n", snap.Error)
				}
			}
			return nil
		},
	}
}
