// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voccal/internal/audio"
	"voccal/internal/filter"
)

func newPlayCommand(opts *options) *cobra.Command {
	var filterID string
	c := &cobra.Command{
		Use:   "play INPUT",
		Short: "Preview a WAV file through a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOffered(opts.cfg, filterID); err != nil {
				return err
			}
			buf, err := readInput(args[0], opts.cfg.Recording.MaxBytes)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			monitor, closeMonitor, err := startMonitor(opts.cfg.Monitor)
			if err != nil {
				return err
			}
			defer closeMonitor()

			actx, err := audio.NewContext(opts.cfg)
			if err != nil {
				return err
			}
			defer actx.Close()

			player, err := audio.NewPlayer(actx, monitor)
			if err != nil {
				return err
			}
			ended := make(chan struct{})
			if err := player.Play(buf, filterID, func() { close(ended) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s with %q (Ctrl+C to stop)\n", args[0], filterID)

			select {
			case <-ended:
			case <-ctx.Done():
				if err := player.Stop(); err != nil {
					return err
				}
			}
			return actx.Close()
		},
	}
	c.Flags().StringVarP(&filterID, "filter", "f", filter.IdentityID, "Filter id (see 'filters')")
	return c
}
