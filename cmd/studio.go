// SPDX-License-Identifier: MIT
package cmd

import (
	"github.com/spf13/cobra"

	"voccal/internal/audio"
	"voccal/internal/filter"
	"voccal/internal/tui"
)

func newStudioCommand(opts *options) *cobra.Command {
	var logPath string
	c := &cobra.Command{
		Use:   "studio INPUT",
		Short: "Audition a take through every filter and export the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readInput(args[0], opts.cfg.Recording.MaxBytes)
			if err != nil {
				return err
			}

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
			studio := tui.NewStudio(args[0], buf,
				filter.Selectable(opts.cfg.Filters.SpatialEnabled),
				player, audio.NewRenderer(opts.cfg.Render))

			if _, err := tui.Run(studio, logPath); err != nil {
				return err
			}
			return actx.Close()
		},
	}
	c.Flags().StringVar(&logPath, "log-file", "voccal.log",
		"Where log output goes while the studio is open")
	return c
}
