// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voccal/internal/audio"
	"voccal/internal/config"
	"voccal/internal/filter"
	"voccal/internal/tui"
)

func newRenderCommand(opts *options) *cobra.Command {
	var filterID, output string
	c := &cobra.Command{
		Use:   "render INPUT",
		Short: "Apply a filter to a WAV file and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOffered(opts.cfg, filterID); err != nil {
				return err
			}
			buf, err := readInput(args[0], opts.cfg.Recording.MaxBytes)
			if err != nil {
				return err
			}
			if output == "" {
				output = tui.ExportPath(args[0], filterID)
			}

			res, err := audio.NewRenderer(opts.cfg.Render).Render(buf, filterID)
			if err != nil {
				return err
			}
			if err := writeOutput(output, res.Bytes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames, %d ch @ %d Hz, %s, %d bytes\n",
				output, res.Frames, res.Channels, res.SampleRate, res.Duration, res.Size)
			return nil
		},
	}
	c.Flags().StringVarP(&filterID, "filter", "f", filter.IdentityID, "Filter id (see 'filters')")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (default INPUT-FILTER.wav)")
	return c
}

// checkOffered rejects ids a front-end would not offer: unknown ids and
// experimental filters while they are disabled.
func checkOffered(cfg *config.Config, filterID string) error {
	d, err := filter.Resolve(filterID)
	if err != nil {
		return err
	}
	if d.Experimental && !cfg.Filters.SpatialEnabled {
		return fmt.Errorf("filter %q is experimental; set filters.spatial_enabled to use it", filterID)
	}
	return nil
}
