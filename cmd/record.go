// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voccal/internal/audio"
	"voccal/internal/filter"
	"voccal/internal/pcm"
)

func newRecordCommand(opts *options) *cobra.Command {
	var (
		filterID string
		output   string
		duration time.Duration
	)
	c := &cobra.Command{
		Use:   "record",
		Short: "Record from the input device, optionally applying a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOffered(opts.cfg, filterID); err != nil {
				return err
			}
			if duration > 0 {
				opts.cfg.Recording.MaxDuration = duration
			}
			if output == "" {
				output = defaultRecordingPath(opts.cfg.Recording.OutputDir, time.Now())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			actx, err := audio.NewContext(opts.cfg)
			if err != nil {
				return err
			}
			defer actx.Close()

			rec, err := audio.NewRecorder(actx)
			if err != nil {
				return err
			}
			if err := rec.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recording up to %s (Ctrl+C to stop)\n",
				pcm.FramesDuration(rec.MaxFrames(), int(opts.cfg.Audio.SampleRate)))

			select {
			case <-rec.Limit():
				fmt.Fprintln(cmd.OutOrStdout(), "Recording limit reached")
			case <-ctx.Done():
			}
			buf, err := rec.Stop()
			if err != nil {
				return err
			}

			res, err := audio.NewRenderer(opts.cfg.Render).Render(buf, filterID)
			if err != nil {
				return err
			}
			if err := writeOutput(output, res.Bytes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recording saved to: %s (%s)\n", output, res.Duration)
			return actx.Close()
		},
	}
	c.Flags().StringVarP(&filterID, "filter", "f", filter.IdentityID, "Filter applied before saving")
	c.Flags().StringVarP(&output, "output", "o", "",
		"Output file (default recording-DD-MM-YYYY-HHMMSS.wav in recording.output_dir)")
	c.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop after this long (default recording.max_duration)")
	return c
}
