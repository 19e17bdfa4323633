// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"voccal/internal/audio"
	"voccal/internal/config"
	"voccal/internal/tui"
)

func newDevicesCommand(opts *options) *cobra.Command {
	var pick bool
	c := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer func() {
				if terr := audio.Terminate(); err == nil {
					err = terr
				}
			}()

			if !pick {
				return audio.ListDevices(cmd.OutOrStdout())
			}
			sel, ok, err := tui.RunDevicePicker()
			if err != nil || !ok {
				return err
			}
			snippet, err := deviceConfigSnippet(opts.cfg.Audio, sel)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", sel.Device.Name, snippet)
			return nil
		},
	}
	c.Flags().BoolVarP(&pick, "pick", "p", false,
		"Choose a device interactively and print the matching config")
	return c
}

// deviceConfigSnippet renders the audio section that selects sel.
func deviceConfigSnippet(base config.AudioConfig, sel tui.DeviceSelection) ([]byte, error) {
	if sel.Device.MaxInputChannels > 0 {
		base.InputDevice = sel.Device.ID
		base.InputChannels = min(max(base.InputChannels, 1), sel.Device.MaxInputChannels)
	}
	if sel.Device.MaxOutputChannels > 0 {
		base.OutputDevice = sel.Device.ID
	}
	base.SampleRate = sel.SampleRate

	out, err := yaml.Marshal(struct {
		Audio config.AudioConfig `yaml:"audio"`
	}{base})
	if err != nil {
		return nil, fmt.Errorf("failed to encode device config: %w", err)
	}
	return out, nil
}
