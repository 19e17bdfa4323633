// SPDX-License-Identifier: MIT
//
// Package cmd wires the voccal command line: listing filters and devices,
// previewing, recording, rendering and the terminal studio.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"voccal/internal/config"
	"voccal/internal/log"
	"voccal/pkg/build"
)

// options are the global flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg *config.Config
}

// Execute runs the command line with args, writing normal output to out.
func Execute(args []string, out io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file (default ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Override log_level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")

	rootCmd.AddCommand(
		newFiltersCommand(opts),
		newDevicesCommand(opts),
		newRenderCommand(opts),
		newPlayCommand(opts),
		newRecordCommand(opts),
		newStudioCommand(opts),
	)
	return rootCmd
}

// load reads the configuration and applies the logging flags.
func (o *options) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if o.verbose || cfg.Debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)
	o.cfg = cfg
	log.Debugf("configuration loaded: %+v", *cfg)
	return nil
}
