// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"voccal/internal/filter"
)

func newFiltersCommand(opts *options) *cobra.Command {
	var all bool
	c := &cobra.Command{
		Use:   "filters",
		Short: "List the available voice filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := filter.Selectable(all || opts.cfg.Filters.SpatialEnabled)
			fmt.Fprintln(cmd.OutOrStdout(), filterTable(filters))
			return nil
		},
	}
	c.Flags().BoolVarP(&all, "all", "a", false, "Include experimental filters")
	return c
}

func filterTable(filters []filter.Descriptor) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "FAMILY", "RATE", "")
	for _, d := range filters {
		note := ""
		if d.Experimental {
			note = "experimental"
		}
		t.Row(d.ID, d.Name, string(d.Family), strconv.FormatFloat(d.PlaybackRate, 'g', -1, 64), note)
	}
	return t.String()
}
