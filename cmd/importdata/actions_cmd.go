package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/handlers"
)

// commandTable lists the actions without any store behind them.
func commandTable() *core.CommandTable {
	return handlers.NewCommandTable(&handlers.Deps{})
}

func newActionsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the available import actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range commandTable().All() {
				fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Description)
				if !verbose {
					continue
				}
				for _, s := range c.Steps {
					mode := ""
					if s.ForceSupplement {
						mode = " (supplement)"
					}
					fmt.Fprintf(w, "\t  %s: %d columns%s\n", s.Entity(), core.FieldCount(s.Handler), mode)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also list each action's entities and column counts")
	return cmd
}
