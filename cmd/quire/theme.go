package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThemeCmd(c *cli) *cobra.Command {
	var next bool
	cmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "Show or change the color theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case next:
				name, err := app.Theme.Next(cmd.Context())
				return report(cmd, err, name)
			case len(args) == 1:
				return report(cmd, app.Theme.Set(cmd.Context(), args[0]), args[0])
			}
			name, err := app.Theme.Get(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "Switch to the next theme")
	return cmd
}
