package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCalendarCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the calendars tasks can be linked to",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available calendars",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			cals, err := app.Provider.Calendars(cmd.Context())
			if err != nil {
				return err
			}
			for _, cal := range cals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cal.ID, cal.Name)
			}
			return nil
		},
	})
	return cmd
}
