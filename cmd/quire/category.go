package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage note categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Register a category",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				name := strings.TrimSpace(strings.Join(args, " "))
				added, err := app.Categories.Add(cmd.Context(), name)
				if err == nil && !added {
					fmt.Fprintf(cmd.OutOrStdout(), "Category %q already exists\n", name)
					return nil
				}
				return report(cmd, err, "Added "+name)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range app.Categories.List() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			},
		},
	)
	return cmd
}
