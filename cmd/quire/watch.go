package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Reload collections when the data directory changes",
		Long: `Watch follows external edits to the stored keys (e.g. from a sync tool)
and reloads the affected collection. The pattern is a glob over keys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			events, err := app.Watch(ctx, pattern)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", app.Path())
			fs.Forward(ctx, events, func(e core.Event) {
				if err := app.Reload(context.WithoutCancel(ctx), e.Key); err != nil {
					c.logger.Error("reload failed", "key", e.Key, "error", err)
					return
				}
				fmt.Fprintln(out, e.String())
			}, func(err error) {
				c.logger.Error("watch handler failed", "error", err)
			})

			<-ctx.Done()
			return nil
		},
	}
}
