package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/share"
)

func newExportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export every note as JSON and share the file",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			path, err := app.Share.ExportAll(cmd.Context(), app.Notes.List())
			if path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if errors.Is(err, share.ErrSharingUnavailable) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: sharing is not configured, export kept locally")
				return nil
			}
			return err
		},
	}
}

func newShareCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "share <note-id>",
		Short: "Share one note as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			note, ok := app.Notes.Get(args[0])
			if !ok {
				return notFound("note", args[0], core.ErrNotFound)
			}
			if err := app.Share.ShareOne(cmd.Context(), note); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Shared "+note.ID)
			return nil
		},
	}
}
