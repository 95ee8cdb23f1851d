package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/view"
)

func newNoteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(c),
		newNoteEditCmd(c),
		newNoteRmCmd(c),
		newNoteFavCmd(c),
		newNoteShowCmd(c),
		newNoteListCmd(c),
	)
	return cmd
}

// noteFlags mirrors core.NoteFields on the command line.
type noteFlags struct {
	title     string
	content   string
	category  string
	image     string
	color     string
	bold      bool
	italic    bool
	underline bool
}

func (f *noteFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.title, "title", "t", "", "Note title")
	fs.StringVarP(&f.content, "content", "c", "", "Note content")
	fs.StringVar(&f.category, "category", "", "Category name")
	fs.StringVar(&f.image, "image", "", "Image URI")
	fs.StringVar(&f.color, "color", "", "Background color")
	fs.BoolVar(&f.bold, "bold", false, "Bold text")
	fs.BoolVar(&f.italic, "italic", false, "Italic text")
	fs.BoolVar(&f.underline, "underline", false, "Underlined text")
}

// apply copies the flags the user actually set onto fields.
func (f *noteFlags) apply(fs *pflag.FlagSet, fields *core.NoteFields) {
	if fs.Changed("title") {
		fields.Title = f.title
	}
	if fs.Changed("content") {
		fields.Content = f.content
	}
	if fs.Changed("category") {
		fields.Category = strings.TrimSpace(f.category)
	}
	if fs.Changed("image") {
		fields.Image = optional(f.image)
	}
	if fs.Changed("color") {
		fields.Color = optional(f.color)
	}
	if fs.Changed("bold") {
		fields.IsBold = f.bold
	}
	if fs.Changed("italic") {
		fields.IsItalic = f.italic
	}
	if fs.Changed("underline") {
		fields.IsUnderline = f.underline
	}
}

// optional maps an empty flag value to "unset".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return core.StringPtr(s)
}

func newNoteAddCmd(c *cli) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			var fields core.NoteFields
			f.apply(cmd.Flags(), &fields)
			if err := app.ValidateNote(fields); err != nil {
				return err
			}
			note, err := app.Notes.Create(cmd.Context(), fields)
			return report(cmd, err, note.ID)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newNoteEditCmd(c *cli) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update the fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			current, ok := app.Notes.Get(id)
			if !ok {
				return notFound("note", id, core.ErrNotFound)
			}
			fields := core.FieldsOf(current)
			f.apply(cmd.Flags(), &fields)
			// A stored category is only checked again when it is reassigned.
			var known func(string) bool
			if cmd.Flags().Changed("category") {
				known = app.Categories.Contains
			}
			if err := fields.Validate(known); err != nil {
				return err
			}
			_, err = app.Notes.Update(cmd.Context(), id, fields)
			return report(cmd, notFound("note", id, err), "Updated "+id)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newNoteRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			err = app.Notes.Delete(cmd.Context(), args[0])
			return report(cmd, notFound("note", args[0], err), "Deleted "+args[0])
		},
	}
}

func newNoteFavCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle the favorite flag of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			note, err := app.Notes.ToggleFavorite(cmd.Context(), args[0])
			return report(cmd, notFound("note", args[0], err), fmt.Sprintf("favorite=%t", note.IsFavorite))
		},
	}
}

func newNoteShowCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
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
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, note)
			}
			fmt.Fprintf(out, "# %s\n", note.Title)
			if note.Category != "" {
				fmt.Fprintf(out, "Category: %s\n", note.Category)
			}
			fmt.Fprintf(out, "Created:  %s\n", note.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Updated:  %s\n", note.UpdatedAt.Format(time.RFC3339))
			if note.IsFavorite {
				fmt.Fprintln(out, "Favorite: yes")
			}
			fmt.Fprintf(out, "\n%s\n", note.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newNoteListCmd(c *cli) *cobra.Command {
	var (
		query  string
		sortBy string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			var mode view.SortMode
			if sortBy != "" {
				if mode, err = view.ParseSortMode(sortBy); err != nil {
					return err
				}
			}
			list := app.DerivedNotes(query, mode)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No notes found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tFAV\tUPDATED")
			for _, n := range list {
				fav := ""
				if n.IsFavorite {
					fav = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Title, n.Category, fav, n.UpdatedAt.Format(time.DateTime))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by title")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "Sort mode: "+sortModes())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func sortModes() string {
	names := make([]string, len(view.SortModes))
	for i, m := range view.SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
