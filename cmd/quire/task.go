package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
)

func newTaskCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the task checklist",
	}
	cmd.AddCommand(
		newTaskAddCmd(c),
		newTaskDoneCmd(c),
		newTaskRmCmd(c),
		newTaskListCmd(c),
		newTaskPriorityCmd(c),
		newTaskDueCmd(c),
		newTaskLinkCmd(c),
	)
	return cmd
}

func newTaskAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return core.ErrEmptyTitle
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			task, err := app.Tasks.Create(cmd.Context(), title)
			return report(cmd, err, task.ID)
		},
	}
}

func newTaskDoneCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle the completed flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			task, err := app.Tasks.ToggleCompleted(cmd.Context(), args[0])
			return report(cmd, notFound("task", args[0], err), fmt.Sprintf("completed=%t", task.Completed))
		},
	}
}

func newTaskRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			err = app.Tasks.Delete(cmd.Context(), args[0])
			return report(cmd, notFound("task", args[0], err), "Deleted "+args[0])
		},
	}
}

func newTaskListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			list := app.Tasks.List()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tLINKED\tTITLE")
			for _, t := range list {
				done, linked, due := " ", "", ""
				if t.Completed {
					done = "x"
				}
				if t.Linked() {
					linked = "yes"
				}
				if t.DueDate != nil {
					due = t.DueDate.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, due, linked, t.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTaskPriorityCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <low|medium|high>",
		Short: "Set the priority of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := core.Priority(strings.ToLower(args[1]))
			if !p.IsValid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidPriority, args[1])
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = app.Tasks.SetPriority(cmd.Context(), args[0], p)
			return report(cmd, notFound("task", args[0], err), "priority="+string(p))
		},
	}
}

func newTaskDueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "due <id> <YYYY-MM-DD|none>",
		Short: "Set or clear the due date of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *time.Time
			if args[1] != "none" {
				d, err := time.ParseInLocation(time.DateOnly, args[1], time.Local)
				if err != nil {
					return fmt.Errorf("invalid due date: %w", err)
				}
				due = &d
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			_, err = app.Tasks.SetDueDate(cmd.Context(), args[0], due)
			return report(cmd, notFound("task", args[0], err), "due="+args[1])
		},
	}
}

// newTaskLinkCmd drives the whole calendar workflow in one invocation.
func newTaskLinkCmd(c *cli) *cobra.Command {
	var calID, date, clock string
	cmd := &cobra.Command{
		Use:   "link <id>",
		Short: "Create a calendar event for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseInLocation(time.DateOnly, date, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			hm, err := time.ParseInLocation("15:04", clock, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --time: %w", err)
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			task, ok := app.Tasks.Get(args[0])
			if !ok {
				return notFound("task", args[0], core.ErrNotFound)
			}

			wf := app.Calendar
			cals, err := wf.Begin(cmd.Context(), task)
			if err != nil {
				return err
			}
			if calID == "" {
				if len(cals) != 1 {
					wf.Cancel()
					return fmt.Errorf("choose a calendar with --calendar (%d available)", len(cals))
				}
				calID = cals[0].ID
			}
			if err := wf.SelectCalendar(calID); err != nil {
				wf.Cancel()
				return err
			}
			if err := wf.PickDate(d); err != nil {
				wf.Cancel()
				return err
			}
			if err := wf.PickTime(hm); err != nil {
				wf.Cancel()
				return err
			}
			linked, err := wf.Commit(cmd.Context())
			eventID := ""
			if linked.CalendarEventID != nil {
				eventID = *linked.CalendarEventID
			}
			return report(cmd, err, "event="+eventID)
		},
	}
	cmd.Flags().StringVar(&calID, "calendar", "", "Calendar ID (optional when only one exists)")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "Event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "09:00", "Event start time (HH:MM)")
	return cmd
}
