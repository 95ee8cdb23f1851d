package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/config"
	"github.com/aretw0/quire/internal/logx"
	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/calendar"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/view"
)

// cli carries state shared by every command of one invocation.
type cli struct {
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	app    *quire.App
	opts   []quire.Option // extra options, used by tests
}

func newRootCmd(extra ...quire.Option) *cobra.Command {
	c := &cli{v: viper.New(), opts: extra}

	root := &cobra.Command{
		Use:   "quire",
		Short: "Local-first notes and tasks",
		Long: `quire keeps notes and a task checklist in a local data directory.
Tasks can be linked to calendar events and notes can be exported or shared.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "Config file (default ./quire.yaml)")
	flags.String("data", "", "Data directory")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	_ = c.v.BindPFlag("data_dir", flags.Lookup("data"))

	root.AddCommand(
		newNoteCmd(c),
		newTaskCmd(c),
		newCalendarCmd(c),
		newCategoryCmd(c),
		newExportCmd(c),
		newShareCmd(c),
		newThemeCmd(c),
		newWatchCmd(c),
		newStatusCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logx.New(stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	c.cfg = cfg
	c.logger = logger
	return nil
}

// open builds the App on first use.
func (c *cli) open(ctx context.Context) (*quire.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	dataDir := c.cfg.DataDir
	if dataDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dataDir = platform.DefaultDataDir(wd)
	}

	sortMode, err := view.ParseSortMode(c.cfg.View.Sort)
	if err != nil {
		return nil, err
	}
	cals := make([]calendar.Calendar, 0, len(c.cfg.Calendar.Calendars))
	for _, ref := range c.cfg.Calendar.Calendars {
		cals = append(cals, calendar.Calendar{ID: ref.ID, Name: ref.Name})
	}

	opts := []quire.Option{
		quire.WithLogger(c.logger),
		quire.WithFormat(c.cfg.Store.Format),
		quire.WithReadOnly(c.cfg.Store.ReadOnly),
		quire.WithRetryAttempts(c.cfg.Store.RetryAttempts),
		quire.WithDevSafety(c.cfg.Store.DevSafety),
		quire.WithView(c.cfg.View.Language, sortMode),
		quire.WithCalendarAccess(c.cfg.Calendar.Enabled),
		quire.WithCalendars(cals...),
		quire.WithCalendarDir(c.cfg.Calendar.Dir),
		quire.WithOutbox(c.cfg.Share.Outbox),
		quire.WithShareDirs(c.cfg.Share.DocumentsDir, c.cfg.Share.CacheDir),
		quire.WithWatcherErrorHandler(func(err error) {
			c.logger.Error("watcher error", "error", err)
		}),
	}
	opts = append(opts, c.opts...)

	app, err := quire.Open(ctx, dataDir, opts...)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

// report prints done for a successful or merely unsaved mutation. A failed
// save is a warning: the change is kept for this session.
func report(cmd *cobra.Command, err error, done string) error {
	if err != nil && !core.IsPersistError(err) {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%s %q not found", kind, id)
	}
	return err
}
