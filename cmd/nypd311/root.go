package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nypd311/internal/config"
	"nypd311/internal/logging"
	"nypd311/internal/report"
)

// app carries process-level dependencies and the resolved configuration.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)
	isTTY  func() bool
	now    func() time.Time
	// notifier overrides the notifier chosen from config.
	notifier report.Notifier

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	if a.now == nil {
		a.now = time.Now
	}
	if a.isTTY == nil {
		a.isTTY = func() bool { return false }
	}

	root := &cobra.Command{
		Use:           "nypd311",
		Short:         "Fetch, clean and summarize NYPD 311 complaints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	config.RegisterGlobalFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd(a), newValidateCmd(a), newWhereCmd(a))
	return root
}

// configure resolves defaults, file, environment and flags, then builds the
// logger.
func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(config.FilePath(cmd.Flags(), a.lookup), a.lookup)
	if err != nil {
		return err
	}
	if err := config.ApplyFlags(&cfg, cmd.Flags()); err != nil {
		return err
	}
	log, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// printIssues writes issues to stderr and reports whether any is an error.
func (a *app) printIssues(issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(a.stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}
