// Package cmd implements the poetryctl command tree.
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/sakura-poetry/poetryctl/internal/exitcode"
	"github.com/sakura-poetry/poetryctl/internal/telemetry"
	"github.com/sakura-poetry/poetryctl/internal/ux"
)

// annotationSkipApp marks commands that run without config, session or
// network, such as version and config path.
const annotationSkipApp = "poetryctl/skip-app"

// state is shared by every command of one invocation.
type state struct {
	opts    Options
	app     *App
	span    trace.Span
	noInput bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	interactive func() bool
}

func (s *state) canPrompt() bool {
	return !s.noInput && s.interactive()
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(&state{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: ux.IsInteractive,
	})
}

func newRootCommand(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "poetryctl",
		Short: "Administer a poetry catalog from the terminal",
		Long: `poetryctl signs in to a poetry CMS backend and manages its catalog:
poems, poets, dynasties, categories, users, roles, settings and the audit log.

The session token is kept between runs (see 'poetryctl config view'). When the
server reports that the session has expired, it is cleared and you are asked
to log in again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}
			app, err := NewApp(cmd.Context(), st.opts, st.stdout, st.stderr)
			if err != nil {
				return err
			}
			st.app = app

			ctx, span := telemetry.StartCommandSpan(cmd.Context(), app.Tracing.TracerProvider(), cmd.CommandPath())
			st.span = span
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetIn(st.stdin)
	root.SetOut(st.stdout)
	root.SetErr(st.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&st.opts.ConfigPath, "config", "", "config file (default is the nearest .poetryctl.yaml, then $HOME/.poetryctl/config.yaml)")
	pf.StringVar(&st.opts.APIURL, "api-url", "", "backend base URL, overrides api.base_url")
	pf.StringVarP(&st.opts.Format, "format", "o", "text", "output format: text, json or yaml")
	pf.StringVar(&st.opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&st.opts.NoColor, "no-color", false, "disable colored output")
	pf.BoolVar(&st.noInput, "no-input", false, "never prompt; fail instead")
	pf.BoolVar(&st.opts.Trace, "trace", false, "log a span for the command and every backend call")

	root.AddCommand(
		newAuthCommand(st),
		newConfigCommand(st),
		newDoctorCommand(st),
		newVersionCommand(st),
	)
	for _, c := range newCatalogCommands(st) {
		root.AddCommand(c)
	}
	return root
}

func skipsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipApp] == "true" {
			return true
		}
	}
	return false
}

// Execute runs poetryctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	st := &state{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: ux.IsInteractive,
	}
	return run(ctx, st, args)
}

func run(ctx context.Context, st *state, args []string) int {
	root := newRootCommand(st)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if st.span != nil {
		telemetry.EndSpan(st.span, err)
	}
	if st.app != nil {
		if cerr := st.app.Close(); cerr != nil {
			st.app.Logger.Warn("failed to close connections", "error", cerr)
		}
	}
	if err == nil {
		return exitcode.Success
	}

	if stderrors.Is(ctx.Err(), context.Canceled) {
		fmt.Fprintln(st.stderr, "\nOperation cancelled by user")
		return exitcode.Interrupted
	}

	ux.PrintError(st.stderr, err, st.opts.NoColor)
	return exitcode.DetermineExitCode(err)
}

// appFor returns the App built for this invocation. Commands annotated to
// skip it must not call appFor.
func appFor(st *state) *App {
	if st.app == nil {
		panic("poetryctl: command ran without an App")
	}
	return st.app
}
