// stepnotify turns BDD runner step and hook outcomes into the four
// test-host notifications: start, finish, fail and ignore.
//
// Usage:
//
//	my-bdd-runner --events ndjson | stepnotify
//	my-bdd-runner --events ndjson | stepnotify --strict --format ndjson
//	stepnotify validate < events.ndjson
//
// Output modes (auto-detected):
//
//	stream    live notification lines (default when stdout is a TTY)
//	llm       terse plain-text report (default when piped)
//	terminal  styled report
//	json      structured report for automation
//	ndjson    one JSON object per notification
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dkoosis/stepnotify/internal/config"
	"github.com/dkoosis/stepnotify/internal/logging"
	"github.com/dkoosis/stepnotify/internal/version"
	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/mapper"
	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/render"
	"github.com/dkoosis/stepnotify/pkg/runnerjson"
	"github.com/dkoosis/stepnotify/pkg/stream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a process exit code out of a cobra RunE.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

// app holds the streams and flag values for one invocation.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	flags          config.CliFlags
}

// run executes the CLI and returns the exit code.
// Kept separate from main so tests can drive it without os.Exit.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runContext(context.Background(), args, stdin, stdout, stderr)
}

func runContext(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintf(stderr, "stepnotify: %v\n", err)
		return 2
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stepnotify",
		Short:         "Translate BDD step outcomes into test-host notifications",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          a.runNotify,
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&a.flags.Strict, "strict", false, "Fail scenarios on undefined, pending and assumption-violated steps")
	pf.BoolVar(&a.flags.AllowStartedIgnored, "allow-started-ignored", false, "Start scenarios and first steps eagerly")
	pf.StringVar(&a.flags.Format, "format", "", "Output format: auto, terminal, llm, json, ndjson")
	pf.StringVar(&a.flags.Theme, "theme", "", "Theme: default, orca, mono")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error, off")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "Diagnostic log encoding: console, json")
	pf.BoolVar(&a.flags.Validate, "validate", false, "Validate every event against the schema before driving")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Read runner events from stdin and emit notifications (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runNotify,
	}
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a runner event stream against the event schema",
		Args:  cobra.NoArgs,
		RunE:  a.runValidate,
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(a.stdout, version.String())
		},
	}
	root.AddCommand(runCmd, validateCmd, versionCmd)
	return root
}

// resolve merges flags with env and the config file and builds the logger.
func (a *app) resolve(cmd *cobra.Command) (*config.ResolvedConfig, *zap.Logger, error) {
	flags := cmd.Flags()
	a.flags.StrictSet = flags.Changed("strict")
	a.flags.AllowStartedIgnoredSet = flags.Changed("allow-started-ignored")
	a.flags.ValidateSet = flags.Changed("validate")

	cfg, err := config.ResolveConfig(a.flags)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, a.stderr)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("config resolved",
		zap.Stringer("policy", cfg.Policy()),
		zap.String("strict_source", cfg.StrictSource),
		zap.String("allow_started_ignored_source", cfg.AllowStartedIgnoredSource),
		zap.String("format", cfg.Format),
		zap.String("config_path", cfg.ConfigPath))
	return cfg, log, nil
}

func (a *app) runNotify(cmd *cobra.Command, _ []string) error {
	cfg, log, err := a.resolve(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Peek stdin to reject empty input before choosing a mode
	br := bufio.NewReaderSize(a.stdin, 8*1024)
	if peeked, _ := br.Peek(1); len(peeked) == 0 {
		fmt.Fprintf(a.stderr, "stepnotify: no input on stdin\n")
		return &exitError{code: 2}
	}

	var input io.Reader = br
	if cfg.Validate {
		data, err := io.ReadAll(br)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		if code := a.reportProblems(data); code != 0 {
			return &exitError{code: 2}
		}
		input = bytes.NewReader(data)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	// Close the underlying reader on cancel to unblock Stream's scanner goroutine.
	if c, ok := a.stdin.(io.Closer); ok {
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}

	theme := render.ThemeByName(cfg.Theme)
	if cfg.Format == "auto" && isTTYWriter(a.stdout) {
		width, height := termSize(a.stdout)
		code := stream.Run(ctx, input, a.stdout, stream.Options{
			Width:  width,
			Height: height,
			Style:  render.StreamStyle(theme),
			Policy: cfg.Policy(),
			Logger: log,
		})
		return codeErr(code)
	}

	if cfg.Format == "ndjson" {
		sink := notify.NewJSONLines(a.stdout)
		res := a.drive(ctx, input, cfg.Policy(), log, sink)
		if res.canceled {
			return codeErr(130)
		}
		if err := sink.Err(); err != nil {
			return fmt.Errorf("writing notifications: %w", err)
		}
		return codeErr(res.exitCode())
	}

	rec := notify.NewRecorder()
	res := a.drive(ctx, input, cfg.Policy(), log, rec)
	if res.canceled {
		return codeErr(130)
	}
	patterns := mapper.FromNotifications(rec.Calls)
	fmt.Fprint(a.stdout, selectRenderer(resolveFormat(cfg.Format, a.stdout), theme, cfg.Policy(), a.stdout).Render(patterns))
	return codeErr(res.exitCode())
}

// driveResult summarizes one pass over the runner stream.
type driveResult struct {
	stats        runnerjson.Stats
	protocolErrs int
	err          error
	canceled     bool
}

func (r driveResult) exitCode() int {
	switch {
	case r.canceled:
		return 130
	case r.err != nil:
		return 2
	case r.stats.FailedScenarios > 0:
		return 1
	case r.protocolErrs > 0:
		return 2
	default:
		return 0
	}
}

// drive feeds every event from r through a fresh engine into sink.
// Events the driver rejects are reported on stderr and skipped.
func (a *app) drive(ctx context.Context, r io.Reader, policy engine.Policy, log *zap.Logger, sink notify.Sink) driveResult {
	driver := runnerjson.NewDriver(engine.New(policy, engine.WithLogger(log)), sink)

	var res driveResult
	malformed, err := runnerjson.Stream(ctx, r, func(e runnerjson.Event) {
		if herr := driver.Handle(e); herr != nil {
			res.protocolErrs++
			fmt.Fprintf(a.stderr, "stepnotify: %v\n", herr)
		}
	})
	if cerr := driver.Close(); cerr != nil {
		res.protocolErrs++
		fmt.Fprintf(a.stderr, "stepnotify: %v\n", cerr)
	}
	if malformed > 0 {
		fmt.Fprintf(a.stderr, "stepnotify: warning: %d malformed line(s) skipped\n", malformed)
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "stepnotify: %v\n", err)
	}
	res.stats = driver.Stats()
	res.err = err
	res.canceled = err != nil && ctx.Err() != nil
	log.Info("stream done",
		zap.Int("scenarios", res.stats.Scenarios),
		zap.Int("failed_scenarios", res.stats.FailedScenarios),
		zap.Int("steps", res.stats.Steps),
		zap.Int("hooks", res.stats.Hooks),
		zap.Int("malformed", malformed),
		zap.Int("protocol_errors", res.protocolErrs))
	return res
}

func (a *app) runValidate(cmd *cobra.Command, _ []string) error {
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		fmt.Fprintf(a.stderr, "stepnotify: no input on stdin\n")
		return &exitError{code: 2}
	}
	if code := a.reportProblems(data); code != 0 {
		return &exitError{code: code}
	}
	fmt.Fprintf(a.stdout, "✓ event stream is valid\n")
	return nil
}

// reportProblems validates every line of data and prints what fails.
// Returns 0 when the stream is valid, 1 otherwise.
func (a *app) reportProblems(data []byte) int {
	problems, err := runnerjson.ValidateStream(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(a.stderr, "stepnotify: %v\n", err)
		return 1
	}
	if len(problems) == 0 {
		return 0
	}
	fmt.Fprintf(a.stderr, "Validation failed: %d line(s)\n\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(a.stderr, "  %v\n", p)
	}
	return 1
}

func codeErr(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}

func selectRenderer(mode string, theme render.Theme, policy engine.Policy, w io.Writer) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON(render.WithPolicy(policy))
	case "llm":
		return render.NewLLM()
	default:
		width, _ := termSize(w)
		return render.NewTerminal(theme, width)
	}
}

// resolveFormat picks terminal for a TTY and llm when piped.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}
