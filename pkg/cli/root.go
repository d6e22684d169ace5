package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/goliatone/go-formset/pkg/prompt"
)

const (
	name           = "formset"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Option customises the command tree.
type Option func(*app)

// WithWriter sets the stream that receives command output.
func WithWriter(w io.Writer) Option {
	return func(a *app) {
		if w != nil {
			a.out = w
		}
	}
}

// WithErrWriter sets the stream that receives logs and prompts.
func WithErrWriter(w io.Writer) Option {
	return func(a *app) {
		if w != nil {
			a.errOut = w
		}
	}
}

// WithPrompter replaces the terminal prompts. Commands always prompt through
// an injected driver, even when stdin is not a terminal.
func WithPrompter(driver prompt.Driver) Option {
	return func(a *app) {
		a.prompter = driver
	}
}

type app struct {
	out      io.Writer
	errOut   io.Writer
	prompter prompt.Driver
	logger   *slog.Logger
}

// interactive returns the driver to prompt with, or nil when the command
// must not prompt.
func (a *app) interactive() prompt.Driver {
	if a.prompter != nil {
		return a.prompter
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return prompt.NewSurvey(prompt.WithStdio(os.Stdin, os.Stderr, a.errOut))
}

// NewCommand builds the root command.
func NewCommand(options ...Option) *cli.Command {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	a.logger = newLogger(a.errOut, slog.LevelInfo)

	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		Usage:                 "Add, inspect and serve repeatable form groups",
		EnableShellCompletion: true,
		Writer:                a.out,
		ErrWriter:             a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := parseLevel(cmd.String("log-level"))
			if err != nil {
				return ctx, err
			}
			a.logger = newLogger(a.errOut, level)
			a.logger.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", level.String())
			return ctx, nil
		},
		Commands: []*cli.Command{
			addCmd(a),
			inspectCmd(a),
			toggleCmd(a),
			serveCmd(a),
		},
	}
}

// Execute runs the root command with os.Args and exits non-zero on failure.
// It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
