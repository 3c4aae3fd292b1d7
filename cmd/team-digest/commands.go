package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/anurajdeol90/team-digest/internal"
	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/digestservice"
	"github.com/anurajdeol90/team-digest/internal/examples"
	"github.com/anurajdeol90/team-digest/internal/mcpserver"
	"github.com/anurajdeol90/team-digest/internal/slack"
	"github.com/anurajdeol90/team-digest/internal/window"
	pkgconfig "github.com/anurajdeol90/team-digest/pkg/config"
)

// Exit statuses.
const (
	exitUnexpected = 1
	exitInvalid    = 2
	exitNoFiles    = 3
	exitSlack      = 4
)

var now = time.Now

// exit converts err to a cli.ExitCoder carrying the matching exit status.
func exit(err error) error {
	if err == nil {
		return nil
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	code := exitUnexpected
	switch {
	case errors.Is(err, apperr.ErrInvalidConfig), errors.Is(err, apperr.ErrInvalidRange):
		code = exitInvalid
	case errors.Is(err, apperr.ErrNoFilesInRange):
		code = exitNoFiles
	case errors.Is(err, apperr.ErrSlackPost):
		code = exitSlack
	}
	return cli.Exit(err.Error(), code)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

type runtime struct {
	cfg    *internal.Config
	logger *slog.Logger
}

// setup loads the config file when present, applies flag overrides and
// validates the result.
func setup(cmd *cli.Command) (*runtime, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w: %w", apperr.ErrInvalidConfig, err)
	}

	if cmd.IsSet("logs-dir") {
		cfg.Logs.Dir = cmd.String("logs-dir")
	}
	if cmd.IsSet("source-label") {
		cfg.Logs.SourceLabel = cmd.String("source-label")
	}
	if cmd.IsSet("mode") {
		cfg.Digest.Mode = cmd.String("mode")
	}
	if cmd.IsSet("format") {
		cfg.Digest.Format = cmd.String("format")
	}
	if cmd.IsSet("title") {
		cfg.Digest.Title = cmd.String("title")
	}
	if cmd.IsSet("kpis") {
		cfg.Digest.EmitKPIs = cmd.Bool("kpis")
	}
	if cmd.IsSet("owners") {
		cfg.Digest.OwnerBreakdown = cmd.Bool("owners")
	}
	if cmd.Bool("require-logs") {
		cfg.Digest.AllowMissing = false
	}
	if cmd.IsSet("slack-webhook") {
		cfg.Slack.WebhookURL = cmd.String("slack-webhook")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := internal.NewLogger(stderr(cmd), cfg.App.LogLevel)
	slog.SetDefault(logger)
	return &runtime{cfg: cfg, logger: logger}, nil
}

// emitDigest builds the digest for r, writes it and optionally posts it to
// Slack. The digest is always written before a Slack failure is reported.
func emitDigest(ctx context.Context, cmd *cli.Command, r window.Range) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	postSlack := cmd.Bool("post-slack")
	if postSlack && !rt.cfg.Slack.Enabled() {
		return fmt.Errorf("--post-slack needs a webhook url: %w", apperr.ErrInvalidConfig)
	}

	comps, err := internal.NewComponents(rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	d, err := comps.Service.Build(ctx, r, rt.cfg.Digest.Options())
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := digestservice.WriteFile(path, d.Body); err != nil {
			return err
		}
		rt.logger.Info("digest written",
			slog.String("path", path),
			slog.String("range", r.String()),
			slog.Int("days", len(d.Result.Days)),
			slog.Int("actions", len(d.Result.Actions)))
	} else if _, err := stdout(cmd).Write(d.Body); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	if !postSlack {
		return nil
	}
	client, err := slack.New(slack.Options{
		WebhookURL: rt.cfg.Slack.WebhookURL,
		MaxChars:   rt.cfg.Slack.MaxChars,
		Timeout:    rt.cfg.Slack.Timeout,
		MaxRetries: uint64(rt.cfg.Slack.MaxRetries),
		Logger:     rt.logger,
	})
	if err != nil {
		return err
	}
	return client.Post(ctx, d.Markdown)
}

func dailyCommand() *cli.Command {
	return &cli.Command{
		Name:  "daily",
		Usage: "Digest a single day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "Day to digest (YYYY-MM-DD or e.g. yesterday)",
				Value: "today",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := window.ParseDate(cmd.String("date"), now())
			if err != nil {
				return exit(err)
			}
			return exit(emitDigest(ctx, cmd, window.Daily(d)))
		},
	}
}

func weeklyCommand() *cli.Command {
	return &cli.Command{
		Name:  "weekly",
		Usage: "Digest a range of days (default: the seven days ending today)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "First day of the window"},
			&cli.StringFlag{Name: "end", Usage: "Last day of the window, inclusive"},
			&cli.BoolFlag{Name: "last-week", Usage: "Use the previous Monday..Sunday"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var r window.Range
			if cmd.Bool("last-week") {
				r = window.LastWeek(now())
			} else {
				var err error
				if r, err = window.Resolve(cmd.String("start"), cmd.String("end"), now()); err != nil {
					return exit(err)
				}
			}
			return exit(emitDigest(ctx, cmd, r))
		},
	}
}

func monthlyCommand() *cli.Command {
	return &cli.Command{
		Name:  "monthly",
		Usage: "Digest a calendar month (default: the current month)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Usage: "Month to digest (YYYY-MM)"},
			&cli.BoolFlag{Name: "latest-with-data", Usage: "End the current month at today"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			today := now()
			year, month := today.Year(), today.Month()
			if s := cmd.String("month"); s != "" {
				var err error
				if year, month, err = window.ParseMonth(s); err != nil {
					return exit(err)
				}
			}
			r, err := window.Monthly(year, month, cmd.Bool("latest-with-data"), today)
			if err != nil {
				return exit(err)
			}
			return exit(emitDigest(ctx, cmd, r))
		},
	}
}

func diagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "Show what the parser finds in each log of a window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "First day of the window"},
			&cli.StringFlag{Name: "end", Usage: "Last day of the window, inclusive"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := window.Resolve(cmd.String("start"), cmd.String("end"), now())
			if err != nil {
				return exit(err)
			}
			rt, err := setup(cmd)
			if err != nil {
				return exit(err)
			}
			comps, err := internal.NewComponents(rt.cfg, rt.logger)
			if err != nil {
				return exit(err)
			}
			diags, err := comps.Service.Diagnose(ctx, r)
			if err != nil {
				return exit(err)
			}
			_, err = io.WriteString(stdout(cmd), digestservice.FormatDiagnosis(r, diags))
			return exit(err)
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Copy example logs and config into a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dest", Usage: "Destination directory", Value: "."},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite existing files"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			written, err := examples.CopyTo(cmd.String("dest"), cmd.Bool("force"))
			if err != nil {
				return exit(err)
			}
			w := stdout(cmd)
			for _, p := range written {
				fmt.Fprintf(w, "created %s\n", p)
			}
			if len(written) == 0 {
				fmt.Fprintln(w, "examples already present; use --force to overwrite")
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve digests over HTTP with live log change events",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := setup(cmd)
			if err != nil {
				return exit(err)
			}
			if err := internal.Run(ctx, internal.WithConfig(rt.cfg), internal.WithLogger(rt.logger)); err != nil {
				return exit(fmt.Errorf("app run error: %w", err))
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve digest tools over MCP on stdio",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rt, err := setup(cmd)
			if err != nil {
				return exit(err)
			}
			comps, err := internal.NewComponents(rt.cfg, rt.logger)
			if err != nil {
				return exit(err)
			}
			srv := mcpserver.New(comps.Service, comps.Aggregator, comps.Store, rt.cfg.Digest.Options())
			return exit(srv.ServeStdio())
		},
	}
}
