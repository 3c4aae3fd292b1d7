package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := newApp()

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(exitUnexpected)
	}
}

func newApp() *cli.Command {
	cmd := &cli.Command{
		Name:  "team-digest",
		Usage: "Turn daily Markdown team logs into daily, weekly and monthly digests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "logs-dir",
				Usage:   "Directory holding notes-YYYY-MM-DD.md files",
				Sources: cli.EnvVars("TEAM_DIGEST_LOGS_DIR"),
			},
			&cli.StringFlag{
				Name:  "source-label",
				Usage: "Source name shown in the digest metadata line",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Action grouping: flat-legacy, group-by-priority or flat-by-owner",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: md, json or html",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Digest title override",
			},
			&cli.BoolFlag{
				Name:  "kpis",
				Usage: "Emit the Executive KPIs block",
			},
			&cli.BoolFlag{
				Name:  "owners",
				Usage: "Emit the owner breakdown table",
			},
			&cli.BoolFlag{
				Name:  "require-logs",
				Usage: "Fail with exit status 3 when no logs match the window",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the digest to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "post-slack",
				Usage: "Also post the Markdown digest to the Slack webhook",
			},
			&cli.StringFlag{
				Name:    "slack-webhook",
				Usage:   "Slack incoming webhook URL",
				Sources: cli.EnvVars("SLACK_WEBHOOK_URL"),
			},
		},
		Commands: []*cli.Command{
			dailyCommand(),
			weeklyCommand(),
			monthlyCommand(),
			diagnoseCommand(),
			initCommand(),
			serveCommand(),
			mcpCommand(),
		},
		// Exit codes are handled in main so commands stay testable.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	for _, sub := range cmd.Commands {
		sub.ExitErrHandler = cmd.ExitErrHandler
	}
	return cmd
}
