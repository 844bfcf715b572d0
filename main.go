package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/integration-agent/internal/detect"
	"github.com/dtnitsch/integration-agent/internal/generate"
	"github.com/dtnitsch/integration-agent/internal/history"
	"github.com/dtnitsch/integration-agent/internal/parse"
	"github.com/dtnitsch/integration-agent/internal/search"
	"github.com/dtnitsch/integration-agent/internal/sheetsgen"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "integration-agent",
		Usage: "Find API documentation, extract it, and generate integration code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML config file",
				Value: models.DefaultConfigPath,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: yaml or json",
				Value: "yaml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Run history database path (overrides db_path)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search and rank documentation for a service",
				Action: search.SearchAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "service", Usage: "Service name", Required: true},
					&cli.StringFlag{Name: "type", Usage: "Integration type"},
					&cli.StringFlag{Name: "keywords", Usage: "Comma-separated keywords to score against"},
					&cli.StringSliceFlag{Name: "query", Usage: "Search query (repeatable; defaults to the documentation queries)"},
					&cli.StringFlag{Name: "scorer", Usage: "Scoring strategy: context or keyword", Value: "context"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent search queries"},
				},
			},
			{
				Name:   "parse",
				Usage:  "Fetch documentation pages and extract them",
				Action: parse.ParseAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "urls", Usage: "Comma-separated URLs", Required: true},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent fetches"},
					&cli.BoolFlag{Name: "no-cache", Usage: "Bypass the page cache"},
				},
			},
			{
				Name:   "generate",
				Usage:  "Create an integration for a service",
				Action: generate.GenerateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "service", Usage: "Service name", Required: true},
					&cli.StringFlag{Name: "type", Usage: "Integration type (e.g. rest, graphql, webhook)", Required: true},
					&cli.StringFlag{Name: "description", Usage: "What the integration should do"},
					&cli.StringFlag{Name: "auth", Usage: "Authentication type"},
					&cli.StringFlag{Name: "endpoints", Usage: "Comma-separated endpoints of interest"},
					&cli.StringFlag{Name: "output-dir", Usage: "Directory for generated integrations (overrides output_dir)"},
					&cli.BoolFlag{Name: "no-save", Usage: "Print the result without writing files"},
				},
			},
			{
				Name:   "detect",
				Usage:  "Classify the integration type of a service",
				Action: detect.DetectAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Service name"},
					&cli.StringFlag{Name: "action", Usage: "What the integration should do"},
					&cli.BoolFlag{Name: "sheet", Usage: "Classify every spreadsheet row without a type"},
					&cli.StringFlag{Name: "range", Usage: "Spreadsheet range in A1 notation (overrides sheets.range)"},
				},
			},
			{
				Name:   "sheets-generate",
				Usage:  "Create integrations for unprocessed spreadsheet rows",
				Action: sheetsgen.SheetsGenerateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "range", Usage: "Spreadsheet range in A1 notation (overrides sheets.range)"},
					&cli.StringFlag{Name: "output-dir", Usage: "Directory for generated integrations (overrides output_dir)"},
				},
			},
			{
				Name:   "history",
				Usage:  "List recent runs",
				Action: history.HistoryAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Number of runs to show", Value: 20},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
