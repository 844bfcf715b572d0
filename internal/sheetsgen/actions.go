package sheetsgen

import (
	"context"
	"log/slog"
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/internal/generate"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/agent"
	"github.com/dtnitsch/integration-agent/pkg/sheets"
	"github.com/urfave/cli/v2"
)

// RowOutcome is the result of one spreadsheet row.
type RowOutcome struct {
	Row       int    `json:"row" yaml:"row"`
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Status    string `json:"status" yaml:"status"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Marked    bool   `json:"marked_complete" yaml:"marked_complete"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

type integrationRunner interface {
	Run(ctx context.Context, req models.IntegrationRequest) generate.Outcome
}

type rowMarker interface {
	MarkRowComplete(ctx context.Context, row int) error
}

func SheetsGenerateAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c, models.NeedSearch|models.NeedLLM|models.NeedSheets)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	client, err := sheets.NewClient(c.Context, cfg.Sheets, logger)
	if err != nil {
		logger.Error("failed to create sheets client", "error", err)
		return cli.Exit(err.Error(), 2)
	}
	runner, err := generate.NewRunner(c.Context, cfg, logger, true)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	readRange := cfg.Sheets.Range
	if c.IsSet("range") {
		readRange = c.String("range")
	}
	rows, err := client.UnprocessedRows(c.Context, readRange)
	if err != nil {
		logger.Error("failed to read spreadsheet", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	logger.Info("unprocessed rows", "count", len(rows))

	outcomes, generated := processRows(c.Context, runner, client, rows, logger)

	if database := common.OpenHistory(cfg, logger); database != nil {
		defer database.Close()
		failed := 0
		for _, g := range generated {
			failed += g.Result.FailedQueries
		}
		runID, err := database.CreateRun("sheets-generate", failed)
		if err != nil {
			logger.Warn("failed to record run", "error", err)
		} else {
			for _, g := range generated {
				generate.Record(database, runID, g, logger)
			}
		}
	}

	return common.WriteOutput(os.Stdout, c.String("format"), outcomes)
}

// processRows generates an integration per row and marks the rows that
// succeed as complete. It returns the per-row summary and the full outcomes.
func processRows(ctx context.Context, runner integrationRunner, marker rowMarker, rows []sheets.Row, logger *slog.Logger) ([]RowOutcome, []generate.Outcome) {
	outcomes := make([]RowOutcome, 0, len(rows))
	var generated []generate.Outcome

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		logger.Info("processing row", "row", row.Number, "name", row.Name, "type", row.Type)

		g := runner.Run(ctx, models.IntegrationRequest{
			ServiceName:     row.Name,
			IntegrationType: row.Type,
			Description:     row.Action,
		})
		generated = append(generated, g)

		o := RowOutcome{
			Row:       row.Number,
			Name:      row.Name,
			Type:      row.Type,
			Status:    g.Record.Status,
			OutputDir: g.Record.OutputDir,
			Error:     g.Record.Error,
		}
		if o.Status == string(agent.StatusSuccess) {
			if err := marker.MarkRowComplete(ctx, row.Number); err != nil {
				logger.Warn("failed to mark row complete", "row", row.Number, "error", err)
				o.Error = err.Error()
			} else {
				o.Marked = true
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, generated
}
