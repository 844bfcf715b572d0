package detect

import (
	"context"
	"log/slog"
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/agent"
	"github.com/dtnitsch/integration-agent/pkg/db"
	"github.com/dtnitsch/integration-agent/pkg/sheets"
	"github.com/urfave/cli/v2"
)

// Detection is one classified service.
type Detection struct {
	Row    int    `json:"row,omitempty" yaml:"row,omitempty"`
	Name   string `json:"name" yaml:"name"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type typeDetector interface {
	DetermineType(ctx context.Context, name, action string) (string, error)
}

type typeWriter interface {
	UpdateIntegrationType(ctx context.Context, row int, integrationType string) error
}

func DetectAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	batch := c.Bool("sheet")
	need := models.NeedSearch | models.NeedLLM
	if batch {
		need |= models.NeedSheets
	} else if c.String("name") == "" {
		return cli.Exit("either --name or --sheet is required", 1)
	}

	cfg, err := common.LoadConfig(c, need)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	searcher, err := common.NewSearcher(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	completer, err := common.NewCompleter(c.Context, cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	detector := agent.NewTypeDetector(searcher, completer, logger)

	var detections []Detection
	if batch {
		client, err := sheets.NewClient(c.Context, cfg.Sheets, logger)
		if err != nil {
			logger.Error("failed to create sheets client", "error", err)
			return cli.Exit(err.Error(), 2)
		}
		readRange := cfg.Sheets.Range
		if c.IsSet("range") {
			readRange = c.String("range")
		}
		rows, err := client.RowsWithoutType(c.Context, readRange)
		if err != nil {
			logger.Error("failed to read spreadsheet", "error", err)
			return cli.Exit(err.Error(), 1)
		}
		logger.Info("rows without integration type", "count", len(rows))
		detections = detectRows(c.Context, detector, client, rows, logger)
	} else {
		detections = []Detection{detectOne(c.Context, detector, c.String("name"), c.String("action"))}
	}

	record(cfg, logger, detections)

	if err := common.WriteOutput(os.Stdout, c.String("format"), detections); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if !batch && detections[0].Error != "" {
		return cli.Exit(detections[0].Error, 1)
	}
	return nil
}

func detectOne(ctx context.Context, detector typeDetector, name, action string) Detection {
	d := Detection{Name: name, Action: action}
	t, err := detector.DetermineType(ctx, name, action)
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Type = t
	return d
}

// detectRows classifies each row and writes the type back to column C. A
// failed row is reported and the rest continue.
func detectRows(ctx context.Context, detector typeDetector, w typeWriter, rows []sheets.Row, logger *slog.Logger) []Detection {
	out := make([]Detection, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		d := detectOne(ctx, detector, row.Name, row.Action)
		d.Row = row.Number
		if d.Error != "" {
			logger.Warn("type detection failed", "row", row.Number, "name", row.Name, "error", d.Error)
			out = append(out, d)
			continue
		}
		if err := w.UpdateIntegrationType(ctx, row.Number, d.Type); err != nil {
			logger.Warn("failed to update sheet", "row", row.Number, "error", err)
			d.Error = err.Error()
		} else {
			logger.Info("integration type updated", "row", row.Number, "name", row.Name, "type", d.Type)
		}
		out = append(out, d)
	}
	return out
}

func record(cfg *models.Config, logger *slog.Logger, detections []Detection) {
	database := common.OpenHistory(cfg, logger)
	if database == nil {
		return
	}
	defer database.Close()

	runID, err := database.CreateRun("detect", 0)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	for _, d := range detections {
		rec := db.DetectionRecord{
			ServiceName:  d.Name,
			Action:       d.Action,
			DetectedType: d.Type,
			SheetRow:     d.Row,
			Error:        d.Error,
		}
		if err := database.InsertTypeDetection(runID, rec); err != nil {
			logger.Warn("failed to record type detection", "run_id", runID, "error", err)
		}
	}
}
