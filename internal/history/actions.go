package history

import (
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/pkg/db"
	"github.com/urfave/cli/v2"
)

// Entry is one run with the integrations it produced.
type Entry struct {
	db.Run       `yaml:",inline"`
	Integrations []db.IntegrationRecord `json:"integrations,omitempty" yaml:"integrations,omitempty"`
}

func HistoryAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c, 0)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return cli.Exit(err.Error(), 2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		logger.Error("failed to list runs", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	entries := make([]Entry, 0, len(runs))
	for _, r := range runs {
		e := Entry{Run: r}
		if r.IntegrationCount > 0 {
			if e.Integrations, err = database.ListIntegrations(r.RunID); err != nil {
				logger.Warn("failed to list integrations", "run_id", r.RunID, "error", err)
			}
		}
		entries = append(entries, e)
	}

	return common.WriteOutput(os.Stdout, c.String("format"), entries)
}
