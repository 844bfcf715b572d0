package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/dtnitsch/integration-agent/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

var ErrMissingCredentials = errors.New("sheets: missing spreadsheet id or OAuth credentials")

// Client reads and updates one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewClient authenticates with the configured refresh token.
func NewClient(ctx context.Context, cfg models.SheetsConfig, logger *slog.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, ErrMissingCredentials
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return NewClientWithOptions(ctx, cfg.SpreadsheetID, logger, option.WithTokenSource(ts))
}

// NewClientWithOptions builds a client from explicit API options.
func NewClientWithOptions(ctx context.Context, spreadsheetID string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// Rows reads readRange and parses it.
func (c *Client) Rows(ctx context.Context, readRange string) ([]Row, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", readRange, err)
	}
	return ParseRows(resp.Values, firstRowOf(readRange)), nil
}

// RowsWithoutType returns rows of readRange with no integration type.
func (c *Client) RowsWithoutType(ctx context.Context, readRange string) ([]Row, error) {
	rows, err := c.Rows(ctx, readRange)
	if err != nil {
		return nil, err
	}
	return WithoutType(rows), nil
}

// UnprocessedRows returns rows of readRange not yet marked done.
func (c *Client) UnprocessedRows(ctx context.Context, readRange string) ([]Row, error) {
	rows, err := c.Rows(ctx, readRange)
	if err != nil {
		return nil, err
	}
	return Unprocessed(rows), nil
}

// UpdateIntegrationType writes integrationType to column C of row.
func (c *Client) UpdateIntegrationType(ctx context.Context, row int, integrationType string) error {
	if err := c.update(ctx, fmt.Sprintf("C%d", row), integrationType); err != nil {
		return err
	}
	c.logger.Info("updated integration type", "row", row, "type", integrationType)
	return nil
}

// MarkRowComplete checks the done box in column A of row.
func (c *Client) MarkRowComplete(ctx context.Context, row int) error {
	if err := c.update(ctx, fmt.Sprintf("A%d", row), true); err != nil {
		return err
	}
	c.logger.Info("marked row complete", "row", row)
	return nil
}

func (c *Client) update(ctx context.Context, cellRange string, value interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, cellRange, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", cellRange, err)
	}
	return nil
}

var rangeStartRow = regexp.MustCompile(`^(?:.*!)?[A-Za-z]+(\d+)`)

// firstRowOf returns the first row number of an A1 range, 1 when the range
// does not name one.
func firstRowOf(a1 string) int {
	m := rangeStartRow.FindStringSubmatch(a1)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
