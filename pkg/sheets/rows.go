// Package sheets reads integration rows from a Google spreadsheet and writes
// back detected types and completion marks.
package sheets

import (
	"fmt"
	"strings"
)

// Column layout: A done checkbox, B integration name, C integration type,
// D requested action.
const (
	colDone = iota
	colName
	colType
	colAction
	minColumns
)

// Row is one data row. Number is the 1-based sheet row.
type Row struct {
	Number int    `json:"row_number" yaml:"row_number"`
	Done   string `json:"done" yaml:"done"`
	Name   string `json:"integration_name" yaml:"integration_name"`
	Type   string `json:"type" yaml:"type"`
	Action string `json:"action" yaml:"action"`
}

// ParseRows converts raw range values, header row first, into rows. Rows with
// fewer than four cells are skipped. firstRow is the sheet row number of the
// header.
func ParseRows(values [][]interface{}, firstRow int) []Row {
	var rows []Row
	for i, raw := range values {
		if i == 0 || len(raw) < minColumns {
			continue
		}
		rows = append(rows, Row{
			Number: firstRow + i,
			Done:   cell(raw, colDone),
			Name:   cell(raw, colName),
			Type:   cell(raw, colType),
			Action: cell(raw, colAction),
		})
	}
	return rows
}

func cell(raw []interface{}, idx int) string {
	if idx >= len(raw) || raw[idx] == nil {
		return ""
	}
	return fmt.Sprint(raw[idx])
}

// WithoutType keeps rows whose type cell is blank.
func WithoutType(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if strings.TrimSpace(r.Type) == "" {
			out = append(out, r)
		}
	}
	return out
}

// Unprocessed keeps rows whose done cell is empty or FALSE.
func Unprocessed(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if r.Done == "" || strings.EqualFold(r.Done, "FALSE") {
			out = append(out, r)
		}
	}
	return out
}
