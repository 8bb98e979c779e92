// Package xlsx parses XLSX discount feeds into normalized feed rows. Some
// chains only publish spreadsheet exports, so the ingestion path accepts
// both CSV and XLSX and normalizes them identically.
package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/handlekurv/deal-service/internal/feed"
)

// Parser implements XLSX feed parsing via excelize.
type Parser struct{}

// NewParser creates a new XLSX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the first sheet of an XLSX file: header row first, then one
// discount entry per row. Rows that fail field parsing are collected in the
// result's Errors.
func (p *Parser) Parse(content []byte) (*feed.ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &feed.ParseResult{}, nil
	}

	cols, err := feed.ResolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &feed.ParseResult{}
	for i, record := range rows[1:] {
		rowNumber := i + 2 // 1-based, header was row 1
		if isBlank(record) {
			continue
		}

		result.TotalRows++
		row, err := feed.RowFromRecord(cols, record, rowNumber)
		if err != nil {
			result.Errors = append(result.Errors, feed.RowError{
				Row:    rowNumber,
				Reason: err.Error(),
			})
			continue
		}
		result.Rows = append(result.Rows, row)
		result.ValidRows++
	}

	log.Debug().
		Str("sheet", sheets[0]).
		Int("totalRows", result.TotalRows).
		Int("validRows", result.ValidRows).
		Int("errors", len(result.Errors)).
		Msg("Parsed XLSX feed")

	return result, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
