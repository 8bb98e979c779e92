// Package csv parses CSV discount feeds into normalized feed rows. It
// handles encoding detection, delimiter detection and per-row error
// collection so one malformed line never sinks a whole feed.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/handlekurv/deal-service/internal/feed"
	"github.com/handlekurv/deal-service/internal/parsers/charset"
)

// Options configures the CSV parser. Zero values mean "detect".
type Options struct {
	Delimiter rune
	Encoding  charset.Encoding
}

// Parser implements CSV feed parsing with encoding and delimiter detection.
type Parser struct {
	options Options
}

// NewParser creates a new CSV parser with the given options.
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Parse parses CSV content into normalized feed rows. The first record must
// be a header row; rows that fail field parsing are reported in the result's
// Errors instead of aborting the parse.
func (p *Parser) Parse(content []byte) (*feed.ParseResult, error) {
	enc := p.options.Encoding
	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	delimiter := p.options.Delimiter
	if delimiter == 0 {
		delimiter = DetectDelimiter(decoded)
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // feeds pad or truncate trailing columns
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &feed.ParseResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := feed.ResolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &feed.ParseResult{}
	rowNumber := 1 // header was row 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		if err != nil {
			result.TotalRows++
			result.Errors = append(result.Errors, feed.RowError{
				Row:    rowNumber,
				Reason: err.Error(),
			})
			continue
		}
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
		Int("totalRows", result.TotalRows).
		Int("validRows", result.ValidRows).
		Int("errors", len(result.Errors)).
		Msg("Parsed CSV feed")

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
