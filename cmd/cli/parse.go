package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handlekurv/deal-service/internal/feed"
	"github.com/handlekurv/deal-service/internal/parsers/charset"
	"github.com/handlekurv/deal-service/internal/parsers/csv"
	"github.com/handlekurv/deal-service/internal/parsers/xlsx"
)

var (
	parseOutput   string
	parseEncoding string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a local discount feed file",
	Long: `Parse a local discount feed file (CSV or XLSX) into normalized rows and
show parsing statistics. Nothing is persisted; use this to check a feed
before ingesting it.

Supported encodings: auto (default), utf-8, iso-8859-1, windows-1252`,
	Example: `  deal-service parse ./data/kiwi-oslo.csv
  deal-service parse ./data/rema-bergen.csv --encoding iso-8859-1
  deal-service parse ./data/meny.xlsx --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
	parseCmd.Flags().StringVar(&parseEncoding, "encoding", "auto", "File encoding: auto, utf-8, iso-8859-1 or windows-1252")
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	logger.Info().Str("file", filePath).Msgf("Read %d bytes", len(content))

	result, err := parseFeedFile(filePath, content)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	switch strings.ToLower(parseOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "table":
		outputParseTable(filePath, result)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", parseOutput)
	}
}

func parseFeedFile(filePath string, content []byte) (*feed.ParseResult, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser().Parse(content)
	default:
		var enc charset.Encoding
		switch strings.ToLower(parseEncoding) {
		case "", "auto":
			enc = ""
		case "utf-8":
			enc = charset.EncodingUTF8
		case "iso-8859-1":
			enc = charset.EncodingISO88591
		case "windows-1252":
			enc = charset.EncodingWindows1252
		default:
			return nil, fmt.Errorf("unknown encoding: %s", parseEncoding)
		}
		return csv.NewParser(csv.Options{Encoding: enc}).Parse(content)
	}
}

func outputParseTable(filePath string, result *feed.ParseResult) {
	fmt.Printf("\nParse Results for %s\n", filePath)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Total Rows\t%d\n", result.TotalRows)
	fmt.Fprintf(w, "Valid Rows\t%d\n", result.ValidRows)
	fmt.Fprintf(w, "Errors\t%d\n", len(result.Errors))
	w.Flush()

	if len(result.Errors) > 0 {
		limit := len(result.Errors)
		if limit > 10 {
			limit = 10
		}
		fmt.Printf("\nFirst %d Errors:\n", limit)
		fmt.Println(strings.Repeat("-", 60))
		for _, rowErr := range result.Errors[:limit] {
			fmt.Printf("Row %d: %s\n", rowErr.Row, rowErr.Reason)
		}
		if len(result.Errors) > limit {
			fmt.Printf("... and %d more errors\n", len(result.Errors)-limit)
		}
	}

	if len(result.Rows) > 0 {
		limit := len(result.Rows)
		if limit > 5 {
			limit = 5
		}
		fmt.Printf("\nSample Rows (first %d):\n", limit)
		fmt.Println(strings.Repeat("-", 60))
		for i, row := range result.Rows[:limit] {
			fmt.Printf("%d. %s - %s (%.2f kr -> %.2f kr, expires %s)\n",
				i+1, row.StoreName, row.ProductName,
				row.OriginalPrice, row.DiscountPrice,
				row.ExpiresAt.Format("2006-01-02"))
		}
	}
}
