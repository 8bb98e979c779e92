package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/database"
	"github.com/handlekurv/deal-service/internal/fetch"
)

var (
	ingestRegion string
	ingestURL    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a discount feed into the catalog",
	Long: `Ingest a discount feed for a region. The feed is read from a local file
argument or downloaded with --url. Rows violating catalog invariants are
rejected and reported; valid rows replace existing entries for the same
region, store and product.`,
	Example: `  deal-service ingest ./data/kiwi-oslo.csv --region oslo
  deal-service ingest --region bergen --url https://feeds.example.no/bergen.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestRegion, "region", "", "Region the feed covers (required)")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "Feed URL to download instead of a local file")
	ingestCmd.MarkFlagRequired("region")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestURL == "" {
		return fmt.Errorf("either a file argument or --url is required")
	}
	if len(args) > 0 && ingestURL != "" {
		return fmt.Errorf("a file argument and --url are mutually exclusive")
	}

	repo := catalog.NewRepository(database.Pool())
	ingestor := catalog.NewIngestor(fetch.NewClient(cfg.Fetch), repo, nil)
	ctx := cmd.Context()

	var stats *catalog.IngestStats
	var err error
	if ingestURL != "" {
		logger.Info().Str("region", ingestRegion).Str("url", ingestURL).Msg("Downloading feed")
		stats, err = ingestor.IngestURL(ctx, ingestRegion, ingestURL)
	} else {
		filePath := args[0]
		var content []byte
		content, err = os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		stats, err = ingestor.Ingest(ctx, ingestRegion, filepath.Base(filePath), content)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nIngestion Results for region %s\n", ingestRegion)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total rows:   %d\n", stats.TotalRows)
	fmt.Printf("Inserted:     %d\n", stats.Inserted)
	fmt.Printf("Rejected:     %d\n", stats.Rejected)
	fmt.Printf("Parse errors: %d\n", stats.ParseErrors)

	if len(stats.RejectedRows) > 0 {
		limit := len(stats.RejectedRows)
		if limit > 10 {
			limit = 10
		}
		fmt.Printf("\nFirst %d rejected rows:\n", limit)
		for _, rowErr := range stats.RejectedRows[:limit] {
			fmt.Printf("Row %d: %s\n", rowErr.Row, rowErr.Reason)
		}
	}

	return nil
}
