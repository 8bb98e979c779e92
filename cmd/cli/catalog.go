package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/database"
	"github.com/handlekurv/deal-service/internal/textnorm"
)

var (
	catalogItemsRegion  string
	catalogItemsQuery   string
	catalogItemsOrganic bool
	catalogItemsLimit   int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the discount catalog",
}

var catalogRegionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions with active discount items",
	Args:  cobra.NoArgs,
	RunE:  runCatalogRegions,
}

var catalogItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List active discount items for a region",
	Long: `List the active discount items for a region, optionally filtered by a
product name substring. Matching folds case and Norwegian diacritics, so
"okologisk" finds "Økologisk".`,
	Example: `  deal-service catalog items --region oslo
  deal-service catalog items --region oslo --query melk --organic`,
	Args: cobra.NoArgs,
	RunE: runCatalogItems,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogRegionsCmd)
	catalogCmd.AddCommand(catalogItemsCmd)

	catalogItemsCmd.Flags().StringVar(&catalogItemsRegion, "region", "", "Region to list (required)")
	catalogItemsCmd.Flags().StringVar(&catalogItemsQuery, "query", "", "Product name substring filter")
	catalogItemsCmd.Flags().BoolVar(&catalogItemsOrganic, "organic", false, "Only organic items")
	catalogItemsCmd.Flags().IntVar(&catalogItemsLimit, "limit", 50, "Maximum items to print")
	catalogItemsCmd.MarkFlagRequired("region")
}

func runCatalogRegions(cmd *cobra.Command, args []string) error {
	repo := catalog.NewRepository(database.Pool())
	regions, err := repo.Regions(cmd.Context())
	if err != nil {
		return err
	}

	if len(regions) == 0 {
		fmt.Println("No regions with active items.")
		return nil
	}
	for _, region := range regions {
		fmt.Println(region)
	}
	return nil
}

func runCatalogItems(cmd *cobra.Command, args []string) error {
	repo := catalog.NewRepository(database.Pool())
	items, err := repo.Snapshot(cmd.Context(), catalogItemsRegion)
	if err != nil {
		return err
	}

	query := textnorm.Fold(catalogItemsQuery)
	printed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tPRODUCT\tORIGINAL\tDISCOUNT\tEXPIRES\tORGANIC")
	for _, item := range items {
		if catalogItemsOrganic && !item.IsOrganic {
			continue
		}
		if query != "" && !strings.Contains(textnorm.Fold(item.ProductName), query) {
			continue
		}
		organic := ""
		if item.IsOrganic {
			organic = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
			item.StoreName, item.ProductName,
			item.OriginalPrice, item.DiscountPrice,
			item.ExpiresAt.Format("2006-01-02"), organic)
		printed++
		if printed >= catalogItemsLimit {
			break
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d item(s) shown\n", printed)
	return nil
}
